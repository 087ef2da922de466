package repository

import (
	"context"
	"time"

	"horseshipt/models"
)

// ShipmentRepository stores the customer-side shipment documents.
// GetByID returns (nil, nil) when the shipment does not exist.
type ShipmentRepository interface {
	Create(ctx context.Context, s *models.Shipment) error
	GetByID(ctx context.Context, id string) (*models.Shipment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*models.Shipment, error)

	// ListAvailable returns pending shipments with pickup date on or after
	// asOfDate, ascending by pickup date. This is the marketplace board.
	ListAvailable(ctx context.Context, asOfDate string) ([]*models.Shipment, error)

	Update(ctx context.Context, s *models.Shipment) error

	// SetAssigned commits a carrier to the shipment and flips it to assigned.
	SetAssigned(ctx context.Context, id, carrierID string) error

	// SetStatus is a pure setter; transition validation happens in the
	// booking workflow, not here.
	SetStatus(ctx context.Context, id string, status models.ShipmentStatus) error

	// Release sets a terminal-or-open status and clears the carrier, keeping
	// the carrier-iff-committed invariant intact.
	Release(ctx context.Context, id string, status models.ShipmentStatus) error

	AppendLocation(ctx context.Context, id string, loc models.Location) error
	SetWaybill(ctx context.Context, id, url string, createdAt time.Time) error
	Delete(ctx context.Context, id string) error
}
