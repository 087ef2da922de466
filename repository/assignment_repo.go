package repository

import (
	"context"

	"horseshipt/models"
)

// AssignmentRepository stores the carrier-side commitment records. Create must
// enforce one assignment per shipment at the storage level and surface a
// violation as a ConflictError; that constraint is the serialization point
// for racing claims and quote acceptances.
type AssignmentRepository interface {
	Create(ctx context.Context, a *models.Assignment) error
	GetByID(ctx context.Context, id string) (*models.Assignment, error)
	GetByShipment(ctx context.Context, shipmentID string) (*models.Assignment, error)

	// ListByCarrier returns assignments newest-first with the linked shipment
	// populated.
	ListByCarrier(ctx context.Context, carrierID string) ([]*models.Assignment, error)

	SetStatus(ctx context.Context, id string, status models.AssignmentStatus) error
	AppendLocation(ctx context.Context, id string, loc models.Location) error
}
