package repository

import (
	"context"

	"horseshipt/models"
)

// QuoteRepository stores carrier price offers. Create must enforce the
// (shipment, carrier) uniqueness at the storage level and surface a violation
// as a ConflictError, so that two racing submissions cannot both land.
type QuoteRepository interface {
	Create(ctx context.Context, q *models.Quote) error
	GetByID(ctx context.Context, id string) (*models.Quote, error)

	// ListByShipment returns quotes newest-first with the carrier contact
	// summary populated, for customer review.
	ListByShipment(ctx context.Context, shipmentID string) ([]*models.Quote, error)

	// ListByCarrier returns quotes newest-first with the shipment populated.
	ListByCarrier(ctx context.Context, carrierID string) ([]*models.Quote, error)

	SetStatus(ctx context.Context, id string, status models.QuoteStatus) error

	// RejectSiblings marks every other quote on the shipment rejected.
	RejectSiblings(ctx context.Context, shipmentID, acceptedID string) error
}
