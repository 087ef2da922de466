package repository

import (
	"context"

	"horseshipt/models"
)

// MessageRepository is the shipment message thread ledger.
type MessageRepository interface {
	Create(ctx context.Context, m *models.ShipmentMessage) error
	// ListByShipment returns the thread oldest-first with sender summaries
	// populated.
	ListByShipment(ctx context.Context, shipmentID string) ([]*models.ShipmentMessage, error)
}
