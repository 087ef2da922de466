package repository

import (
	"context"

	"horseshipt/models"
)

// ThreadRepository combines the message ledger with the shipment viewer gate:
// only the owning customer and the assigned carrier may read or post.
type ThreadRepository struct {
	Booking  *BookingRepository
	Messages MessageRepository
}

func NewThreadRepository(booking *BookingRepository, messages MessageRepository) *ThreadRepository {
	return &ThreadRepository{Booking: booking, Messages: messages}
}

// PostMessage appends a message to a shipment's thread. The shipment is
// returned alongside so the caller can resolve the notification counterparty
// without a second read.
func (r *ThreadRepository) PostMessage(ctx context.Context, shipmentID, senderID, body string) (*models.ShipmentMessage, *models.Shipment, error) {
	shipment, err := r.Booking.ShipmentForViewer(ctx, shipmentID, senderID)
	if err != nil {
		return nil, nil, err
	}

	msg := &models.ShipmentMessage{
		ShipmentID: shipmentID,
		SenderID:   senderID,
		Body:       body,
	}
	if err := msg.Validate(); err != nil {
		return nil, nil, err
	}
	if err := r.Messages.Create(ctx, msg); err != nil {
		return nil, nil, err
	}
	return msg, shipment, nil
}

// ListMessages returns a shipment's thread oldest-first.
func (r *ThreadRepository) ListMessages(ctx context.Context, shipmentID, callerID string) ([]*models.ShipmentMessage, error) {
	if _, err := r.Booking.ShipmentForViewer(ctx, shipmentID, callerID); err != nil {
		return nil, err
	}
	return r.Messages.ListByShipment(ctx, shipmentID)
}

// Counterparty resolves who should hear about a message from sender: the
// assigned carrier for a customer message, the customer otherwise. Empty when
// the shipment has no carrier yet.
func Counterparty(shipment *models.Shipment, senderID string) string {
	if shipment.CustomerID == senderID {
		if shipment.CarrierID != nil {
			return *shipment.CarrierID
		}
		return ""
	}
	return shipment.CustomerID
}
