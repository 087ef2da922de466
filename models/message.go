package models

import (
	"strings"
	"time"
)

// ShipmentMessage is one entry in the thread between the customer and the
// carrier on a shipment.
type ShipmentMessage struct {
	ID         string    `json:"id" bson:"_id,omitempty" db:"id"`
	ShipmentID string    `json:"shipment_id" bson:"shipment_id" db:"shipment_id"`
	SenderID   string    `json:"sender_id" bson:"sender_id" db:"sender_id"`
	Body       string    `json:"body" bson:"body" db:"body"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" db:"created_at"`

	// Populated for responses, never persisted on the message document.
	Sender *UserSummary `json:"sender,omitempty" bson:"-" db:"-"`
}

func (m *ShipmentMessage) Validate() error {
	switch {
	case m.ShipmentID == "":
		return NewValidationError("shipment id is required")
	case m.SenderID == "":
		return NewValidationError("sender id is required")
	case strings.TrimSpace(m.Body) == "":
		return NewValidationError("message body cannot be empty")
	}
	return nil
}
