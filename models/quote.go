package models

import "time"

type QuoteStatus string

const (
	QuotePending  QuoteStatus = "pending"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteRejected QuoteStatus = "rejected"
)

// Quote is a carrier's priced offer against one shipment. At most one quote
// may exist per (shipment, carrier) pair, enforced by a storage-level unique
// constraint.
type Quote struct {
	ID         string `json:"id" bson:"_id,omitempty" db:"id"`
	ShipmentID string `json:"shipment_id" bson:"shipment_id" db:"shipment_id"`
	CarrierID  string `json:"carrier_id" bson:"carrier_id" db:"carrier_id"`

	Price                 float64     `json:"price" bson:"price" db:"price"`
	Message               string      `json:"message,omitempty" bson:"message,omitempty" db:"message"`
	EstimatedDeliveryDays int         `json:"estimated_delivery_days,omitempty" bson:"estimated_delivery_days,omitempty" db:"estimated_delivery_days"`
	Status                QuoteStatus `json:"status" bson:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" db:"updated_at"`

	// Populated for responses, never persisted on the quote document.
	Carrier  *UserSummary `json:"carrier,omitempty" bson:"-" db:"-"`
	Shipment *Shipment    `json:"shipment,omitempty" bson:"-" db:"-"`
}

// Validate checks the fields a carrier must supply when submitting.
func (q *Quote) Validate() error {
	switch {
	case q.ShipmentID == "":
		return NewValidationError("shipment id is required")
	case q.CarrierID == "":
		return NewValidationError("carrier id is required")
	case q.Price <= 0:
		return NewValidationError("price must be positive")
	case q.EstimatedDeliveryDays < 0:
		return NewValidationError("estimated delivery days cannot be negative")
	}
	return nil
}
