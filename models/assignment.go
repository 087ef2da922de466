package models

import "time"

type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "assigned"
	AssignmentInTransit AssignmentStatus = "in_transit"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// CanTransitionTo reports whether next is reachable from s. Progress is
// monotonic (assigned -> in_transit -> completed); cancellation is allowed
// from any non-terminal state.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	switch next {
	case AssignmentInTransit:
		return s == AssignmentAssigned
	case AssignmentCompleted:
		return s == AssignmentInTransit
	case AssignmentCancelled:
		return s == AssignmentAssigned || s == AssignmentInTransit
	}
	return false
}

// ShipmentStatus maps an assignment status to the customer-visible shipment
// status that a carrier-side transition propagates.
func (s AssignmentStatus) ShipmentStatus() ShipmentStatus {
	switch s {
	case AssignmentInTransit:
		return ShipmentInTransit
	case AssignmentCompleted:
		return ShipmentDelivered
	case AssignmentCancelled:
		return ShipmentCancelled
	}
	return ShipmentAssigned
}

// Assignment is the carrier-side commitment record for a shipment. At most
// one assignment may exist per shipment, enforced by a storage-level unique
// constraint on ShipmentID.
type Assignment struct {
	ID         string `json:"id" bson:"_id,omitempty" db:"id"`
	ShipmentID string `json:"shipment_id" bson:"shipment_id" db:"shipment_id"`
	CarrierID  string `json:"carrier_id" bson:"carrier_id" db:"carrier_id"`

	Status AssignmentStatus `json:"status" bson:"status" db:"status"`
	Notes  string           `json:"notes,omitempty" bson:"notes,omitempty" db:"notes"`

	CurrentLocation *Location  `json:"current_location,omitempty" bson:"current_location,omitempty"`
	LocationHistory []Location `json:"location_history,omitempty" bson:"location_history,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" db:"updated_at"`

	// Populated for responses, never persisted on the assignment document.
	Shipment *Shipment `json:"shipment,omitempty" bson:"-" db:"-"`
}
