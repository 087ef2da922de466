package models

import "time"

// DateLayout is the calendar-day format used for pickup and delivery dates.
// Dates are compared as whole days, so they are stored as plain ISO strings;
// lexicographic order matches calendar order.
const DateLayout = "2006-01-02"

// ValidDate reports whether s is a well-formed calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Document is a stored file reference: the public URL plus the object-storage
// key needed to delete it again.
type Document struct {
	URL string `json:"url" bson:"url" db:"url"`
	Key string `json:"key" bson:"key" db:"key"`
}

// Horse is one manifest entry on a shipment.
type Horse struct {
	RegisteredName    string    `json:"registered_name" bson:"registered_name"`
	BarnName          string    `json:"barn_name,omitempty" bson:"barn_name,omitempty"`
	Breed             string    `json:"breed,omitempty" bson:"breed,omitempty"`
	Colour            string    `json:"colour,omitempty" bson:"colour,omitempty"`
	Age               string    `json:"age,omitempty" bson:"age,omitempty"`
	Sex               string    `json:"sex,omitempty" bson:"sex,omitempty"`
	GeneralInfo       string    `json:"general_info,omitempty" bson:"general_info,omitempty"`
	Photo             *Document `json:"photo,omitempty" bson:"photo,omitempty"`
	Coggins           *Document `json:"coggins,omitempty" bson:"coggins,omitempty"`
	HealthCertificate *Document `json:"health_certificate,omitempty" bson:"health_certificate,omitempty"`
}

// Location is one point on a shipment's trail.
type Location struct {
	Latitude  float64   `json:"latitude" bson:"latitude"`
	Longitude float64   `json:"longitude" bson:"longitude"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "pending"
	ShipmentAssigned  ShipmentStatus = "assigned"
	ShipmentPicked    ShipmentStatus = "picked"
	ShipmentInTransit ShipmentStatus = "in_transit"
	ShipmentDelivered ShipmentStatus = "delivered"
	ShipmentCancelled ShipmentStatus = "cancelled"
)

// Unassigned reports whether the status permits a nil carrier. A shipment has
// an assigned carrier exactly when its status is neither pending nor cancelled.
func (s ShipmentStatus) Unassigned() bool {
	return s == ShipmentPending || s == ShipmentCancelled
}

// Shipment is the customer-side transport request.
type Shipment struct {
	ID         string  `json:"id" bson:"_id,omitempty" db:"id"`
	CustomerID string  `json:"customer_id" bson:"customer_id" db:"customer_id"`
	CarrierID  *string `json:"carrier_id,omitempty" bson:"carrier_id,omitempty" db:"carrier_id"`

	Status ShipmentStatus `json:"status" bson:"status" db:"status"`

	PickupLocation   string `json:"pickup_location" bson:"pickup_location" db:"pickup_location"`
	PickupTimeOption string `json:"pickup_time_option" bson:"pickup_time_option" db:"pickup_time_option"`
	PickupDate       string `json:"pickup_date" bson:"pickup_date" db:"pickup_date"`

	DeliveryLocation   string `json:"delivery_location" bson:"delivery_location" db:"delivery_location"`
	DeliveryTimeOption string `json:"delivery_time_option" bson:"delivery_time_option" db:"delivery_time_option"`
	DeliveryDate       string `json:"delivery_date" bson:"delivery_date" db:"delivery_date"`

	NumberOfHorses int     `json:"number_of_horses" bson:"number_of_horses" db:"number_of_horses"`
	Horses         []Horse `json:"horses,omitempty" bson:"horses,omitempty"`
	AdditionalInfo string  `json:"additional_info,omitempty" bson:"additional_info,omitempty" db:"additional_info"`

	CurrentLocation *Location  `json:"current_location,omitempty" bson:"current_location,omitempty"`
	LocationHistory []Location `json:"location_history,omitempty" bson:"location_history,omitempty"`

	WaybillURL       *string    `json:"waybill_url,omitempty" bson:"waybill_url,omitempty" db:"waybill_url"`
	WaybillCreatedAt *time.Time `json:"waybill_created_at,omitempty" bson:"waybill_created_at,omitempty" db:"waybill_created_at"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" db:"updated_at"`
}

// Validate checks the fields a customer must supply at creation time.
func (s *Shipment) Validate() error {
	switch {
	case s.CustomerID == "":
		return NewValidationError("customer id is required")
	case s.PickupLocation == "":
		return NewValidationError("pickup location is required")
	case s.PickupTimeOption == "":
		return NewValidationError("pickup time option is required")
	case s.DeliveryLocation == "":
		return NewValidationError("delivery location is required")
	case s.DeliveryTimeOption == "":
		return NewValidationError("delivery time option is required")
	case !ValidDate(s.PickupDate):
		return NewValidationError("pickup date must be a %s date, got %q", DateLayout, s.PickupDate)
	case !ValidDate(s.DeliveryDate):
		return NewValidationError("delivery date must be a %s date, got %q", DateLayout, s.DeliveryDate)
	case s.NumberOfHorses < 1:
		return NewValidationError("shipment needs at least one horse")
	}
	return nil
}

// Documents collects every stored manifest attachment, for cascade deletion.
func (s *Shipment) Documents() []Document {
	var docs []Document
	for _, h := range s.Horses {
		for _, d := range []*Document{h.Photo, h.Coggins, h.HealthCertificate} {
			if d != nil && d.Key != "" {
				docs = append(docs, *d)
			}
		}
	}
	return docs
}
