package models

import "time"

// Notification event types consumed by the dispatcher and the settings toggles.
const (
	EventQuote    = "quote"
	EventShipment = "shipment"
	EventMessage  = "message"
)

// ChannelToggle enables or disables the two outbound channels for one event type.
type ChannelToggle struct {
	Email bool `json:"email" bson:"email"`
	SMS   bool `json:"sms" bson:"sms"`
}

// NotificationPrefs holds a carrier's per-event channel toggles.
type NotificationPrefs struct {
	Quote    ChannelToggle `json:"quote" bson:"quote"`
	Shipment ChannelToggle `json:"shipment" bson:"shipment"`
	Message  ChannelToggle `json:"message" bson:"message"`
}

// CarrierSettings is created lazily the first time a carrier is notified,
// with every channel enabled.
type CarrierSettings struct {
	ID            string            `json:"id" bson:"_id,omitempty" db:"id"`
	CarrierID     string            `json:"carrier_id" bson:"carrier_id" db:"carrier_id"`
	Notifications NotificationPrefs `json:"notifications" bson:"notifications"`
	CreatedAt     time.Time         `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" bson:"updated_at" db:"updated_at"`
}

// DefaultCarrierSettings returns all-on settings for a carrier.
func DefaultCarrierSettings(carrierID string) *CarrierSettings {
	on := ChannelToggle{Email: true, SMS: true}
	return &CarrierSettings{
		CarrierID: carrierID,
		Notifications: NotificationPrefs{
			Quote:    on,
			Shipment: on,
			Message:  on,
		},
	}
}

// Channels returns the toggle for an event type; unknown events are silent.
func (s *CarrierSettings) Channels(event string) ChannelToggle {
	switch event {
	case EventQuote:
		return s.Notifications.Quote
	case EventShipment:
		return s.Notifications.Shipment
	case EventMessage:
		return s.Notifications.Message
	}
	return ChannelToggle{}
}
