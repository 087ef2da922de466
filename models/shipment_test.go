package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validShipment() *Shipment {
	return &Shipment{
		CustomerID:         "cust-1",
		PickupLocation:     "Lexington, KY",
		PickupTimeOption:   "morning",
		PickupDate:         "2026-09-15",
		DeliveryLocation:   "Ocala, FL",
		DeliveryTimeOption: "afternoon",
		DeliveryDate:       "2026-09-20",
		NumberOfHorses:     2,
	}
}

func TestShipmentValidate(t *testing.T) {
	assert.NoError(t, validShipment().Validate())

	s := validShipment()
	s.PickupDate = "15/09/2026"
	assert.True(t, IsValidation(s.Validate()))

	s = validShipment()
	s.NumberOfHorses = 0
	assert.True(t, IsValidation(s.Validate()))

	s = validShipment()
	s.DeliveryLocation = ""
	assert.True(t, IsValidation(s.Validate()))
}

func TestShipmentDocuments(t *testing.T) {
	s := validShipment()
	s.Horses = []Horse{
		{
			RegisteredName: "Midnight Run",
			Photo:          &Document{URL: "https://cdn/p.jpg", Key: "documents/p.jpg"},
			Coggins:        &Document{URL: "https://cdn/c.pdf", Key: "documents/c.pdf"},
		},
		{
			RegisteredName:    "Quiet Storm",
			HealthCertificate: &Document{URL: "https://cdn/h.pdf", Key: "documents/h.pdf"},
		},
		{RegisteredName: "No Papers"},
	}

	docs := s.Documents()
	require.Len(t, docs, 3)
	keys := []string{docs[0].Key, docs[1].Key, docs[2].Key}
	assert.ElementsMatch(t, []string{"documents/p.jpg", "documents/c.pdf", "documents/h.pdf"}, keys)
}

func TestShipmentStatusUnassigned(t *testing.T) {
	assert.True(t, ShipmentPending.Unassigned())
	assert.True(t, ShipmentCancelled.Unassigned())
	assert.False(t, ShipmentAssigned.Unassigned())
	assert.False(t, ShipmentInTransit.Unassigned())
	assert.False(t, ShipmentDelivered.Unassigned())
}
