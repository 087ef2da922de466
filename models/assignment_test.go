package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignmentStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to AssignmentStatus
		ok       bool
	}{
		{AssignmentAssigned, AssignmentInTransit, true},
		{AssignmentAssigned, AssignmentCancelled, true},
		{AssignmentAssigned, AssignmentCompleted, false},
		{AssignmentInTransit, AssignmentCompleted, true},
		{AssignmentInTransit, AssignmentCancelled, true},
		{AssignmentInTransit, AssignmentAssigned, false},
		{AssignmentCompleted, AssignmentCancelled, false},
		{AssignmentCompleted, AssignmentInTransit, false},
		{AssignmentCancelled, AssignmentInTransit, false},
		{AssignmentCancelled, AssignmentCompleted, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestAssignmentStatusPropagation(t *testing.T) {
	assert.Equal(t, ShipmentAssigned, AssignmentAssigned.ShipmentStatus())
	assert.Equal(t, ShipmentInTransit, AssignmentInTransit.ShipmentStatus())
	assert.Equal(t, ShipmentDelivered, AssignmentCompleted.ShipmentStatus())
	assert.Equal(t, ShipmentCancelled, AssignmentCancelled.ShipmentStatus())
}
