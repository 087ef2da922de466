package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"horseshipt/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	store   *MemoryStore
	booking *BookingRepository
	ctx     context.Context
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	store := NewMemoryStore()
	return &bookingFixture{
		store:   store,
		booking: NewBookingRepository(store.Shipments(), store.Quotes(), store.Assignments()),
		ctx:     context.Background(),
	}
}

func (f *bookingFixture) addUser(t *testing.T, name string, role models.Role) *models.AppUser {
	t.Helper()
	user := &models.AppUser{
		Name:     name,
		Email:    name + "@example.com",
		Role:     role,
		Password: "hunter22",
	}
	require.NoError(t, f.store.Users().CreateUser(context.Background(), user))
	return user
}

func (f *bookingFixture) addShipment(t *testing.T, customerID, pickupDate string) *models.Shipment {
	t.Helper()
	shipment := &models.Shipment{
		CustomerID:         customerID,
		Status:             models.ShipmentPending,
		PickupLocation:     "Lexington, KY",
		PickupTimeOption:   "morning",
		PickupDate:         pickupDate,
		DeliveryLocation:   "Ocala, FL",
		DeliveryTimeOption: "afternoon",
		DeliveryDate:       "2026-09-20",
		NumberOfHorses:     1,
		Horses:             []models.Horse{{RegisteredName: "Midnight Run"}},
	}
	require.NoError(t, f.store.Shipments().Create(context.Background(), shipment))
	return shipment
}

func TestSubmitQuote(t *testing.T) {
	f := newBookingFixture(t)
	customer := f.addUser(t, "alice", models.RoleCustomer)
	carrier := f.addUser(t, "bob", models.RoleCarrier)
	shipment := f.addShipment(t, customer.ID, "2026-09-15")

	t.Run("rejects invalid quote", func(t *testing.T) {
		err := f.booking.SubmitQuote(f.ctx, &models.Quote{ShipmentID: shipment.ID, CarrierID: carrier.ID})
		assert.True(t, models.IsValidation(err))
	})

	t.Run("rejects unknown shipment", func(t *testing.T) {
		err := f.booking.SubmitQuote(f.ctx, &models.Quote{ShipmentID: "nope", CarrierID: carrier.ID, Price: 900})
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("stores quote as pending", func(t *testing.T) {
		quote := &models.Quote{ShipmentID: shipment.ID, CarrierID: carrier.ID, Price: 900, Status: "accepted"}
		require.NoError(t, f.booking.SubmitQuote(f.ctx, quote))
		assert.Equal(t, models.QuotePending, quote.Status)
		assert.NotEmpty(t, quote.ID)
	})

	t.Run("second quote from same carrier conflicts", func(t *testing.T) {
		err := f.booking.SubmitQuote(f.ctx, &models.Quote{ShipmentID: shipment.ID, CarrierID: carrier.ID, Price: 850})
		assert.True(t, models.IsConflict(err))
	})

	t.Run("different carrier can still quote", func(t *testing.T) {
		other := f.addUser(t, "carol", models.RoleCarrier)
		err := f.booking.SubmitQuote(f.ctx, &models.Quote{ShipmentID: shipment.ID, CarrierID: other.ID, Price: 950})
		assert.NoError(t, err)
	})
}

func TestAcceptQuote(t *testing.T) {
	f := newBookingFixture(t)
	customer := f.addUser(t, "alice", models.RoleCustomer)
	carrierA := f.addUser(t, "bob", models.RoleCarrier)
	carrierB := f.addUser(t, "carol", models.RoleCarrier)
	shipment := f.addShipment(t, customer.ID, "2026-09-15")

	quoteA := &models.Quote{ShipmentID: shipment.ID, CarrierID: carrierA.ID, Price: 900}
	quoteB := &models.Quote{ShipmentID: shipment.ID, CarrierID: carrierB.ID, Price: 950}
	require.NoError(t, f.booking.SubmitQuote(f.ctx, quoteA))
	require.NoError(t, f.booking.SubmitQuote(f.ctx, quoteB))

	t.Run("unknown quote", func(t *testing.T) {
		_, err := f.booking.AcceptQuote(f.ctx, "nope", customer.ID)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("only the owner may accept", func(t *testing.T) {
		_, err := f.booking.AcceptQuote(f.ctx, quoteA.ID, carrierB.ID)
		assert.True(t, models.IsAuthorization(err))
	})

	t.Run("accept resolves the bidding", func(t *testing.T) {
		accepted, err := f.booking.AcceptQuote(f.ctx, quoteA.ID, customer.ID)
		require.NoError(t, err)
		assert.Equal(t, models.QuoteAccepted, accepted.Status)

		// The losing sibling is rejected.
		losing, err := f.store.Quotes().GetByID(f.ctx, quoteB.ID)
		require.NoError(t, err)
		assert.Equal(t, models.QuoteRejected, losing.Status)

		// An assignment exists for the winning carrier.
		assignment, err := f.store.Assignments().GetByShipment(f.ctx, shipment.ID)
		require.NoError(t, err)
		require.NotNil(t, assignment)
		assert.Equal(t, carrierA.ID, assignment.CarrierID)
		assert.Equal(t, models.AssignmentAssigned, assignment.Status)

		// The shipment reflects the commitment.
		got, err := f.store.Shipments().GetByID(f.ctx, shipment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ShipmentAssigned, got.Status)
		require.NotNil(t, got.CarrierID)
		assert.Equal(t, carrierA.ID, *got.CarrierID)
	})

	t.Run("accepting the loser afterwards conflicts", func(t *testing.T) {
		_, err := f.booking.AcceptQuote(f.ctx, quoteB.ID, customer.ID)
		assert.True(t, models.IsConflict(err))
	})

	t.Run("re-accepting the winner conflicts too", func(t *testing.T) {
		_, err := f.booking.AcceptQuote(f.ctx, quoteA.ID, customer.ID)
		assert.True(t, models.IsConflict(err))
	})
}

func TestAvailableShipments(t *testing.T) {
	f := newBookingFixture(t)
	customer := f.addUser(t, "alice", models.RoleCustomer)
	past := f.addShipment(t, customer.ID, "2026-09-01")
	near := f.addShipment(t, customer.ID, "2026-09-10")
	far := f.addShipment(t, customer.ID, "2026-09-20")
	_ = past

	t.Run("filters by the as-of day, sorted by pickup", func(t *testing.T) {
		list, err := f.booking.AvailableShipments(f.ctx, "2026-09-05")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, near.ID, list[0].ID)
		assert.Equal(t, far.ID, list[1].ID)
	})

	t.Run("committed shipments drop off the board", func(t *testing.T) {
		carrier := f.addUser(t, "bob", models.RoleCarrier)
		_, err := f.booking.ClaimShipment(f.ctx, near.ID, carrier.ID)
		require.NoError(t, err)

		list, err := f.booking.AvailableShipments(f.ctx, "2026-09-05")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, far.ID, list[0].ID)
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		_, err := f.booking.AvailableShipments(f.ctx, "05-09-2026")
		assert.True(t, models.IsValidation(err))
	})
}

func TestClaimShipment(t *testing.T) {
	f := newBookingFixture(t)
	customer := f.addUser(t, "alice", models.RoleCustomer)
	carrier := f.addUser(t, "bob", models.RoleCarrier)

	t.Run("unknown shipment", func(t *testing.T) {
		_, err := f.booking.ClaimShipment(f.ctx, "nope", carrier.ID)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("claim commits the shipment", func(t *testing.T) {
		shipment := f.addShipment(t, customer.ID, "2026-09-15")
		assignment, err := f.booking.ClaimShipment(f.ctx, shipment.ID, carrier.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AssignmentAssigned, assignment.Status)
		assert.Equal(t, carrier.ID, assignment.CarrierID)

		got, err := f.store.Shipments().GetByID(f.ctx, shipment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ShipmentAssigned, got.Status)
	})

	t.Run("cannot claim a committed shipment", func(t *testing.T) {
		shipment := f.addShipment(t, customer.ID, "2026-09-16")
		other := f.addUser(t, "carol", models.RoleCarrier)
		_, err := f.booking.ClaimShipment(f.ctx, shipment.ID, other.ID)
		require.NoError(t, err)

		_, err = f.booking.ClaimShipment(f.ctx, shipment.ID, carrier.ID)
		assert.True(t, models.IsConflict(err))
	})

	t.Run("same pickup day is double-booking", func(t *testing.T) {
		// carrier already holds 2026-09-15 from the claim above.
		shipment := f.addShipment(t, customer.ID, "2026-09-15")
		_, err := f.booking.ClaimShipment(f.ctx, shipment.ID, carrier.ID)
		assert.True(t, models.IsConflict(err))
	})

	t.Run("a cancelled assignment frees the day", func(t *testing.T) {
		dave := f.addUser(t, "dave", models.RoleCarrier)
		first := f.addShipment(t, customer.ID, "2026-10-01")
		assignment, err := f.booking.ClaimShipment(f.ctx, first.ID, dave.ID)
		require.NoError(t, err)
		_, err = f.booking.UpdateAssignmentStatus(f.ctx, assignment.ID, dave.ID, models.AssignmentCancelled)
		require.NoError(t, err)

		second := f.addShipment(t, customer.ID, "2026-10-01")
		_, err = f.booking.ClaimShipment(f.ctx, second.ID, dave.ID)
		assert.NoError(t, err)
	})
}

func TestClaimShipmentRace(t *testing.T) {
	f := newBookingFixture(t)
	customer := f.addUser(t, "alice", models.RoleCustomer)
	shipment := f.addShipment(t, customer.ID, "2026-09-15")

	const racers = 8
	carriers := make([]*models.AppUser, racers)
	for i := range carriers {
		carriers[i] = f.addUser(t, "carrier"+string(rune('a'+i)), models.RoleCarrier)
	}

	var wg sync.WaitGroup
	results := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.booking.ClaimShipment(f.ctx, shipment.ID, carriers[i].ID)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
		} else {
			assert.True(t, models.IsConflict(err), "losers must see a conflict, got %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one carrier may win the race")

	assignment, err := f.store.Assignments().GetByShipment(f.ctx, shipment.ID)
	require.NoError(t, err)
	require.NotNil(t, assignment)
}

func TestUpdateAssignmentStatus(t *testing.T) {
	f := newBookingFixture(t)
	customer := f.addUser(t, "alice", models.RoleCustomer)
	carrier := f.addUser(t, "bob", models.RoleCarrier)
	shipment := f.addShipment(t, customer.ID, "2026-09-15")
	assignment, err := f.booking.ClaimShipment(f.ctx, shipment.ID, carrier.ID)
	require.NoError(t, err)

	t.Run("only the assignee may drive the state machine", func(t *testing.T) {
		other := f.addUser(t, "carol", models.RoleCarrier)
		_, err := f.booking.UpdateAssignmentStatus(f.ctx, assignment.ID, other.ID, models.AssignmentInTransit)
		assert.True(t, models.IsAuthorization(err))
	})

	t.Run("cannot skip ahead", func(t *testing.T) {
		_, err := f.booking.UpdateAssignmentStatus(f.ctx, assignment.ID, carrier.ID, models.AssignmentCompleted)
		assert.True(t, models.IsState(err))
	})

	t.Run("in transit propagates to the shipment", func(t *testing.T) {
		updated, err := f.booking.UpdateAssignmentStatus(f.ctx, assignment.ID, carrier.ID, models.AssignmentInTransit)
		require.NoError(t, err)
		assert.Equal(t, models.AssignmentInTransit, updated.Status)

		got, err := f.store.Shipments().GetByID(f.ctx, shipment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ShipmentInTransit, got.Status)
	})

	t.Run("completion delivers the shipment", func(t *testing.T) {
		_, err := f.booking.UpdateAssignmentStatus(f.ctx, assignment.ID, carrier.ID, models.AssignmentCompleted)
		require.NoError(t, err)

		got, err := f.store.Shipments().GetByID(f.ctx, shipment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ShipmentDelivered, got.Status)
	})

	t.Run("terminal states stay terminal", func(t *testing.T) {
		_, err := f.booking.UpdateAssignmentStatus(f.ctx, assignment.ID, carrier.ID, models.AssignmentCancelled)
		assert.True(t, models.IsState(err))
	})
}

func TestCancellationReleasesCarrier(t *testing.T) {
	f := newBookingFixture(t)
	customer := f.addUser(t, "alice", models.RoleCustomer)
	carrier := f.addUser(t, "bob", models.RoleCarrier)
	shipment := f.addShipment(t, customer.ID, "2026-09-15")
	assignment, err := f.booking.ClaimShipment(f.ctx, shipment.ID, carrier.ID)
	require.NoError(t, err)

	_, err = f.booking.UpdateAssignmentStatus(f.ctx, assignment.ID, carrier.ID, models.AssignmentCancelled)
	require.NoError(t, err)

	got, err := f.store.Shipments().GetByID(f.ctx, shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShipmentCancelled, got.Status)
	assert.Nil(t, got.CarrierID, "a cancelled shipment keeps no carrier")
}

func TestAppendAssignmentLocation(t *testing.T) {
	f := newBookingFixture(t)
	customer := f.addUser(t, "alice", models.RoleCustomer)
	carrier := f.addUser(t, "bob", models.RoleCarrier)
	shipment := f.addShipment(t, customer.ID, "2026-09-15")
	assignment, err := f.booking.ClaimShipment(f.ctx, shipment.ID, carrier.ID)
	require.NoError(t, err)

	t.Run("only the assignee may report", func(t *testing.T) {
		other := f.addUser(t, "carol", models.RoleCarrier)
		_, err := f.booking.AppendAssignmentLocation(f.ctx, assignment.ID, other.ID, models.Location{Latitude: 1, Longitude: 2})
		assert.True(t, models.IsAuthorization(err))
	})

	t.Run("a point lands on both trails", func(t *testing.T) {
		loc := models.Location{Latitude: 38.04, Longitude: -84.5}
		updated, err := f.booking.AppendAssignmentLocation(f.ctx, assignment.ID, carrier.ID, loc)
		require.NoError(t, err)
		require.NotNil(t, updated.CurrentLocation)
		assert.False(t, updated.CurrentLocation.UpdatedAt.IsZero(), "timestamp is defaulted")

		stored, err := f.store.Assignments().GetByID(f.ctx, assignment.ID)
		require.NoError(t, err)
		require.Len(t, stored.LocationHistory, 1)

		mirrored, err := f.store.Shipments().GetByID(f.ctx, shipment.ID)
		require.NoError(t, err)
		require.NotNil(t, mirrored.CurrentLocation)
		assert.Equal(t, loc.Latitude, mirrored.CurrentLocation.Latitude)
		require.Len(t, mirrored.LocationHistory, 1)
	})

	t.Run("reporting by shipment id hits the same trails", func(t *testing.T) {
		updated, err := f.booking.AppendShipmentLocation(f.ctx, shipment.ID, carrier.ID,
			models.Location{Latitude: 37.2, Longitude: -84.3})
		require.NoError(t, err)
		require.NotNil(t, updated.CurrentLocation)
		assert.Equal(t, 37.2, updated.CurrentLocation.Latitude)

		stored, err := f.store.Assignments().GetByID(f.ctx, assignment.ID)
		require.NoError(t, err)
		require.Len(t, stored.LocationHistory, 2)
	})

	t.Run("an unassigned carrier cannot report by shipment id", func(t *testing.T) {
		frank := f.addUser(t, "frank", models.RoleCarrier)
		_, err := f.booking.AppendShipmentLocation(f.ctx, shipment.ID, frank.ID,
			models.Location{Latitude: 1, Longitude: 1})
		assert.True(t, models.IsAuthorization(err))
	})

	t.Run("points accumulate in order", func(t *testing.T) {
		_, err := f.booking.AppendAssignmentLocation(f.ctx, assignment.ID, carrier.ID,
			models.Location{Latitude: 36.1, Longitude: -84.1, UpdatedAt: time.Now().UTC()})
		require.NoError(t, err)

		stored, err := f.store.Assignments().GetByID(f.ctx, assignment.ID)
		require.NoError(t, err)
		require.Len(t, stored.LocationHistory, 3)
		assert.Equal(t, 36.1, stored.CurrentLocation.Latitude)
	})
}

func TestDeleteShipment(t *testing.T) {
	f := newBookingFixture(t)
	customer := f.addUser(t, "alice", models.RoleCustomer)
	other := f.addUser(t, "eve", models.RoleCustomer)

	shipment := &models.Shipment{
		CustomerID:         customer.ID,
		Status:             models.ShipmentPending,
		PickupLocation:     "Lexington, KY",
		PickupTimeOption:   "morning",
		PickupDate:         "2026-09-15",
		DeliveryLocation:   "Ocala, FL",
		DeliveryTimeOption: "afternoon",
		DeliveryDate:       "2026-09-20",
		NumberOfHorses:     1,
		Horses: []models.Horse{{
			RegisteredName: "Midnight Run",
			Coggins:        &models.Document{URL: "https://cdn.example.com/c.pdf", Key: "documents/c.pdf"},
		}},
	}
	require.NoError(t, f.store.Shipments().Create(f.ctx, shipment))

	t.Run("only the owner may delete", func(t *testing.T) {
		_, err := f.booking.DeleteShipment(f.ctx, shipment.ID, other.ID)
		assert.True(t, models.IsAuthorization(err))
	})

	t.Run("delete reports the attachments to release", func(t *testing.T) {
		docs, err := f.booking.DeleteShipment(f.ctx, shipment.ID, customer.ID)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "documents/c.pdf", docs[0].Key)

		got, err := f.store.Shipments().GetByID(f.ctx, shipment.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestShipmentForViewer(t *testing.T) {
	f := newBookingFixture(t)
	customer := f.addUser(t, "alice", models.RoleCustomer)
	carrier := f.addUser(t, "bob", models.RoleCarrier)
	stranger := f.addUser(t, "eve", models.RoleCarrier)
	shipment := f.addShipment(t, customer.ID, "2026-09-15")

	t.Run("owner sees the shipment", func(t *testing.T) {
		got, err := f.booking.ShipmentForViewer(f.ctx, shipment.ID, customer.ID)
		require.NoError(t, err)
		assert.Equal(t, shipment.ID, got.ID)
	})

	t.Run("strangers do not", func(t *testing.T) {
		_, err := f.booking.ShipmentForViewer(f.ctx, shipment.ID, stranger.ID)
		assert.True(t, models.IsAuthorization(err))
	})

	t.Run("the assigned carrier does", func(t *testing.T) {
		_, err := f.booking.ClaimShipment(f.ctx, shipment.ID, carrier.ID)
		require.NoError(t, err)

		got, err := f.booking.ShipmentForViewer(f.ctx, shipment.ID, carrier.ID)
		require.NoError(t, err)
		assert.Equal(t, shipment.ID, got.ID)
	})
}
