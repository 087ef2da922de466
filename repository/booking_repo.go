package repository

import (
	"context"
	"time"

	"horseshipt/models"
)

// BookingRepository combines the three ledgers and carries the matching
// workflow: quote submission and acceptance, direct claims, and the carrier
// status/location propagation back onto the customer-side shipment.
//
// There are no in-process locks; every cross-ledger write sequence is ordered
// so that the assignment insert, which is uniqueness-protected, happens before
// any quote or shipment mutation. A lost race on that insert surfaces as a
// ConflictError and leaves the other ledgers untouched.
type BookingRepository struct {
	Shipments   ShipmentRepository
	Quotes      QuoteRepository
	Assignments AssignmentRepository
}

func NewBookingRepository(shipments ShipmentRepository, quotes QuoteRepository, assignments AssignmentRepository) *BookingRepository {
	return &BookingRepository{
		Shipments:   shipments,
		Quotes:      quotes,
		Assignments: assignments,
	}
}

// SubmitQuote records a carrier's offer against an existing shipment.
// A duplicate (shipment, carrier) pair fails with a ConflictError from the
// storage constraint, regardless of what a prior read saw.
func (r *BookingRepository) SubmitQuote(ctx context.Context, q *models.Quote) error {
	if err := q.Validate(); err != nil {
		return err
	}

	shipment, err := r.Shipments.GetByID(ctx, q.ShipmentID)
	if err != nil {
		return err
	}
	if shipment == nil {
		return models.NewNotFoundError("shipment %s not found", q.ShipmentID)
	}

	q.Status = models.QuotePending
	return r.Quotes.Create(ctx, q)
}

// AcceptQuote resolves the bidding on a shipment to a single winner.
//
// Write order matters: the assignment is created first because its unique
// shipment constraint is the serialization point. If that insert loses a race
// the quote is still pending and the whole call is safely retryable.
func (r *BookingRepository) AcceptQuote(ctx context.Context, quoteID, customerID string) (*models.Quote, error) {
	quote, err := r.Quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, models.NewNotFoundError("quote %s not found", quoteID)
	}

	shipment, err := r.Shipments.GetByID(ctx, quote.ShipmentID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, models.NewNotFoundError("shipment %s not found", quote.ShipmentID)
	}
	if shipment.CustomerID != customerID {
		return nil, models.NewAuthorizationError("shipment %s does not belong to caller", shipment.ID)
	}

	existing, err := r.Assignments.GetByShipment(ctx, quote.ShipmentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("shipment %s is already committed to a carrier", quote.ShipmentID)
	}

	assignment := &models.Assignment{
		ShipmentID: quote.ShipmentID,
		CarrierID:  quote.CarrierID,
		Status:     models.AssignmentAssigned,
	}
	if err := r.Assignments.Create(ctx, assignment); err != nil {
		return nil, err
	}

	if err := r.Quotes.SetStatus(ctx, quote.ID, models.QuoteAccepted); err != nil {
		return nil, err
	}
	if err := r.Quotes.RejectSiblings(ctx, quote.ShipmentID, quote.ID); err != nil {
		return nil, err
	}
	if err := r.Shipments.SetAssigned(ctx, quote.ShipmentID, quote.CarrierID); err != nil {
		return nil, err
	}

	quote.Status = models.QuoteAccepted
	return quote, nil
}

// AvailableShipments lists the marketplace board as of a calendar day.
func (r *BookingRepository) AvailableShipments(ctx context.Context, asOfDate string) ([]*models.Shipment, error) {
	if asOfDate == "" {
		asOfDate = time.Now().UTC().Format(models.DateLayout)
	}
	if !models.ValidDate(asOfDate) {
		return nil, models.NewValidationError("as-of date must be a %s date, got %q", models.DateLayout, asOfDate)
	}
	return r.Shipments.ListAvailable(ctx, asOfDate)
}

// ClaimShipment is the direct self-assignment path, bypassing quoting.
// The pre-checks are best-effort reads; the assignment insert's uniqueness
// constraint is what actually decides a race between two carriers.
func (r *BookingRepository) ClaimShipment(ctx context.Context, shipmentID, carrierID string) (*models.Assignment, error) {
	shipment, err := r.Shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, models.NewNotFoundError("shipment %s not found", shipmentID)
	}
	if shipment.Status != models.ShipmentPending {
		return nil, models.NewConflictError("shipment %s is no longer open (status %s)", shipmentID, shipment.Status)
	}

	existing, err := r.Assignments.GetByShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("shipment %s is already accepted by another carrier", shipmentID)
	}

	// Double-booking guard: one pickup day per carrier.
	held, err := r.Assignments.ListByCarrier(ctx, carrierID)
	if err != nil {
		return nil, err
	}
	for _, a := range held {
		if a.Status == models.AssignmentCancelled {
			continue
		}
		if a.Shipment != nil && a.Shipment.PickupDate == shipment.PickupDate {
			return nil, models.NewConflictError("carrier already has a shipment on pickup date %s", shipment.PickupDate)
		}
	}

	assignment := &models.Assignment{
		ShipmentID: shipmentID,
		CarrierID:  carrierID,
		Status:     models.AssignmentAssigned,
	}
	if err := r.Assignments.Create(ctx, assignment); err != nil {
		return nil, err
	}

	if err := r.Shipments.SetAssigned(ctx, shipmentID, carrierID); err != nil {
		return nil, err
	}
	assignment.Shipment = shipment
	return assignment, nil
}

// AssignmentForCarrier fetches one assignment and gates it by ownership.
func (r *BookingRepository) AssignmentForCarrier(ctx context.Context, assignmentID, carrierID string) (*models.Assignment, error) {
	assignment, err := r.Assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, models.NewNotFoundError("assignment %s not found", assignmentID)
	}
	if assignment.CarrierID != carrierID {
		return nil, models.NewAuthorizationError("assignment %s does not belong to caller", assignmentID)
	}
	return assignment, nil
}

// UpdateAssignmentStatus advances the carrier-side state machine and
// propagates the derived status to the linked shipment. A cancelled
// assignment leaves the shipment cancelled too; it is not reopened.
func (r *BookingRepository) UpdateAssignmentStatus(ctx context.Context, assignmentID, carrierID string, next models.AssignmentStatus) (*models.Assignment, error) {
	assignment, err := r.AssignmentForCarrier(ctx, assignmentID, carrierID)
	if err != nil {
		return nil, err
	}
	if !assignment.Status.CanTransitionTo(next) {
		return nil, models.NewStateError("cannot move assignment from %s to %s", assignment.Status, next)
	}

	if err := r.Assignments.SetStatus(ctx, assignmentID, next); err != nil {
		return nil, err
	}

	derived := next.ShipmentStatus()
	if derived == models.ShipmentCancelled {
		err = r.Shipments.Release(ctx, assignment.ShipmentID, derived)
	} else {
		err = r.Shipments.SetStatus(ctx, assignment.ShipmentID, derived)
	}
	if err != nil {
		return nil, err
	}

	assignment.Status = next
	return assignment, nil
}

// AppendAssignmentLocation appends a point to the carrier's trail and mirrors
// it onto the customer-visible shipment trail. The two appends are each
// durable before returning but are not one transaction; the trails may
// briefly disagree after a crash in between.
func (r *BookingRepository) AppendAssignmentLocation(ctx context.Context, assignmentID, carrierID string, loc models.Location) (*models.Assignment, error) {
	assignment, err := r.AssignmentForCarrier(ctx, assignmentID, carrierID)
	if err != nil {
		return nil, err
	}

	if loc.UpdatedAt.IsZero() {
		loc.UpdatedAt = time.Now().UTC()
	}

	if err := r.Assignments.AppendLocation(ctx, assignmentID, loc); err != nil {
		return nil, err
	}
	if err := r.Shipments.AppendLocation(ctx, assignment.ShipmentID, loc); err != nil {
		return nil, err
	}

	assignment.CurrentLocation = &loc
	assignment.LocationHistory = append(assignment.LocationHistory, loc)
	return assignment, nil
}

// AppendShipmentLocation is the shipment-addressed form of the location
// report. The caller must be the assigned carrier; the point lands on both
// trails via the assignment path.
func (r *BookingRepository) AppendShipmentLocation(ctx context.Context, shipmentID, carrierID string, loc models.Location) (*models.Shipment, error) {
	shipment, err := r.Shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, models.NewNotFoundError("shipment %s not found", shipmentID)
	}
	if shipment.CarrierID == nil || *shipment.CarrierID != carrierID {
		return nil, models.NewAuthorizationError("shipment %s is not assigned to caller", shipmentID)
	}

	assignment, err := r.Assignments.GetByShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, models.NewStateError("shipment %s has no assignment to report against", shipmentID)
	}

	if _, err := r.AppendAssignmentLocation(ctx, assignment.ID, carrierID, loc); err != nil {
		return nil, err
	}
	return r.Shipments.GetByID(ctx, shipmentID)
}

// DeleteShipment removes a customer's shipment and reports the manifest
// documents the caller must release from object storage.
func (r *BookingRepository) DeleteShipment(ctx context.Context, shipmentID, customerID string) ([]models.Document, error) {
	shipment, err := r.Shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, models.NewNotFoundError("shipment %s not found", shipmentID)
	}
	if shipment.CustomerID != customerID {
		return nil, models.NewAuthorizationError("shipment %s does not belong to caller", shipmentID)
	}

	if err := r.Shipments.Delete(ctx, shipmentID); err != nil {
		return nil, err
	}
	return shipment.Documents(), nil
}

// ShipmentForViewer returns a shipment if the caller is the owning customer
// or the assigned carrier.
func (r *BookingRepository) ShipmentForViewer(ctx context.Context, shipmentID, callerID string) (*models.Shipment, error) {
	shipment, err := r.Shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, models.NewNotFoundError("shipment %s not found", shipmentID)
	}
	if shipment.CustomerID == callerID {
		return shipment, nil
	}
	if shipment.CarrierID != nil && *shipment.CarrierID == callerID {
		return shipment, nil
	}
	return nil, models.NewAuthorizationError("caller has no relationship to shipment %s", shipmentID)
}
