package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"horseshipt/models"
	"horseshipt/repository"
	"horseshipt/utils"

	"go.uber.org/zap"
)

type AssignmentHandler struct {
	Booking  *repository.BookingRepository
	Notifier *utils.Notifier
	Metrics  *utils.Metrics
	Logger   *zap.Logger
}

// Marketplace handles GET /marketplace: the open-shipment board for carriers.
// An optional ?date=YYYY-MM-DD overrides the as-of day.
func (h *AssignmentHandler) Marketplace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if _, ok := requireRole(w, r, models.RoleCarrier); !ok {
		return
	}

	list, err := h.Booking.AvailableShipments(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Shipment{}
	}

	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: list})
}

// Claim handles POST /marketplace/{id}/claim: direct self-assignment.
func (h *AssignmentHandler) Claim(w http.ResponseWriter, r *http.Request, shipmentID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	p, ok := requireRole(w, r, models.RoleCarrier)
	if !ok {
		return
	}

	assignment, err := h.Booking.ClaimShipment(r.Context(), shipmentID, p.UserID)
	if err != nil {
		if models.IsConflict(err) {
			h.Metrics.Conflicts.WithLabelValues("claim_shipment").Inc()
		}
		writeError(w, err)
		return
	}
	h.Metrics.ShipmentsClaimed.Inc()

	if assignment.Shipment != nil {
		h.Notifier.Notify(r.Context(), assignment.Shipment.CustomerID, models.EventShipment,
			"A carrier accepted your shipment",
			fmt.Sprintf("A carrier has accepted your shipment from %s to %s, pickup on %s.",
				assignment.Shipment.PickupLocation, assignment.Shipment.DeliveryLocation, assignment.Shipment.PickupDate),
			fmt.Sprintf("Your shipment to %s has been accepted by a carrier.", assignment.Shipment.DeliveryLocation))
	}

	writeJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Message: "Shipment claimed",
		Data:    assignment,
	})
}

// List handles GET /assignments: the carrier's own jobs.
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	p, ok := requireRole(w, r, models.RoleCarrier)
	if !ok {
		return
	}

	list, err := h.Booking.Assignments.ListByCarrier(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Assignment{}
	}

	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: list})
}

// Get handles GET /assignments/{id}.
func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	p, ok := requireRole(w, r, models.RoleCarrier)
	if !ok {
		return
	}

	assignment, err := h.Booking.AssignmentForCarrier(r.Context(), id, p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: assignment})
}

// UpdateStatus handles PUT /assignments/{id}/status.
func (h *AssignmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}
	p, ok := requireRole(w, r, models.RoleCarrier)
	if !ok {
		return
	}

	var payload struct {
		Status models.AssignmentStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{
			Success: false,
			Message: "Invalid request payload: " + err.Error(),
		})
		return
	}

	assignment, err := h.Booking.UpdateAssignmentStatus(r.Context(), id, p.UserID, payload.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	if shipment, serr := h.Booking.Shipments.GetByID(r.Context(), assignment.ShipmentID); serr == nil && shipment != nil {
		h.Notifier.Notify(r.Context(), shipment.CustomerID, models.EventShipment,
			"Shipment status update",
			fmt.Sprintf("Your shipment to %s is now %s.", shipment.DeliveryLocation, shipment.Status),
			fmt.Sprintf("Shipment update: now %s.", shipment.Status))
	}

	writeJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Message: "Assignment status updated",
		Data:    assignment,
	})
}

// UpdateLocation handles POST /assignments/{id}/location.
func (h *AssignmentHandler) UpdateLocation(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	p, ok := requireRole(w, r, models.RoleCarrier)
	if !ok {
		return
	}

	var loc models.Location
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{
			Success: false,
			Message: "Invalid request payload: " + err.Error(),
		})
		return
	}

	assignment, err := h.Booking.AppendAssignmentLocation(r.Context(), id, p.UserID, loc)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Message: "Location recorded",
		Data:    assignment,
	})
}
