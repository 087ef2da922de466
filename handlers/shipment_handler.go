package handlers

import (
	"encoding/json"
	"net/http"

	"horseshipt/models"
	"horseshipt/repository"
	"horseshipt/utils"

	"go.uber.org/zap"
)

type ShipmentHandler struct {
	Booking  *repository.BookingRepository
	Notifier *utils.Notifier
	Metrics  *utils.Metrics
	Logger   *zap.Logger
}

// Collection handles /shipments: POST creates, GET lists the caller's own.
func (h *ShipmentHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *ShipmentHandler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := requireRole(w, r, models.RoleCustomer)
	if !ok {
		return
	}

	var shipment models.Shipment
	if err := json.NewDecoder(r.Body).Decode(&shipment); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{
			Success: false,
			Message: "Invalid request payload: " + err.Error(),
		})
		return
	}

	shipment.CustomerID = p.UserID
	shipment.Status = models.ShipmentPending
	shipment.CarrierID = nil
	if err := shipment.Validate(); err != nil {
		writeError(w, err)
		return
	}

	if err := h.Booking.Shipments.Create(r.Context(), &shipment); err != nil {
		writeError(w, err)
		return
	}
	h.Metrics.ShipmentsCreated.Inc()

	writeJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Message: "Shipment created",
		Data:    shipment,
	})
}

func (h *ShipmentHandler) list(w http.ResponseWriter, r *http.Request) {
	p, ok := requireRole(w, r, models.RoleCustomer)
	if !ok {
		return
	}

	list, err := h.Booking.Shipments.ListByCustomer(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Shipment{}
	}

	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: list})
}

// ByID handles /shipments/{id}: GET, PUT, DELETE.
func (h *ShipmentHandler) ByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		methodNotAllowed(w)
	}
}

func (h *ShipmentHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	shipment, err := h.Booking.ShipmentForViewer(r.Context(), id, p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: shipment})
}

// update lets the owning customer edit a shipment while it is still open.
func (h *ShipmentHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	p, ok := requireRole(w, r, models.RoleCustomer)
	if !ok {
		return
	}

	existing, err := h.Booking.Shipments.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if existing == nil {
		writeError(w, models.NewNotFoundError("shipment %s not found", id))
		return
	}
	if existing.CustomerID != p.UserID {
		writeError(w, models.NewAuthorizationError("shipment %s does not belong to caller", id))
		return
	}
	if existing.Status != models.ShipmentPending {
		writeError(w, models.NewStateError("shipment %s can no longer be edited (status %s)", id, existing.Status))
		return
	}

	var payload models.Shipment
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{
			Success: false,
			Message: "Invalid request payload: " + err.Error(),
		})
		return
	}

	// Identity, status, and tracking fields are never client-writable.
	payload.ID = existing.ID
	payload.CustomerID = existing.CustomerID
	payload.CarrierID = existing.CarrierID
	payload.Status = existing.Status
	payload.CurrentLocation = existing.CurrentLocation
	payload.LocationHistory = existing.LocationHistory
	payload.WaybillURL = existing.WaybillURL
	payload.WaybillCreatedAt = existing.WaybillCreatedAt
	payload.CreatedAt = existing.CreatedAt

	if err := payload.Validate(); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Booking.Shipments.Update(r.Context(), &payload); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Message: "Shipment updated",
		Data:    payload,
	})
}

func (h *ShipmentHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	p, ok := requireRole(w, r, models.RoleCustomer)
	if !ok {
		return
	}

	docs, err := h.Booking.DeleteShipment(r.Context(), id, p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	// Best-effort object-storage cascade; the record is already gone.
	for _, doc := range docs {
		if err := utils.DeleteFromR2(doc.URL); err != nil {
			h.Logger.Warn("shipment delete: document cleanup failed",
				zap.String("shipment_id", id), zap.String("url", doc.URL), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Message: "Shipment deleted",
	})
}

// Location handles /shipments/{id}/location: GET returns the trail to any
// viewer, POST lets the assigned carrier report a point by shipment id.
func (h *ShipmentHandler) Location(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		h.locationTrail(w, r, id)
	case http.MethodPost:
		h.reportLocation(w, r, id)
	default:
		methodNotAllowed(w)
	}
}

func (h *ShipmentHandler) locationTrail(w http.ResponseWriter, r *http.Request, id string) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	shipment, err := h.Booking.ShipmentForViewer(r.Context(), id, p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data: map[string]interface{}{
			"current_location": shipment.CurrentLocation,
			"location_history": shipment.LocationHistory,
		},
	})
}

func (h *ShipmentHandler) reportLocation(w http.ResponseWriter, r *http.Request, id string) {
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

	shipment, err := h.Booking.AppendShipmentLocation(r.Context(), id, p.UserID, loc)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Message: "Location recorded",
		Data:    shipment,
	})
}

// Quotes handles GET /shipments/{id}/quotes: the owner reviews offers.
func (h *ShipmentHandler) Quotes(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	p, ok := requireRole(w, r, models.RoleCustomer)
	if !ok {
		return
	}

	shipment, err := h.Booking.Shipments.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if shipment == nil {
		writeError(w, models.NewNotFoundError("shipment %s not found", id))
		return
	}
	if shipment.CustomerID != p.UserID {
		writeError(w, models.NewAuthorizationError("shipment %s does not belong to caller", id))
		return
	}

	quotes, err := h.Booking.Quotes.ListByShipment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if quotes == nil {
		quotes = []*models.Quote{}
	}

	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: quotes})
}
