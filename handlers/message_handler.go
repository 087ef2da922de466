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

type MessageHandler struct {
	Threads  *repository.ThreadRepository
	Notifier *utils.Notifier
	Logger   *zap.Logger
}

// Messages handles /shipments/{id}/messages: GET lists the thread, POST
// appends to it. Both sides of the shipment may participate.
func (h *MessageHandler) Messages(w http.ResponseWriter, r *http.Request, shipmentID string) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r, shipmentID)
	case http.MethodPost:
		h.post(w, r, shipmentID)
	default:
		methodNotAllowed(w)
	}
}

func (h *MessageHandler) list(w http.ResponseWriter, r *http.Request, shipmentID string) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	messages, err := h.Threads.ListMessages(r.Context(), shipmentID, p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []*models.ShipmentMessage{}
	}

	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: messages})
}

func (h *MessageHandler) post(w http.ResponseWriter, r *http.Request, shipmentID string) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var payload struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{
			Success: false,
			Message: "Invalid request payload: " + err.Error(),
		})
		return
	}

	msg, shipment, err := h.Threads.PostMessage(r.Context(), shipmentID, p.UserID, payload.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	if recipient := repository.Counterparty(shipment, p.UserID); recipient != "" {
		h.Notifier.Notify(r.Context(), recipient, models.EventMessage,
			"New message on your shipment",
			fmt.Sprintf("New message on the shipment from %s to %s:\n\n%s",
				shipment.PickupLocation, shipment.DeliveryLocation, msg.Body),
			fmt.Sprintf("New message on your shipment to %s.", shipment.DeliveryLocation))
	}

	writeJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Message: "Message sent",
		Data:    msg,
	})
}
