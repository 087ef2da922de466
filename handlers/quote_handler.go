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

type QuoteHandler struct {
	Booking  *repository.BookingRepository
	Notifier *utils.Notifier
	Metrics  *utils.Metrics
	Logger   *zap.Logger
}

// Collection handles /quotes: POST submits an offer, GET lists the carrier's own.
func (h *QuoteHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.submit(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *QuoteHandler) submit(w http.ResponseWriter, r *http.Request) {
	p, ok := requireRole(w, r, models.RoleCarrier)
	if !ok {
		return
	}

	var quote models.Quote
	if err := json.NewDecoder(r.Body).Decode(&quote); err != nil {
		writeJSON(w, http.StatusBadRequest, ApiResponse{
			Success: false,
			Message: "Invalid request payload: " + err.Error(),
		})
		return
	}
	quote.CarrierID = p.UserID

	if err := h.Booking.SubmitQuote(r.Context(), &quote); err != nil {
		if models.IsConflict(err) {
			h.Metrics.Conflicts.WithLabelValues("submit_quote").Inc()
		}
		writeError(w, err)
		return
	}
	h.Metrics.QuotesSubmitted.Inc()

	if shipment, err := h.Booking.Shipments.GetByID(r.Context(), quote.ShipmentID); err == nil && shipment != nil {
		// Confirmation to the submitting carrier, honoring their quote toggles.
		h.Notifier.Notify(r.Context(), quote.CarrierID, models.EventQuote,
			"Quote sent successfully",
			fmt.Sprintf("Your quote of $%.2f for the shipment from %s to %s was sent to the customer.",
				quote.Price, shipment.PickupLocation, shipment.DeliveryLocation),
			fmt.Sprintf("Quote sent: $%.2f for the shipment to %s.", quote.Price, shipment.DeliveryLocation))

		h.Notifier.Notify(r.Context(), shipment.CustomerID, models.EventQuote,
			"New quote on your shipment",
			fmt.Sprintf("A carrier has offered $%.2f for your shipment from %s to %s.",
				quote.Price, shipment.PickupLocation, shipment.DeliveryLocation),
			fmt.Sprintf("New quote: $%.2f on your shipment to %s.", quote.Price, shipment.DeliveryLocation))
	}

	writeJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Message: "Quote submitted",
		Data:    quote,
	})
}

func (h *QuoteHandler) list(w http.ResponseWriter, r *http.Request) {
	p, ok := requireRole(w, r, models.RoleCarrier)
	if !ok {
		return
	}

	quotes, err := h.Booking.Quotes.ListByCarrier(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if quotes == nil {
		quotes = []*models.Quote{}
	}

	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: quotes})
}

// Accept handles POST /quotes/{id}/accept: the customer picks the winner.
func (h *QuoteHandler) Accept(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	p, ok := requireRole(w, r, models.RoleCustomer)
	if !ok {
		return
	}

	quote, err := h.Booking.AcceptQuote(r.Context(), id, p.UserID)
	if err != nil {
		if models.IsConflict(err) {
			h.Metrics.Conflicts.WithLabelValues("accept_quote").Inc()
		}
		writeError(w, err)
		return
	}
	h.Metrics.QuotesAccepted.Inc()

	h.Notifier.Notify(r.Context(), quote.CarrierID, models.EventShipment,
		"Your quote was accepted",
		fmt.Sprintf("Your quote of $%.2f was accepted. The shipment is now assigned to you.", quote.Price),
		fmt.Sprintf("Quote accepted: $%.2f. Shipment assigned to you.", quote.Price))

	writeJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Message: "Quote accepted",
		Data:    quote,
	})
}
