package handlers

import (
	"encoding/json"
	"net/http"

	"horseshipt/models"
	"horseshipt/repository"
)

type SettingsHandler struct {
	Repo repository.SettingsRepository
}

// Settings handles /settings: GET returns the carrier's notification
// preferences (defaults if none stored yet), PUT replaces them.
func (h *SettingsHandler) Settings(w http.ResponseWriter, r *http.Request) {
	p, ok := requireRole(w, r, models.RoleCarrier)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		settings, err := h.Repo.GetByCarrier(r.Context(), p.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		if settings == nil {
			settings = models.DefaultCarrierSettings(p.UserID)
		}
		writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: settings})

	case http.MethodPut:
		var payload struct {
			Notifications models.NotificationPrefs `json:"notifications"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, ApiResponse{
				Success: false,
				Message: "Invalid request payload: " + err.Error(),
			})
			return
		}

		settings := &models.CarrierSettings{
			CarrierID:     p.UserID,
			Notifications: payload.Notifications,
		}
		if err := h.Repo.Save(r.Context(), settings); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ApiResponse{
			Success: true,
			Message: "Settings saved",
			Data:    settings,
		})

	default:
		methodNotAllowed(w)
	}
}
