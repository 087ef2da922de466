package handlers

import (
	"encoding/json"
	"net/http"

	"horseshipt/models"
)

// ApiResponse is the envelope every endpoint returns.
type ApiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp ApiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// statusForError maps a domain error kind onto an HTTP status. Anything that
// is not a DomainError is a server fault.
func statusForError(err error) int {
	switch models.KindOf(err) {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindAuthorization:
		return http.StatusForbidden
	case models.KindConflict:
		return http.StatusConflict
	case models.KindState:
		return http.StatusUnprocessableEntity
	case models.KindDependency:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Do not leak internals to the client.
		msg = "internal server error"
	}
	writeJSON(w, status, ApiResponse{
		Success: false,
		Error:   string(models.KindOf(err)),
		Message: msg,
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, ApiResponse{
		Success: false,
		Message: "Invalid request method",
	})
}
