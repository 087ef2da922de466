package handlers

import (
	"net/http"

	"horseshipt/middleware"
	"horseshipt/models"
)

// requirePrincipal pulls the authenticated caller off the request, writing a
// 401 if the auth middleware did not run.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (*middleware.Principal, bool) {
	p, ok := middleware.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ApiResponse{
			Success: false,
			Message: "authentication required",
		})
		return nil, false
	}
	return p, true
}

// requireRole additionally gates the endpoint to one actor type.
func requireRole(w http.ResponseWriter, r *http.Request, role models.Role) (*middleware.Principal, bool) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return nil, false
	}
	if p.Role != role {
		writeJSON(w, http.StatusForbidden, ApiResponse{
			Success: false,
			Message: "this endpoint is restricted to " + string(role) + " accounts",
		})
		return nil, false
	}
	return p, true
}
