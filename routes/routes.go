package routes

import (
	"net/http"
	"strings"
	"time"

	"horseshipt/handlers"
	"horseshipt/middleware"
	"horseshipt/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// CORS middleware
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*") // Replace * with your domain in production
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight request
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Router bundles everything SetupRoutes needs to build the global mux.
type Router struct {
	Logger    *zap.Logger
	Metrics   *utils.Metrics
	JWTSecret string

	Users       *handlers.UserHandler
	Shipments   *handlers.ShipmentHandler
	Quotes      *handlers.QuoteHandler
	Assignments *handlers.AssignmentHandler
	Settings    *handlers.SettingsHandler
	Waybills    *handlers.WaybillHandler
	Messages    *handlers.MessageHandler
}

// public wraps an unauthenticated endpoint with CORS, panic recovery, and
// request timing.
func (rt *Router) public(route string, handler http.HandlerFunc) http.Handler {
	return withCORS(http.HandlerFunc(handlers.RecoverWrapper(rt.Logger, rt.timed(route, handler))))
}

// protected additionally requires a valid bearer token.
func (rt *Router) protected(route string, handler http.HandlerFunc) http.Handler {
	return rt.public(route, middleware.Auth(rt.JWTSecret, handler))
}

func (rt *Router) timed(route string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		handler(w, r)
		rt.Metrics.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	}
}

func (rt *Router) SetupRoutes() {
	// User routes
	http.Handle("/signup", rt.public("/signup", rt.Users.Signup))
	http.Handle("/login", rt.public("/login", rt.Users.Login))

	// Shipment routes
	http.Handle("/shipments", rt.protected("/shipments", rt.Shipments.Collection))
	http.Handle("/shipments/", rt.protected("/shipments/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, rest := splitPath(r.URL.Path, "/shipments/")
		if id == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch rest {
		case "":
			rt.Shipments.ByID(w, r, id)
		case "location":
			rt.Shipments.Location(w, r, id)
		case "quotes":
			rt.Shipments.Quotes(w, r, id)
		case "waybill":
			rt.Waybills.Waybill(w, r, id)
		case "messages":
			rt.Messages.Messages(w, r, id)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	// Marketplace routes
	http.Handle("/marketplace", rt.protected("/marketplace", rt.Assignments.Marketplace))
	http.Handle("/marketplace/", rt.protected("/marketplace/{id}/claim", func(w http.ResponseWriter, r *http.Request) {
		id, rest := splitPath(r.URL.Path, "/marketplace/")
		if id == "" || rest != "claim" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		rt.Assignments.Claim(w, r, id)
	}))

	// Assignment routes
	http.Handle("/assignments", rt.protected("/assignments", rt.Assignments.List))
	http.Handle("/assignments/", rt.protected("/assignments/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, rest := splitPath(r.URL.Path, "/assignments/")
		if id == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch rest {
		case "":
			rt.Assignments.Get(w, r, id)
		case "status":
			rt.Assignments.UpdateStatus(w, r, id)
		case "location":
			rt.Assignments.UpdateLocation(w, r, id)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	// Quote routes
	http.Handle("/quotes", rt.protected("/quotes", rt.Quotes.Collection))
	http.Handle("/quotes/", rt.protected("/quotes/{id}/accept", func(w http.ResponseWriter, r *http.Request) {
		id, rest := splitPath(r.URL.Path, "/quotes/")
		if id == "" || rest != "accept" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		rt.Quotes.Accept(w, r, id)
	}))

	// Settings routes
	http.Handle("/settings", rt.protected("/settings", rt.Settings.Settings))

	// Operational endpoints
	http.Handle("/metrics", promhttp.Handler())
	http.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
}

// splitPath peels "{id}" and an optional single subresource off a prefix:
// "/shipments/abc/quotes" -> ("abc", "quotes").
func splitPath(path, prefix string) (id, rest string) {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if trimmed == "" {
		return "", ""
	}
	parts := strings.SplitN(trimmed, "/", 2)
	id = parts[0]
	if len(parts) == 2 {
		rest = parts[1]
	}
	return id, rest
}
