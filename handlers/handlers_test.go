package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"horseshipt/config"
	"horseshipt/middleware"
	"horseshipt/models"
	"horseshipt/repository"
	"horseshipt/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiFixture struct {
	store   *repository.MemoryStore
	booking *repository.BookingRepository

	users       *UserHandler
	shipments   *ShipmentHandler
	quotes      *QuoteHandler
	assignments *AssignmentHandler
	settings    *SettingsHandler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	booking := repository.NewBookingRepository(store.Shipments(), store.Quotes(), store.Assignments())

	logger := zap.NewNop()
	metrics := utils.NewMetrics(prometheus.NewRegistry())
	notifier := utils.NewNotifier(store.Users(), store.Settings(), logger, &config.Config{})

	return &apiFixture{
		store:       store,
		booking:     booking,
		users:       &UserHandler{Repo: store.Users(), JWTSecret: "test-secret", Logger: logger},
		shipments:   &ShipmentHandler{Booking: booking, Notifier: notifier, Metrics: metrics, Logger: logger},
		quotes:      &QuoteHandler{Booking: booking, Notifier: notifier, Metrics: metrics, Logger: logger},
		assignments: &AssignmentHandler{Booking: booking, Notifier: notifier, Metrics: metrics, Logger: logger},
		settings:    &SettingsHandler{Repo: store.Settings()},
	}
}

func (f *apiFixture) addUser(t *testing.T, name string, role models.Role) *models.AppUser {
	t.Helper()
	user := &models.AppUser{Name: name, Email: name + "@example.com", Role: role, Password: "hunter22"}
	require.NoError(t, f.store.Users().CreateUser(context.Background(), user))
	return user
}

// authedRequest builds a request with the principal already resolved, the way
// the auth middleware leaves it.
func authedRequest(method, target string, body interface{}, user *models.AppUser) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if user != nil {
		req = req.WithContext(middleware.WithPrincipal(req.Context(),
			&middleware.Principal{UserID: user.ID, Role: user.Role}))
	}
	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) ApiResponse {
	t.Helper()
	var resp ApiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSignupAndLogin(t *testing.T) {
	f := newAPIFixture(t)

	signup := map[string]string{
		"name": "Alice", "email": "alice@example.com",
		"password": "hunter22", "role": "customer",
	}
	rec := httptest.NewRecorder()
	f.users.Signup(rec, authedRequest(http.MethodPost, "/signup", signup, nil))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	t.Run("duplicate email conflicts", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.users.Signup(rec, authedRequest(http.MethodPost, "/signup", signup, nil))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("login returns a token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.users.Login(rec, authedRequest(http.MethodPost, "/login",
			map[string]string{"email": "alice@example.com", "password": "hunter22"}, nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decodeResponse(t, rec)
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		token, _ := data["token"].(string)
		require.NotEmpty(t, token)

		p, err := middleware.ParseToken(token, "test-secret")
		require.NoError(t, err)
		assert.Equal(t, models.RoleCustomer, p.Role)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.users.Login(rec, authedRequest(http.MethodPost, "/login",
			map[string]string{"email": "alice@example.com", "password": "wrong"}, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func shipmentPayload() map[string]interface{} {
	return map[string]interface{}{
		"pickup_location":      "Lexington, KY",
		"pickup_time_option":   "morning",
		"pickup_date":          "2026-09-15",
		"delivery_location":    "Ocala, FL",
		"delivery_time_option": "afternoon",
		"delivery_date":        "2026-09-20",
		"number_of_horses":     1,
		"horses":               []map[string]string{{"registered_name": "Midnight Run"}},
	}
}

func TestShipmentEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	customer := f.addUser(t, "alice", models.RoleCustomer)
	carrier := f.addUser(t, "bob", models.RoleCarrier)

	var shipmentID string

	t.Run("carriers cannot post shipments", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.shipments.Collection(rec, authedRequest(http.MethodPost, "/shipments", shipmentPayload(), carrier))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("customer posts a shipment", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.shipments.Collection(rec, authedRequest(http.MethodPost, "/shipments", shipmentPayload(), customer))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		resp := decodeResponse(t, rec)
		data := resp.Data.(map[string]interface{})
		shipmentID = data["id"].(string)
		assert.Equal(t, "pending", data["status"])
	})

	t.Run("owner lists it", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.shipments.Collection(rec, authedRequest(http.MethodGet, "/shipments", nil, customer))
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeResponse(t, rec)
		list := resp.Data.([]interface{})
		assert.Len(t, list, 1)
	})

	t.Run("stranger cannot read it", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.shipments.ByID(rec, authedRequest(http.MethodGet, "/shipments/"+shipmentID, nil, carrier), shipmentID)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner edits while pending", func(t *testing.T) {
		payload := shipmentPayload()
		payload["delivery_location"] = "Wellington, FL"
		rec := httptest.NewRecorder()
		f.shipments.ByID(rec, authedRequest(http.MethodPut, "/shipments/"+shipmentID, payload, customer), shipmentID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("editing stops once committed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.assignments.Claim(rec, authedRequest(http.MethodPost, "/marketplace/"+shipmentID+"/claim", nil, carrier), shipmentID)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = httptest.NewRecorder()
		f.shipments.ByID(rec, authedRequest(http.MethodPut, "/shipments/"+shipmentID, shipmentPayload(), customer), shipmentID)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("assigned carrier can now read it", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.shipments.ByID(rec, authedRequest(http.MethodGet, "/shipments/"+shipmentID, nil, carrier), shipmentID)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestQuoteFlow(t *testing.T) {
	f := newAPIFixture(t)
	customer := f.addUser(t, "alice", models.RoleCustomer)
	carrierA := f.addUser(t, "bob", models.RoleCarrier)
	carrierB := f.addUser(t, "carol", models.RoleCarrier)

	rec := httptest.NewRecorder()
	f.shipments.Collection(rec, authedRequest(http.MethodPost, "/shipments", shipmentPayload(), customer))
	require.Equal(t, http.StatusCreated, rec.Code)
	shipmentID := decodeResponse(t, rec).Data.(map[string]interface{})["id"].(string)

	submit := func(carrier *models.AppUser, price float64) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		f.quotes.Collection(rec, authedRequest(http.MethodPost, "/quotes",
			map[string]interface{}{"shipment_id": shipmentID, "price": price}, carrier))
		return rec
	}

	rec = submit(carrierA, 900)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	quoteAID := decodeResponse(t, rec).Data.(map[string]interface{})["id"].(string)

	rec = submit(carrierB, 950)
	require.Equal(t, http.StatusCreated, rec.Code)
	quoteBID := decodeResponse(t, rec).Data.(map[string]interface{})["id"].(string)

	t.Run("duplicate quote is a conflict", func(t *testing.T) {
		rec := submit(carrierA, 880)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("owner reviews the offers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.shipments.Quotes(rec, authedRequest(http.MethodGet, "/shipments/"+shipmentID+"/quotes", nil, customer), shipmentID)
		require.Equal(t, http.StatusOK, rec.Code)
		list := decodeResponse(t, rec).Data.([]interface{})
		assert.Len(t, list, 2)
	})

	t.Run("carrier cannot accept", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.quotes.Accept(rec, authedRequest(http.MethodPost, "/quotes/"+quoteAID+"/accept", nil, carrierA), quoteAID)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner accepts one quote", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.quotes.Accept(rec, authedRequest(http.MethodPost, "/quotes/"+quoteAID+"/accept", nil, customer), quoteAID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("the loser cannot be accepted afterwards", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.quotes.Accept(rec, authedRequest(http.MethodPost, "/quotes/"+quoteBID+"/accept", nil, customer), quoteBID)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestAssignmentEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	customer := f.addUser(t, "alice", models.RoleCustomer)
	carrier := f.addUser(t, "bob", models.RoleCarrier)

	rec := httptest.NewRecorder()
	f.shipments.Collection(rec, authedRequest(http.MethodPost, "/shipments", shipmentPayload(), customer))
	require.Equal(t, http.StatusCreated, rec.Code)
	shipmentID := decodeResponse(t, rec).Data.(map[string]interface{})["id"].(string)

	t.Run("the board lists the open shipment", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.assignments.Marketplace(rec, authedRequest(http.MethodGet, "/marketplace?date=2026-09-01", nil, carrier))
		require.Equal(t, http.StatusOK, rec.Code)
		list := decodeResponse(t, rec).Data.([]interface{})
		assert.Len(t, list, 1)
	})

	rec = httptest.NewRecorder()
	f.assignments.Claim(rec, authedRequest(http.MethodPost, "/marketplace/"+shipmentID+"/claim", nil, carrier), shipmentID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assignmentID := decodeResponse(t, rec).Data.(map[string]interface{})["id"].(string)

	t.Run("carrier lists their jobs", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.assignments.List(rec, authedRequest(http.MethodGet, "/assignments", nil, carrier))
		require.Equal(t, http.StatusOK, rec.Code)
		list := decodeResponse(t, rec).Data.([]interface{})
		assert.Len(t, list, 1)
	})

	t.Run("invalid transition is unprocessable", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.assignments.UpdateStatus(rec, authedRequest(http.MethodPut,
			fmt.Sprintf("/assignments/%s/status", assignmentID),
			map[string]string{"status": "completed"}, carrier), assignmentID)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("status moves forward and propagates", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.assignments.UpdateStatus(rec, authedRequest(http.MethodPut,
			fmt.Sprintf("/assignments/%s/status", assignmentID),
			map[string]string{"status": "in_transit"}, carrier), assignmentID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		shipment, err := f.store.Shipments().GetByID(context.Background(), shipmentID)
		require.NoError(t, err)
		assert.Equal(t, models.ShipmentInTransit, shipment.Status)
	})

	t.Run("location report mirrors onto the shipment", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.assignments.UpdateLocation(rec, authedRequest(http.MethodPost,
			fmt.Sprintf("/assignments/%s/location", assignmentID),
			map[string]float64{"latitude": 34.2, "longitude": -83.9}, carrier), assignmentID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = httptest.NewRecorder()
		f.shipments.Location(rec, authedRequest(http.MethodGet, "/shipments/"+shipmentID+"/location", nil, customer), shipmentID)
		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeResponse(t, rec).Data.(map[string]interface{})
		require.NotNil(t, data["current_location"])
	})
}

func TestSettingsEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	carrier := f.addUser(t, "bob", models.RoleCarrier)

	t.Run("defaults are returned before anything is stored", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.settings.Settings(rec, authedRequest(http.MethodGet, "/settings", nil, carrier))
		require.Equal(t, http.StatusOK, rec.Code)

		data := decodeResponse(t, rec).Data.(map[string]interface{})
		prefs := data["notifications"].(map[string]interface{})
		quote := prefs["quote"].(map[string]interface{})
		assert.Equal(t, true, quote["email"])
		assert.Equal(t, true, quote["sms"])
	})

	t.Run("saved preferences round-trip", func(t *testing.T) {
		payload := map[string]interface{}{
			"notifications": map[string]interface{}{
				"quote":    map[string]bool{"email": true, "sms": false},
				"shipment": map[string]bool{"email": true, "sms": true},
				"message":  map[string]bool{"email": false, "sms": false},
			},
		}
		rec := httptest.NewRecorder()
		f.settings.Settings(rec, authedRequest(http.MethodPut, "/settings", payload, carrier))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = httptest.NewRecorder()
		f.settings.Settings(rec, authedRequest(http.MethodGet, "/settings", nil, carrier))
		require.Equal(t, http.StatusOK, rec.Code)

		data := decodeResponse(t, rec).Data.(map[string]interface{})
		prefs := data["notifications"].(map[string]interface{})
		quote := prefs["quote"].(map[string]interface{})
		assert.Equal(t, false, quote["sms"])
	})
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusForError(models.NewValidationError("x")))
	assert.Equal(t, http.StatusNotFound, statusForError(models.NewNotFoundError("x")))
	assert.Equal(t, http.StatusForbidden, statusForError(models.NewAuthorizationError("x")))
	assert.Equal(t, http.StatusConflict, statusForError(models.NewConflictError("x")))
	assert.Equal(t, http.StatusUnprocessableEntity, statusForError(models.NewStateError("x")))
	assert.Equal(t, http.StatusBadGateway, statusForError(models.NewDependencyError(nil, "x")))
	assert.Equal(t, http.StatusInternalServerError, statusForError(assert.AnError))
}
