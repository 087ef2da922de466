package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"horseshipt/models"
	"horseshipt/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *apiFixture) messageHandler() *MessageHandler {
	threads := repository.NewThreadRepository(f.booking, f.store.Messages())
	return &MessageHandler{Threads: threads, Notifier: f.quotes.Notifier, Logger: f.quotes.Logger}
}

func TestMessageEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	recorder := f.withSMS()
	messages := f.messageHandler()

	customer := f.addUser(t, "alice", models.RoleCustomer)
	carrier := &models.AppUser{
		Name: "bob", Email: "bob@example.com", Phone: "+15557770003",
		Role: models.RoleCarrier, Password: "hunter22",
	}
	require.NoError(t, f.store.Users().CreateUser(context.Background(), carrier))
	stranger := f.addUser(t, "mallory", models.RoleCarrier)

	rec := httptest.NewRecorder()
	f.shipments.Collection(rec, authedRequest(http.MethodPost, "/shipments", shipmentPayload(), customer))
	require.Equal(t, http.StatusCreated, rec.Code)
	shipmentID := decodeResponse(t, rec).Data.(map[string]interface{})["id"].(string)

	rec = httptest.NewRecorder()
	f.assignments.Claim(rec, authedRequest(http.MethodPost, "/marketplace/"+shipmentID+"/claim", nil, carrier), shipmentID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	recorder.sent = nil

	messagesURL := "/shipments/" + shipmentID + "/messages"

	t.Run("customer posts and the carrier is texted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		messages.Messages(rec, authedRequest(http.MethodPost, messagesURL,
			map[string]string{"body": "when do you arrive?"}, customer), shipmentID)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		require.Len(t, recorder.sent, 1)
		assert.Equal(t, carrier.Phone, recorder.sent[0].Get("To"))
	})

	t.Run("carrier replies", func(t *testing.T) {
		rec := httptest.NewRecorder()
		messages.Messages(rec, authedRequest(http.MethodPost, messagesURL,
			map[string]string{"body": "tomorrow morning"}, carrier), shipmentID)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("either side reads the thread in order", func(t *testing.T) {
		rec := httptest.NewRecorder()
		messages.Messages(rec, authedRequest(http.MethodGet, messagesURL, nil, carrier), shipmentID)
		require.Equal(t, http.StatusOK, rec.Code)

		list := decodeResponse(t, rec).Data.([]interface{})
		require.Len(t, list, 2)
		first := list[0].(map[string]interface{})
		assert.Equal(t, "when do you arrive?", first["body"])
		assert.Equal(t, "alice", first["sender"].(map[string]interface{})["name"])
	})

	t.Run("stranger is shut out", func(t *testing.T) {
		rec := httptest.NewRecorder()
		messages.Messages(rec, authedRequest(http.MethodGet, messagesURL, nil, stranger), shipmentID)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("blank body is a bad request", func(t *testing.T) {
		rec := httptest.NewRecorder()
		messages.Messages(rec, authedRequest(http.MethodPost, messagesURL,
			map[string]string{"body": "   "}, customer), shipmentID)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
