// internal/provider/client_test.go
package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"numshop/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestClient(serverURL string) *Client {
	return NewClient(config.ProviderConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
}

// ==========================
// Core Functionality Tests
// ==========================

func TestClient_PurchaseNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/activations", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var req PurchaseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "US", req.CountryCode)
		assert.Equal(t, "telegram", req.ServiceCode)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Activation{
			ActivationID: "act-123",
			PhoneNumber:  "+12025550123",
			Cost:         1.50,
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	activation, err := client.PurchaseNumber(context.Background(), PurchaseRequest{
		CountryCode: "US",
		ServiceCode: "telegram",
	})
	require.NoError(t, err)
	assert.Equal(t, "act-123", activation.ActivationID)
	assert.Equal(t, "+12025550123", activation.PhoneNumber)
	assert.Equal(t, 1.50, activation.Cost)
}

func TestClient_PurchaseNumber_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"NO_NUMBERS"}`, http.StatusConflict)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.PurchaseNumber(context.Background(), PurchaseRequest{
		CountryCode: "US",
		ServiceCode: "telegram",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
}

func TestClient_PurchaseNumber_MissingActivationID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.PurchaseNumber(context.Background(), PurchaseRequest{
		CountryCode: "US",
		ServiceCode: "telegram",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without an id")
}

func TestClient_CancelNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v1/activations/act-123", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.CancelNumber(context.Background(), "act-123")
	assert.NoError(t, err)
}

func TestClient_CancelNumber_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "already finished", http.StatusConflict)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.CancelNumber(context.Background(), "act-123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
}

func TestClient_GetStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/activations/act-123", r.URL.Path)
		json.NewEncoder(w).Encode(Status{
			ActivationID: "act-123",
			State:        "active",
			Messages: []Message{
				{Sender: "Telegram", Text: "code 12345", ReceivedAt: time.Now().UTC()},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	status, err := client.GetStatus(context.Background(), "act-123")
	require.NoError(t, err)
	assert.Equal(t, "act-123", status.ActivationID)
	require.Len(t, status.Messages, 1)
	assert.Equal(t, "code 12345", status.Messages[0].Text)
}

func TestClient_GetStatus_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := newTestClient(server.URL)

	_, err := client.GetStatus(context.Background(), "act-123")
	assert.Error(t, err)
}
