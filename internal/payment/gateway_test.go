package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/safar/storefront/internal/config"
	"github.com/safar/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return New(&config.PaymentConfig{
		Environment: "sandbox",
		SandboxURL:  baseURL,
		APIKey:      "test-key",
		Timeout:     2 * time.Second,
	})
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		state string
		want  string
	}{
		{StateCompleted, models.PaymentStatusPaid},
		{StatePending, models.PaymentStatusPending},
		{StateCreated, models.PaymentStatusPending},
		{StateFailed, models.PaymentStatusFailed},
		{"DECLINED", models.PaymentStatusFailed},
		{"", models.PaymentStatusFailed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapStatus(tt.state), "state %q", tt.state)
	}
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"reference":"gw-123","state":"CREATED"}`))
	}))
	defer server.Close()

	order, err := testClient(server.URL).CreateOrder(context.Background(), "ORD-1", decimal.NewFromInt(349))
	require.NoError(t, err)
	assert.Equal(t, "gw-123", order.Reference)
	assert.Equal(t, StateCreated, order.State)
}

func TestFetchStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders/gw-123", r.URL.Path)
		w.Write([]byte(`{"reference":"gw-123","state":"COMPLETED"}`))
	}))
	defer server.Close()

	state, err := testClient(server.URL).FetchStatus(context.Background(), "gw-123")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, state)
}

func TestServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FetchStatus(context.Background(), "gw-123")
	assert.True(t, errors.Is(err, ErrGatewayUnavailable))
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	_, err := testClient(server.URL).FetchStatus(context.Background(), "gw-123")
	assert.True(t, errors.Is(err, ErrGatewayUnavailable))
}

func TestProductionToggle(t *testing.T) {
	client := New(&config.PaymentConfig{
		Environment:   "production",
		SandboxURL:    "https://sandbox.example.com",
		ProductionURL: "https://live.example.com",
		Timeout:       time.Second,
	})

	assert.Equal(t, "https://live.example.com", client.baseURL)
}
