// Package payment talks to the external payment gateway. The gateway
// reports a definitive state per payment; transport failures are a
// separate condition (ErrGatewayUnavailable) so pollers can retry instead
// of treating an outage as a failed payment.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/safar/storefront/internal/config"
	"github.com/safar/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// ErrGatewayUnavailable marks a transport or gateway-side failure, not a
// payment outcome.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Gateway state strings.
const (
	StateCreated   = "CREATED"
	StatePending   = "PENDING"
	StateCompleted = "COMPLETED"
	StateFailed    = "FAILED"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New picks the sandbox or production base URL from the environment
// toggle.
func New(cfg *config.PaymentConfig) *Client {
	baseURL := cfg.SandboxURL
	if cfg.Environment == "production" {
		baseURL = cfg.ProductionURL
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type GatewayOrder struct {
	Reference string `json:"reference"`
	State     string `json:"state"`
}

// CreateOrder registers the payment with the gateway and returns its
// reference, used later for status polling.
func (c *Client) CreateOrder(ctx context.Context, orderNumber string, amount decimal.Decimal) (*GatewayOrder, error) {
	payload := map[string]string{
		"merchant_reference": orderNumber,
		"amount":             amount.StringFixed(2),
		"idempotency_key":    uuid.NewString(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build payment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: gateway returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create gateway order: unexpected status %d", resp.StatusCode)
	}

	var order GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}

	return &order, nil
}

// FetchStatus returns the gateway's current state for a payment
// reference.
func (c *Client) FetchStatus(ctx context.Context, reference string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/orders/"+reference, nil)
	if err != nil {
		return "", fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("%w: gateway returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch gateway status: unexpected status %d", resp.StatusCode)
	}

	var order GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return "", fmt.Errorf("decode gateway response: %w", err)
	}

	return order.State, nil
}

// MapStatus translates a gateway state to the order's payment status:
// COMPLETED is paid, PENDING (and CREATED) remain pending, everything
// else is failed.
func MapStatus(gatewayState string) string {
	switch gatewayState {
	case StateCompleted:
		return models.PaymentStatusPaid
	case StatePending, StateCreated:
		return models.PaymentStatusPending
	default:
		return models.PaymentStatusFailed
	}
}
