// Package paygateway talks to the hosted payment provider. It creates
// provider-side orders and checks the signatures the provider hands to the
// browser after a payment. The key secret never leaves this package.
package paygateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// ErrGatewayUnavailable wraps transport and 5xx failures of the provider.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Config holds the payment provider credentials.
type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// OrderRequest is the body of a provider order creation call.
type OrderRequest struct {
	Amount   int64             `json:"amount"` // Minor currency units
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is the provider's view of a payment session.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// APIError is an error response returned by the provider.
type APIError struct {
	StatusCode  int
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payment gateway returned status %d: %s %s", e.StatusCode, e.Code, e.Description)
}

// Client is an HTTP client for a Razorpay-style orders API.
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	signer     Signer
	httpClient *http.Client
}

// NewClient creates a provider client. Key id and secret are required.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.KeyID) == "" || strings.TrimSpace(cfg.KeySecret) == "" {
		return nil, fmt.Errorf("payment gateway key id and secret are required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		signer:     NewSigner(cfg.KeySecret),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// KeyID returns the public key identifier the browser checkout needs.
func (c *Client) KeyID() string { return c.keyID }

func (c *Client) Sign(gatewayOrderID, paymentID string) string {
	return c.signer.Sign(gatewayOrderID, paymentID)
}

func (c *Client) Verify(gatewayOrderID, paymentID, signature string) bool {
	return c.signer.Verify(gatewayOrderID, paymentID, signature)
}

// CreateOrder opens a payment session with the provider.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", req.Amount)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	url := c.baseURL + "/v1/orders"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("Payment gateway request failed for receipt %s: %v", req.Receipt, err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrGatewayUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error *APIError `json:"error"`
		}
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Description = envelope.Error.Description
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, apiErr)
		}
		return nil, apiErr
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("failed to decode gateway order: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("gateway response is missing the order id")
	}

	log.Printf("Gateway order %s created for receipt %s", order.ID, req.Receipt)
	return &order, nil
}
