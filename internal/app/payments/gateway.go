// Package payments confirms orders: synchronously via session verification
// and asynchronously via signed gateway webhooks.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/curbsidehq/curbside/internal/domain/orders"
	"github.com/curbsidehq/curbside/internal/ports"
)

// HTTPGateway talks to the payment processor's REST API.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

var _ ports.PaymentGateway = (*HTTPGateway)(nil)

func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type checkoutRequest struct {
	OrderID       string  `json:"orderId"`
	AmountCents   int64   `json:"amountCents"`
	Currency      string  `json:"currency"`
	CustomerEmail *string `json:"customerEmail,omitempty"`
}

type checkoutResponse struct {
	SessionID   string `json:"sessionId"`
	RedirectURL string `json:"url"`
}

type sessionResponse struct {
	PaymentStatus string `json:"paymentStatus"`
	OrderID       string `json:"orderId"`
}

// CreateCheckoutSession opens a hosted checkout for the order's total.
func (g *HTTPGateway) CreateCheckoutSession(ctx context.Context, o *orders.Order) (ports.CheckoutSession, error) {
	body, err := json.Marshal(checkoutRequest{
		OrderID:       o.ID,
		AmountCents:   int64(o.Total),
		Currency:      "usd",
		CustomerEmail: o.CustomerEmail,
	})
	if err != nil {
		return ports.CheckoutSession{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return ports.CheckoutSession{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return ports.CheckoutSession{}, fmt.Errorf("gateway checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return ports.CheckoutSession{}, fmt.Errorf("gateway checkout returned status %d", resp.StatusCode)
	}

	var out checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ports.CheckoutSession{}, fmt.Errorf("gateway checkout response malformed: %w", err)
	}
	if out.SessionID == "" {
		return ports.CheckoutSession{}, fmt.Errorf("gateway checkout response missing session id")
	}
	return ports.CheckoutSession{SessionID: out.SessionID, RedirectURL: out.RedirectURL}, nil
}

// RetrieveSession fetches the gateway's current view of a checkout session.
func (g *HTTPGateway) RetrieveSession(ctx context.Context, sessionID string) (ports.GatewaySession, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.baseURL+"/v1/checkout/sessions/"+sessionID, nil)
	if err != nil {
		return ports.GatewaySession{}, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return ports.GatewaySession{}, fmt.Errorf("gateway session lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ports.GatewaySession{}, fmt.Errorf("gateway session lookup returned status %d", resp.StatusCode)
	}

	var out sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ports.GatewaySession{}, fmt.Errorf("gateway session response malformed: %w", err)
	}
	return ports.GatewaySession{
		Paid:    out.PaymentStatus == "paid",
		OrderID: out.OrderID,
	}, nil
}
