package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/curbsidehq/curbside/internal/app/lifecycle"
	"github.com/curbsidehq/curbside/internal/domain/orders"
	"github.com/curbsidehq/curbside/internal/ports"
	"github.com/curbsidehq/curbside/internal/shared/logger"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Gateway-Signature"

const eventSessionCompleted = "checkout.session.completed"

// Adapter owns both payment confirmation paths. The two race: the customer
// lands on the success page while the gateway delivers the webhook. The
// engine's idempotent confirmed rule makes the second arrival a no-op.
type Adapter struct {
	engine  *lifecycle.Engine
	store   ports.OrderStore
	gateway ports.PaymentGateway
	secret  []byte
	logger  *logger.Logger
}

func NewAdapter(engine *lifecycle.Engine, store ports.OrderStore, gateway ports.PaymentGateway, secret string, log *logger.Logger) *Adapter {
	return &Adapter{
		engine:  engine,
		store:   store,
		gateway: gateway,
		secret:  []byte(secret),
		logger:  log,
	}
}

// VerifySession is the synchronous path: the success page posts the session
// id back and we ask the gateway whether it was actually paid. An unreachable
// gateway or an unpaid session leaves the order in awaiting_payment so the
// client can retry.
func (a *Adapter) VerifySession(ctx context.Context, sessionID, orderID string) (*orders.Order, error) {
	sess, err := a.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		a.logger.Error(ctx, "payment_verify_failed", "Gateway session lookup failed for order "+orderID, err)
		return nil, fmt.Errorf("%w: %v", orders.ErrPaymentVerification, err)
	}
	if !sess.Paid {
		return nil, fmt.Errorf("%w: session %s not paid", orders.ErrPaymentVerification, sessionID)
	}

	// the gateway's order reference wins when the client omits or lies
	// about the order id
	if sess.OrderID != "" {
		orderID = sess.OrderID
	}
	if orderID == "" {
		o, err := a.store.FetchOrderBySession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		orderID = o.ID
	}

	return a.engine.Apply(ctx, orderID, orders.StatusConfirmed, nil, "gateway")
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		SessionID string `json:"sessionId"`
	} `json:"data"`
}

// HandleWebhook verifies the signature over the raw body and, for a
// completed checkout session, confirms the matching order. Unrecognized
// event types are acknowledged without effect so the gateway stops
// redelivering them.
func (a *Adapter) HandleWebhook(ctx context.Context, sigHeader string, rawBody []byte) (*orders.Order, error) {
	if !a.validSignature(sigHeader, rawBody) {
		a.logger.Warn(ctx, "webhook_rejected", "Webhook signature verification failed", map[string]any{
			"body_bytes": len(rawBody),
		})
		return nil, orders.ErrSignatureInvalid
	}

	var ev webhookEvent
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		return nil, orders.NewValidationError("body", "malformed webhook payload")
	}

	if ev.Type != eventSessionCompleted {
		a.logger.Debug(ctx, "webhook_ignored", "Ignoring webhook event "+ev.Type, nil)
		return nil, nil
	}
	if ev.Data.SessionID == "" {
		return nil, orders.NewValidationError("data.sessionId", "session id is required")
	}

	o, err := a.store.FetchOrderBySession(ctx, ev.Data.SessionID)
	if err != nil {
		return nil, err
	}

	return a.engine.Apply(ctx, o.ID, orders.StatusConfirmed, nil, "webhook")
}

func (a *Adapter) validSignature(sigHeader string, rawBody []byte) bool {
	if sigHeader == "" {
		return false
	}
	got, err := hex.DecodeString(sigHeader)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, a.secret)
	mac.Write(rawBody)
	return hmac.Equal(got, mac.Sum(nil))
}

// Sign computes the hex signature for a raw body. Used by tests and local
// tooling to produce valid webhook deliveries.
func Sign(secret string, rawBody []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}
