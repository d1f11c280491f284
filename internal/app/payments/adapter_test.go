package payments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curbsidehq/curbside/internal/app/lifecycle"
	"github.com/curbsidehq/curbside/internal/domain/orders"
	"github.com/curbsidehq/curbside/internal/ports"
	"github.com/curbsidehq/curbside/internal/shared/logger"
)

const testSecret = "whsec_test"

// memStore is a minimal in-memory ports.OrderStore for the adapter tests.
type memStore struct {
	mu      sync.Mutex
	orders  map[string]*orders.Order
	history []orders.StatusHistoryEntry
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[string]*orders.Order)}
}

func (s *memStore) InsertOrder(_ context.Context, o *orders.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.orders[o.ID] = &cp
	s.history = append(s.history, orders.StatusHistoryEntry{OrderID: o.ID, Status: o.Status, ChangedAt: time.Now().UTC()})
	return nil
}

func (s *memStore) FetchOrderByID(_ context.Context, id string) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *memStore) FetchOrderBySession(_ context.Context, sessionID string) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.GatewaySessionID != nil && *o.GatewaySessionID == sessionID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, orders.ErrNotFound
}

func (s *memStore) ListOrders(context.Context) ([]orders.Order, error)          { return nil, nil }
func (s *memStore) ListRecentOrders(context.Context, int) ([]orders.Order, error) { return nil, nil }
func (s *memStore) ListOrdersByUser(context.Context, string) ([]orders.Order, error) {
	return nil, nil
}
func (s *memStore) ListCooking(context.Context) ([]orders.Order, error) { return nil, nil }

func (s *memStore) UpdateStatus(_ context.Context, id string, status orders.OrderStatus, remaining *int, payment *orders.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return orders.ErrNotFound
	}
	o.Status = status
	if remaining != nil {
		o.RemainingMinutes = *remaining
	}
	if payment != nil {
		o.PaymentStatus = *payment
	}
	s.history = append(s.history, orders.StatusHistoryEntry{OrderID: id, Status: status, ChangedAt: time.Now().UTC()})
	return nil
}

func (s *memStore) UpdateCountdown(_ context.Context, id string, remaining int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return orders.ErrNotFound
	}
	o.RemainingMinutes = remaining
	return nil
}

func (s *memStore) SetGatewaySession(_ context.Context, id, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return orders.ErrNotFound
	}
	o.GatewaySessionID = &sessionID
	return nil
}

func (s *memStore) ListHistory(_ context.Context, id string) ([]orders.StatusHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []orders.StatusHistoryEntry
	for _, e := range s.history {
		if e.OrderID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) CountByStatus(context.Context) (map[orders.OrderStatus]int, error) {
	return nil, nil
}

var _ ports.OrderStore = (*memStore)(nil)

type noopNotifier struct{}

func (noopNotifier) OrderCreated(*orders.Order) {}
func (noopNotifier) OrderUpdated(*orders.Order) {}

// stubGateway returns canned session lookups.
type stubGateway struct {
	session ports.GatewaySession
	err     error
}

func (g *stubGateway) CreateCheckoutSession(context.Context, *orders.Order) (ports.CheckoutSession, error) {
	return ports.CheckoutSession{SessionID: "cs_test", RedirectURL: "https://pay.example/cs_test"}, nil
}

func (g *stubGateway) RetrieveSession(context.Context, string) (ports.GatewaySession, error) {
	return g.session, g.err
}

func seedOrder(t *testing.T, store *memStore, sessionID string) *orders.Order {
	t.Helper()
	o := &orders.Order{
		ID:            orders.NewOrderID(),
		CustomerName:  "Dana",
		CustomerPhone: "+15550001111",
		Items:         []orders.OrderItem{{Name: "Taco", Price: 350, Quantity: 1}},
		Subtotal:      350,
		Total:         350,
		Status:        orders.StatusAwaitingPayment,
		PaymentStatus: orders.PaymentPending,
		LocationID:    "downtown",
	}
	require.NoError(t, store.InsertOrder(context.Background(), o))
	if sessionID != "" {
		require.NoError(t, store.SetGatewaySession(context.Background(), o.ID, sessionID))
	}
	return o
}

func testAdapter(gw ports.PaymentGateway) (*Adapter, *memStore) {
	store := newMemStore()
	engine := lifecycle.NewEngine(store, noopNotifier{}, logger.New("test"))
	return NewAdapter(engine, store, gw, testSecret, logger.New("test")), store
}

func TestVerifySessionConfirms(t *testing.T) {
	gw := &stubGateway{}
	adapter, store := testAdapter(gw)
	o := seedOrder(t, store, "cs_123")
	gw.session = ports.GatewaySession{Paid: true, OrderID: o.ID}

	got, err := adapter.VerifySession(context.Background(), "cs_123", o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusConfirmed, got.Status)
	assert.Equal(t, orders.PaymentCompleted, got.PaymentStatus)
}

func TestVerifySessionUnpaid(t *testing.T) {
	gw := &stubGateway{session: ports.GatewaySession{Paid: false}}
	adapter, store := testAdapter(gw)
	o := seedOrder(t, store, "cs_123")

	_, err := adapter.VerifySession(context.Background(), "cs_123", o.ID)
	assert.ErrorIs(t, err, orders.ErrPaymentVerification)

	got, err := store.FetchOrderByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusAwaitingPayment, got.Status)
}

func TestVerifySessionGatewayUnreachable(t *testing.T) {
	gw := &stubGateway{err: assert.AnError}
	adapter, store := testAdapter(gw)
	o := seedOrder(t, store, "cs_123")

	_, err := adapter.VerifySession(context.Background(), "cs_123", o.ID)
	assert.ErrorIs(t, err, orders.ErrPaymentVerification)

	got, err := store.FetchOrderByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusAwaitingPayment, got.Status)
}

func TestVerifySessionResolvesOrderFromStore(t *testing.T) {
	gw := &stubGateway{session: ports.GatewaySession{Paid: true}}
	adapter, store := testAdapter(gw)
	o := seedOrder(t, store, "cs_123")

	got, err := adapter.VerifySession(context.Background(), "cs_123", "")
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, orders.StatusConfirmed, got.Status)
}

func completedEvent(sessionID string) []byte {
	return []byte(`{"type":"checkout.session.completed","data":{"sessionId":"` + sessionID + `"}}`)
}

func TestWebhookConfirmsOrder(t *testing.T) {
	adapter, store := testAdapter(&stubGateway{})
	o := seedOrder(t, store, "cs_123")

	body := completedEvent("cs_123")
	got, err := adapter.HandleWebhook(context.Background(), Sign(testSecret, body), body)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, orders.StatusConfirmed, got.Status)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	adapter, store := testAdapter(&stubGateway{})
	o := seedOrder(t, store, "cs_123")

	body := completedEvent("cs_123")
	cases := map[string]string{
		"missing":      "",
		"not hex":      "zzzz",
		"wrong secret": Sign("other_secret", body),
		"other body":   Sign(testSecret, []byte(`{}`)),
	}
	for name, sig := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := adapter.HandleWebhook(context.Background(), sig, body)
			assert.ErrorIs(t, err, orders.ErrSignatureInvalid)
		})
	}

	got, err := store.FetchOrderByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusAwaitingPayment, got.Status)
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	adapter, store := testAdapter(&stubGateway{})
	o := seedOrder(t, store, "cs_123")

	body := []byte(`{"type":"checkout.session.expired","data":{"sessionId":"cs_123"}}`)
	got, err := adapter.HandleWebhook(context.Background(), Sign(testSecret, body), body)
	require.NoError(t, err)
	assert.Nil(t, got)

	current, err := store.FetchOrderByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusAwaitingPayment, current.Status)
}

func TestWebhookMalformedBody(t *testing.T) {
	adapter, _ := testAdapter(&stubGateway{})

	body := []byte(`{"type":`)
	_, err := adapter.HandleWebhook(context.Background(), Sign(testSecret, body), body)
	var verr *orders.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestWebhookUnknownSession(t *testing.T) {
	adapter, _ := testAdapter(&stubGateway{})

	body := completedEvent("cs_missing")
	_, err := adapter.HandleWebhook(context.Background(), Sign(testSecret, body), body)
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestWebhookAndVerifyAreIdempotent(t *testing.T) {
	gw := &stubGateway{session: ports.GatewaySession{Paid: true}}
	adapter, store := testAdapter(gw)
	o := seedOrder(t, store, "cs_123")

	body := completedEvent("cs_123")
	_, err := adapter.HandleWebhook(context.Background(), Sign(testSecret, body), body)
	require.NoError(t, err)
	_, err = adapter.VerifySession(context.Background(), "cs_123", o.ID)
	require.NoError(t, err)

	entries, err := store.ListHistory(context.Background(), o.ID)
	require.NoError(t, err)

	var confirmed int
	for _, e := range entries {
		if e.Status == orders.StatusConfirmed {
			confirmed++
		}
	}
	assert.Equal(t, 1, confirmed)
}
