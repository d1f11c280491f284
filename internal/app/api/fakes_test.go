package api

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/curbsidehq/curbside/internal/domain/catalog"
	"github.com/curbsidehq/curbside/internal/domain/orders"
	"github.com/curbsidehq/curbside/internal/ports"
)

// fakeOrderStore is the in-memory order store backing the handler tests.
type fakeOrderStore struct {
	mu      sync.Mutex
	seq     int
	orders  map[string]*orders.Order
	history []orders.StatusHistoryEntry
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[string]*orders.Order)}
}

func (s *fakeOrderStore) InsertOrder(_ context.Context, o *orders.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	now := time.Now().UTC().Add(time.Duration(s.seq) * time.Millisecond)
	o.CreatedAt = now
	o.UpdatedAt = now
	cp := *o
	s.orders[o.ID] = &cp
	s.history = append(s.history, orders.StatusHistoryEntry{OrderID: o.ID, Status: o.Status, ChangedAt: now})
	return nil
}

func (s *fakeOrderStore) FetchOrderByID(_ context.Context, id string) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) FetchOrderBySession(_ context.Context, sessionID string) (*orders.Order, error) {
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

func (s *fakeOrderStore) ListOrders(context.Context) ([]orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]orders.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeOrderStore) ListRecentOrders(ctx context.Context, n int) ([]orders.Order, error) {
	list, err := s.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) > n {
		list = list[:n]
	}
	return list, nil
}

func (s *fakeOrderStore) ListOrdersByUser(_ context.Context, userID string) ([]orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []orders.Order
	for _, o := range s.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) ListCooking(context.Context) ([]orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []orders.Order
	for _, o := range s.orders {
		if o.Status == orders.StatusCooking && o.RemainingMinutes > 0 {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) UpdateStatus(_ context.Context, id string, status orders.OrderStatus, remaining *int, payment *orders.PaymentStatus) error {
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
	o.UpdatedAt = time.Now().UTC()
	s.history = append(s.history, orders.StatusHistoryEntry{OrderID: id, Status: status, ChangedAt: o.UpdatedAt})
	return nil
}

func (s *fakeOrderStore) UpdateCountdown(_ context.Context, id string, remaining int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return orders.ErrNotFound
	}
	o.RemainingMinutes = remaining
	return nil
}

func (s *fakeOrderStore) SetGatewaySession(_ context.Context, id, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return orders.ErrNotFound
	}
	o.GatewaySessionID = &sessionID
	return nil
}

func (s *fakeOrderStore) ListHistory(_ context.Context, id string) ([]orders.StatusHistoryEntry, error) {
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

func (s *fakeOrderStore) CountByStatus(context.Context) (map[orders.OrderStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[orders.OrderStatus]int)
	for _, o := range s.orders {
		out[o.Status]++
	}
	return out, nil
}

var _ ports.OrderStore = (*fakeOrderStore)(nil)

// fakeCatalogStore is the in-memory catalog backing the CRUD tests.
type fakeCatalogStore struct {
	mu        sync.Mutex
	nextID    int64
	menu      map[int64]*catalog.MenuItem
	locations map[string]*catalog.Location
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{
		menu:      make(map[int64]*catalog.MenuItem),
		locations: make(map[string]*catalog.Location),
	}
}

func (s *fakeCatalogStore) ListMenu(context.Context) ([]catalog.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.MenuItem, 0, len(s.menu))
	for _, m := range s.menu {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeCatalogStore) GetMenuItem(_ context.Context, id int64) (*catalog.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.menu[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *fakeCatalogStore) InsertMenuItem(_ context.Context, m *catalog.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m.ID = s.nextID
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	cp := *m
	s.menu[m.ID] = &cp
	return nil
}

func (s *fakeCatalogStore) UpdateMenuItem(_ context.Context, m *catalog.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.menu[m.ID]; !ok {
		return orders.ErrNotFound
	}
	m.UpdatedAt = time.Now().UTC()
	cp := *m
	s.menu[m.ID] = &cp
	return nil
}

func (s *fakeCatalogStore) DeleteMenuItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.menu[id]; !ok {
		return orders.ErrNotFound
	}
	delete(s.menu, id)
	return nil
}

func (s *fakeCatalogStore) ListLocations(context.Context) ([]catalog.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Location, 0, len(s.locations))
	for _, l := range s.locations {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeCatalogStore) GetLocation(_ context.Context, id string) (*catalog.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locations[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *fakeCatalogStore) InsertLocation(_ context.Context, l *catalog.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.UpdatedAt = time.Now().UTC()
	cp := *l
	s.locations[l.ID] = &cp
	return nil
}

func (s *fakeCatalogStore) UpdateLocation(_ context.Context, l *catalog.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[l.ID]; !ok {
		return orders.ErrNotFound
	}
	l.UpdatedAt = time.Now().UTC()
	cp := *l
	s.locations[l.ID] = &cp
	return nil
}

func (s *fakeCatalogStore) DeleteLocation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[id]; !ok {
		return orders.ErrNotFound
	}
	delete(s.locations, id)
	return nil
}

func (s *fakeCatalogStore) CountMenuItems(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.menu), nil
}

func (s *fakeCatalogStore) CountLocations(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locations), nil
}

var _ ports.CatalogStore = (*fakeCatalogStore)(nil)

// stubGateway returns canned checkout sessions and lookups.
type stubGateway struct {
	createErr error
	session   ports.GatewaySession
	lookupErr error
}

func (g *stubGateway) CreateCheckoutSession(_ context.Context, o *orders.Order) (ports.CheckoutSession, error) {
	if g.createErr != nil {
		return ports.CheckoutSession{}, g.createErr
	}
	return ports.CheckoutSession{
		SessionID:   "cs_" + o.ID,
		RedirectURL: "https://pay.example/cs_" + o.ID,
	}, nil
}

func (g *stubGateway) RetrieveSession(context.Context, string) (ports.GatewaySession, error) {
	if g.lookupErr != nil {
		return ports.GatewaySession{}, g.lookupErr
	}
	return g.session, nil
}

var _ ports.PaymentGateway = (*stubGateway)(nil)
