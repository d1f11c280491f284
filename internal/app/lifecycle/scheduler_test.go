package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curbsidehq/curbside/internal/domain/orders"
	"github.com/curbsidehq/curbside/internal/shared/logger"
)

func testScheduler() (*Scheduler, *Engine, *fakeStore, *fakeNotifier) {
	engine, store, notif := testEngine()
	sched := NewScheduler(engine, store, logger.New("test"), time.Minute)
	return sched, engine, store, notif
}

func startCooking(t *testing.T, engine *Engine, minutes int) *orders.Order {
	t.Helper()
	ctx := context.Background()

	o, err := engine.CreateOrder(ctx, validCommand())
	require.NoError(t, err)
	_, err = engine.Apply(ctx, o.ID, orders.StatusConfirmed, nil, "gateway")
	require.NoError(t, err)
	_, err = engine.Apply(ctx, o.ID, orders.StatusCooking, &minutes, "staff")
	require.NoError(t, err)
	return o
}

func TestTickCountsDownToReady(t *testing.T) {
	sched, engine, store, notif := testScheduler()
	o := startCooking(t, engine, 20)

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		sched.Tick(ctx)
	}

	got, err := store.FetchOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusReady, got.Status)
	assert.Zero(t, got.RemainingMinutes)

	// entering cooking plus one event per minute of countdown
	_, updated := notif.counts()
	assert.Equal(t, 21, updated)

	// extra ticks change nothing
	sched.Tick(ctx)
	_, updated = notif.counts()
	assert.Equal(t, 21, updated)
}

func TestTickFlipsToReadyInSameTick(t *testing.T) {
	sched, engine, store, _ := testScheduler()
	o := startCooking(t, engine, 1)

	ctx := context.Background()
	sched.Tick(ctx)

	got, err := store.FetchOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusReady, got.Status)

	entries := store.historyFor(o.ID)
	assert.Equal(t, orders.StatusReady, entries[len(entries)-1].Status)
}

func TestTickIsolatesPerOrderFailures(t *testing.T) {
	sched, engine, store, _ := testScheduler()
	bad := startCooking(t, engine, 5)
	good := startCooking(t, engine, 5)

	store.mu.Lock()
	store.failOrder[bad.ID] = assert.AnError
	store.mu.Unlock()

	ctx := context.Background()
	sched.Tick(ctx)

	gotGood, err := store.FetchOrderByID(ctx, good.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, gotGood.RemainingMinutes)

	gotBad, err := store.FetchOrderByID(ctx, bad.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, gotBad.RemainingMinutes)
}

func TestTickSurvivesListFailure(t *testing.T) {
	sched, engine, store, _ := testScheduler()
	startCooking(t, engine, 5)

	store.mu.Lock()
	store.failListing = assert.AnError
	store.mu.Unlock()

	sched.Tick(context.Background()) // must not panic

	store.mu.Lock()
	store.failListing = nil
	store.mu.Unlock()

	sched.Tick(context.Background())
}

func TestTickRecoversPanic(t *testing.T) {
	sched, engine, store, _ := testScheduler()
	startCooking(t, engine, 5)

	store.mu.Lock()
	store.panicList = true
	store.mu.Unlock()

	assert.NotPanics(t, func() { sched.Tick(context.Background()) })

	store.mu.Lock()
	store.panicList = false
	store.mu.Unlock()

	// the scheduler still works afterwards
	sched.Tick(context.Background())
}

func TestStaffOverrideDuringCountdown(t *testing.T) {
	sched, engine, store, _ := testScheduler()
	o := startCooking(t, engine, 5)

	ctx := context.Background()
	sched.Tick(ctx)

	// staff marks it ready before the countdown finishes
	_, err := engine.Apply(ctx, o.ID, orders.StatusReady, nil, "staff")
	require.NoError(t, err)

	sched.Tick(ctx)

	got, err := store.FetchOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusReady, got.Status)
	assert.Zero(t, got.RemainingMinutes)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	sched, _, _, _ := testScheduler()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}
