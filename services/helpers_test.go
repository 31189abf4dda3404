package services_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"bidding-service/models"
	"bidding-service/services"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPublisher struct {
	mu     sync.Mutex
	events []models.BiddingEvent
}

func (m *mockPublisher) Publish(_ context.Context, _ string, message []byte) error {
	var ev models.BiddingEvent
	if err := json.Unmarshal(message, &ev); err != nil {
		return err
	}
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	return nil
}

func (m *mockPublisher) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev.EventType)
	}
	return out
}

type mockMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *mockMetrics) RecordCount(_ context.Context, name string, _ map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[name]++
	return nil
}

func (m *mockMetrics) RecordLatency(context.Context, string, time.Duration, map[string]string) error {
	return nil
}

func (m *mockMetrics) IsEnabled() bool { return true }

func (m *mockMetrics) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}

type testEnv struct {
	store      *memStore
	publisher  *mockPublisher
	metrics    *mockMetrics
	settings   services.Settings
	now        time.Time
	sessions   services.SessionService
	bids       services.BidService
	queries    services.QueryService
	acceptance services.AcceptanceService
	orders     services.OrderService
	partners   services.PartnerService
}

func newTestEnv(t *testing.T, opts ...func(*services.Settings)) *testEnv {
	t.Helper()
	env := &testEnv{
		store:     newMemStore(),
		publisher: &mockPublisher{},
		metrics:   &mockMetrics{},
		now:       time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	env.settings = services.DefaultSettings()
	env.settings.Clock = func() time.Time { return env.now }
	for _, opt := range opts {
		opt(&env.settings)
	}

	logger := zap.NewNop()
	events := services.NewEventPublisher(env.publisher, "arn:aws:sns:ap-south-1:000000000000:bidding-events", logger)
	env.sessions = services.NewSessionService(env.store, events, env.metrics, env.settings, logger)
	env.bids = services.NewBidService(env.store, events, env.metrics, env.settings, logger)
	env.queries = services.NewQueryService(env.store, env.settings, logger)
	env.acceptance = services.NewAcceptanceService(env.store, events, env.metrics, logger)
	env.orders = services.NewOrderService(env.store, events, env.metrics, env.settings, logger)
	env.partners = services.NewPartnerService(env.store, logger)
	return env
}

func enforceExpiry(s *services.Settings) { s.EnforceExpiry = true }
func repostClearsBids(s *services.Settings) { s.RepostClearsBids = true }

func (e *testEnv) advance(d time.Duration) { e.now = e.now.Add(d) }

func (e *testEnv) seedOrder(t *testing.T, rate int64) *models.Order {
	t.Helper()
	order, err := e.orders.CreateOrder(context.Background(),
		models.Principal{UserID: "staff-1", Role: "SUPERVISOR", Office: "Delhi"},
		&models.CreateOrderRequest{
			CustomerName: "Acme Steel",
			FromLocation: "Delhi, DEL",
			ToLocation:   "Mumbai, MAH",
			Material:     "Steel",
			Weight:       18,
			TruckSize:    "32ft",
			Rate:         rate,
		})
	require.NoError(t, err)
	return order
}

func (e *testEnv) seedOwner(t *testing.T, name, phone, status string) *models.TruckOwner {
	t.Helper()
	owner := &models.TruckOwner{Name: name, Phone: phone, Status: status}
	require.NoError(t, e.store.Partners().CreateOwner(context.Background(), owner))
	return owner
}

func (e *testEnv) placeBid(t *testing.T, phone string, order *models.Order, amount int64) *models.Bid {
	t.Helper()
	bid, err := e.bids.PlaceBid(context.Background(), &models.PlaceBidRequest{
		Phone:     phone,
		LoadID:    order.ID.String(),
		BidAmount: amount,
	})
	require.NoError(t, err)
	return bid
}

func (e *testEnv) launch(t *testing.T, order *models.Order, minutes int, basePrice int64) *models.BiddingSession {
	t.Helper()
	session, err := e.sessions.Launch(context.Background(), &models.LaunchAuctionRequest{
		OrderID:         order.ID.String(),
		DurationMinutes: minutes,
		BasePrice:       basePrice,
	})
	require.NoError(t, err)
	return session
}

func (e *testEnv) findLoad(t *testing.T, order *models.Order) (models.Load, bool) {
	t.Helper()
	loads, err := e.queries.GetOpenLoads(context.Background())
	require.NoError(t, err)
	for _, l := range loads {
		if l.ID == order.ID {
			return l, true
		}
	}
	return models.Load{}, false
}
