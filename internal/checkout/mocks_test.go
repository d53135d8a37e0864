package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fjod/go_checkout/internal/cart"
	"github.com/fjod/go_checkout/internal/catalog"
	"github.com/fjod/go_checkout/internal/domain"
	"github.com/fjod/go_checkout/internal/events"
	"github.com/fjod/go_checkout/internal/pricing"
	"github.com/fjod/go_checkout/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockOrders struct {
	mu          sync.Mutex
	submissions []domain.OrderSubmission
	tokens      []string
	clientIDs   []string
	receipt     *domain.OrderReceipt
	err         error
	// release, when set, blocks SubmitOrder until closed
	release chan struct{}
	entered chan struct{}
}

func (m *mockOrders) SubmitOrder(_ context.Context, clientID string, submission domain.OrderSubmission, csrfToken string) (*domain.OrderReceipt, error) {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.release != nil {
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions = append(m.submissions, submission)
	m.tokens = append(m.tokens, csrfToken)
	m.clientIDs = append(m.clientIDs, clientID)
	if m.err != nil {
		return nil, m.err
	}
	return m.receipt, nil
}

func (m *mockOrders) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.submissions)
}

type mockPublisher struct {
	mu     sync.Mutex
	events []events.OrderPlaced
	err    error
}

func (p *mockPublisher) PublishOrderPlaced(_ context.Context, e events.OrderPlaced) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type mutableSource struct {
	mu  sync.Mutex
	cat *catalog.Catalog
	err error
}

func (s *mutableSource) Snapshot(context.Context) (*catalog.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cat, s.err
}

func (s *mutableSource) set(c *catalog.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cat = c
}

type userFacingError struct {
	msg string
}

func (e userFacingError) Error() string       { return "status 422: " + e.msg }
func (e userFacingError) UserMessage() string { return e.msg }

var errNetwork = errors.New("connection refused")

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: "42", Name: "Widget", Price: domain.RawNumber("100.00"), StockQuantity: domain.RawNumber("3"), Weight: domain.RawNumber("1.5")},
		{ID: "7", Name: "Shirt", Price: domain.RawNumber("50"), StockQuantity: domain.RawNumber("20"), Weight: domain.RawNumber("0.5"),
			Variants: []domain.Variant{{ID: "red", Price: domain.RawNumber("55"), StockQuantity: domain.RawNumber("5"), Attributes: domain.Attributes{{Name: "color", Value: "red"}}}}},
		{ID: "9", Name: "Mug", Price: domain.RawNumber("25"), StockQuantity: domain.RawNumber("10"), Weight: domain.RawNumber("0.4")},
	}
}

type fixture struct {
	mem       *storage.MemoryStore
	store     *cart.Store
	source    *mutableSource
	orders    *mockOrders
	publisher *mockPublisher
	deps      Deps
	identity  Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := storage.NewMemoryStore()
	f := &fixture{
		mem:       mem,
		store:     cart.NewStore(mem, "", zap.NewNop()),
		source:    &mutableSource{cat: catalog.New(testProducts()...)},
		orders:    &mockOrders{receipt: &domain.OrderReceipt{ID: "1001", OrderNumber: "ORD-1001"}},
		publisher: &mockPublisher{},
		identity:  Identity{TenantID: "t1", OwnerID: "o1", UserID: "u1", ClientID: "client-1", ContactID: "contact-1"},
	}
	f.deps = Deps{
		Carts:      f.store,
		Catalog:    f.source,
		Calculator: pricing.NewCalculator(pricing.DefaultTable()),
		Orders:     f.orders,
		Token:      func(context.Context) string { return "csrf-token" },
		Events:     f.publisher,
		Logger:     zap.NewNop(),
	}
	return f
}

// seed writes lines under the identity's most specific key.
func (f *fixture) seed(t *testing.T, raw string) {
	t.Helper()
	require.NoError(t, f.mem.Set(context.Background(), "cart:t1:o1:u1", raw))
}

func (f *fixture) session(t *testing.T, contact *domain.Contact) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), "sess-1", f.identity, contact, f.deps)
	require.NoError(t, err)
	return s
}

func completeForm() domain.FormPatch {
	str := func(s string) *string { return &s }
	return domain.FormPatch{
		FirstName:       str("Juan"),
		LastName:        str("Dela Cruz"),
		Email:           str("juan@example.com"),
		Phone:           str("09171234567"),
		Address:         str("123 Osmeña Blvd"),
		City:            str("Cebu City"),
		State:           str("Cebu"),
		PostalCode:      str("6000"),
		PaymentMethodID: str("cod"),
	}
}

// toReview fills the form and walks the session to the review step.
func toReview(t *testing.T, s *Session) {
	t.Helper()
	s.UpdateForm(completeForm())
	for s.Step() != domain.StepReview {
		_, err := s.Next(context.Background())
		require.NoError(t, err)
	}
}
