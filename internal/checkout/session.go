package checkout

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fjod/go_checkout/internal/cart"
	"github.com/fjod/go_checkout/internal/catalog"
	"github.com/fjod/go_checkout/internal/domain"
	"github.com/fjod/go_checkout/internal/pricing"
	"go.uber.org/zap"
)

// Session is one shopper's walk through the checkout wizard. It is safe for
// concurrent use; state changes are serialised, and at most one submit runs at
// a time.
type Session struct {
	id       string
	deps     Deps
	identity Identity
	contact  *domain.Contact
	keys     cart.Keys

	mu      sync.Mutex
	step    domain.CheckoutStep
	form    domain.CheckoutForm
	cart    domain.CartSnapshot
	catalog *catalog.Catalog
	notices []Notice
	receipt *domain.OrderReceipt

	busy      atomic.Bool
	abandoned atomic.Bool
}

// NewSession loads the shopper's cart from the most likely storage key and
// prunes lines the catalog no longer knows.
func NewSession(ctx context.Context, id string, identity Identity, contact *domain.Contact, deps Deps) (*Session, error) {
	deps, err := deps.withDefaults()
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:       id,
		deps:     deps,
		identity: identity,
		contact:  contact,
		keys: cart.KeysFor(cart.Identity{
			TenantID: identity.TenantID,
			OwnerID:  identity.OwnerID,
			UserID:   identity.UserID,
		}, deps.Carts.SharedKey()),
		step: domain.StepOrderSummary,
		form: domain.NewCheckoutForm(deps.DefaultCountry, contact),
	}

	key := deps.Carts.ResolveStorageKey(ctx, s.keys)
	s.cart = deps.Carts.Load(ctx, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.refreshLocked(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Identity() Identity {
	return s.identity
}

func (s *Session) Keys() cart.Keys {
	return s.keys
}

func (s *Session) Step() domain.CheckoutStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *Session) Form() domain.CheckoutForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

func (s *Session) Cart() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Abandoned reports whether the session was detached from its registry.
func (s *Session) Abandoned() bool {
	return s.abandoned.Load()
}

// Processing reports whether a submit is in flight.
func (s *Session) Processing() bool {
	return s.busy.Load()
}

func (s *Session) Validate(step domain.CheckoutStep) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return validateStep(step, s.form, s.cart, s.deps.Calculator.Rates())
}

// Next leaves the current step when it validates. The catalog is re-read first,
// so a step that held a moment ago can fail once items disappear.
func (s *Session) Next(ctx context.Context) (domain.CheckoutStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.refreshLocked(ctx); err != nil {
		s.deps.Logger.Warn("catalog refresh failed; validating against previous snapshot",
			zap.String("session_id", s.id), zap.Error(err))
	}

	if msgs := validateStep(s.step, s.form, s.cart, s.deps.Calculator.Rates()); len(msgs) > 0 {
		return s.step, &ValidationError{Step: s.step, Messages: msgs}
	}
	if s.step.IsLast() {
		return s.step, nil
	}

	s.step = s.step.Next()
	if s.step == domain.StepShipping {
		s.defaultShippingMethodLocked()
	}
	return s.step, nil
}

func (s *Session) Previous() domain.CheckoutStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = s.step.Previous()
	return s.step
}

// UpdateForm applies patch. Moving the destination once shipping options have
// been shown drops the chosen method back to standard, unless the same patch
// picks a method itself. From the shipping step on, a method the destination
// does not offer never survives a patch.
func (s *Session) UpdateForm(patch domain.FormPatch) domain.CheckoutForm {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.form.Destination()
	next := patch.Apply(s.form)
	if s.step.AtOrAfter(domain.StepShipping) && patch.ShippingMethodID == nil && !before.Equal(next.Destination()) {
		next.ShippingMethodID = domain.DefaultShippingMethod
	}
	s.form = next
	if s.step.AtOrAfter(domain.StepShipping) {
		s.defaultShippingMethodLocked()
	}
	return s.form
}

func (s *Session) AddItem(ctx context.Context, productID domain.ID, variantID *domain.ID, quantity int) error {
	return s.mutate(ctx, func(snapshot domain.CartSnapshot, c *catalog.Catalog) (domain.CartSnapshot, error) {
		return cart.AddItem(snapshot, c, productID, variantID, quantity)
	})
}

func (s *Session) SetQuantity(ctx context.Context, productID domain.ID, variantID *domain.ID, quantity int) error {
	return s.mutate(ctx, func(snapshot domain.CartSnapshot, c *catalog.Catalog) (domain.CartSnapshot, error) {
		return cart.SetQuantity(snapshot, c, productID, variantID, quantity)
	})
}

func (s *Session) RemoveItem(ctx context.Context, productID domain.ID, variantID *domain.ID) error {
	return s.mutate(ctx, func(snapshot domain.CartSnapshot, _ *catalog.Catalog) (domain.CartSnapshot, error) {
		return cart.Remove(snapshot, productID, variantID), nil
	})
}

// ClearCart empties the cart and erases every key it may be stored under.
func (s *Session) ClearCart(ctx context.Context) error {
	return s.mutate(ctx, func(snapshot domain.CartSnapshot, _ *catalog.Catalog) (domain.CartSnapshot, error) {
		return domain.CartSnapshot{Key: snapshot.Key}, nil
	})
}

// Refresh re-reads the catalog and prunes dangling lines, returning how many
// were removed.
func (s *Session) Refresh(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

// mutate applies fn and writes the result through before committing it in
// memory, so a failed write leaves both sides on the previous cart.
func (s *Session) mutate(ctx context.Context, fn func(domain.CartSnapshot, *catalog.Catalog) (domain.CartSnapshot, error)) error {
	if s.busy.Load() {
		return ErrSubmissionInProgress
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Submit raises busy before taking mu, so a submit that won the race is
	// visible here.
	if s.busy.Load() {
		return ErrSubmissionInProgress
	}

	next, err := fn(s.cart, s.catalog)
	if err != nil {
		return err
	}
	if err := s.persistLocked(ctx, next); err != nil {
		return err
	}
	s.cart = next
	return nil
}

func (s *Session) persistLocked(ctx context.Context, next domain.CartSnapshot) error {
	if next.IsEmpty() {
		if _, err := s.deps.Carts.Clear(ctx, s.keys, next.Key); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	}
	if err := s.deps.Carts.Save(ctx, next); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *Session) refreshLocked(ctx context.Context) (int, error) {
	c, err := s.deps.Catalog.Snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load catalog: %w", err)
	}
	s.catalog = c

	pruned, removed := cart.Reconcile(s.cart, c)
	if removed == 0 {
		return 0, nil
	}
	if err := s.persistLocked(ctx, pruned); err != nil {
		s.deps.Logger.Warn("failed to persist pruned cart",
			zap.String("session_id", s.id), zap.String("key", pruned.Key), zap.Error(err))
	}
	s.cart = pruned
	s.notifyLocked(NoticeWarning, prunedMessage(removed))
	return removed, nil
}

// defaultShippingMethodLocked keeps an available method, else picks standard,
// else the first method offered.
func (s *Session) defaultShippingMethodLocked() {
	methods := s.deps.Calculator.Rates().Methods(s.form.Destination())
	if len(methods) == 0 {
		return
	}
	for _, m := range methods {
		if m.ID == s.form.ShippingMethodID {
			return
		}
	}
	if pricing.HasMethod(s.deps.Calculator.Rates(), s.form.Destination(), domain.DefaultShippingMethod) {
		s.form.ShippingMethodID = domain.DefaultShippingMethod
		return
	}
	s.form.ShippingMethodID = methods[0].ID
}

func (s *Session) notify(level NoticeLevel, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked(level, message)
}

func (s *Session) notifyLocked(level NoticeLevel, message string) {
	s.notices = append(s.notices, Notice{Level: level, Message: message})
}

// Notices drains the pending notices.
func (s *Session) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drainLocked()
}

func (s *Session) drainLocked() []Notice {
	out := s.notices
	s.notices = nil
	return out
}
