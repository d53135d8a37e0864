package checkout

import (
	"context"

	"github.com/fjod/go_checkout/internal/domain"
	"github.com/fjod/go_checkout/internal/events"
	"github.com/fjod/go_checkout/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Submit places the order. It is only allowed from the review step, re-runs
// every step's validation and makes a single attempt. A rejected or failed
// attempt keeps the cart; an accepted one clears every storage key and resets
// the wizard.
//
// The submission is not cancelled when ctx is: an abandoned request still
// finishes and its outcome lands on this session only.
func (s *Session) Submit(ctx context.Context) (*domain.OrderReceipt, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInProgress
	}
	defer s.busy.Store(false)

	ctx = context.WithoutCancel(ctx)
	log := logger.FromContext(ctx, s.deps.Logger).With(zap.String("session_id", s.id))

	s.mu.Lock()
	if s.step != domain.StepReview {
		s.mu.Unlock()
		return nil, ErrNotAtReview
	}
	if c, err := s.deps.Catalog.Snapshot(ctx); err != nil {
		log.Warn("catalog refresh before submit failed", zap.Error(err))
	} else {
		s.catalog = c
	}
	if verr := validateAll(s.form, s.cart, s.deps.Calculator.Rates()); verr != nil {
		s.mu.Unlock()
		return nil, verr
	}

	breakdown := s.deps.Calculator.Breakdown(s.cart, s.catalog, s.form.Destination(), s.form.ShippingMethodID)
	if len(breakdown.Lines) == 0 {
		s.notifyLocked(NoticeError, msgEmptyResolvedOrder)
		log.Warn("no cart line resolved at submit", zap.Int("lines", len(s.cart.Lines)))
		s.mu.Unlock()
		return nil, ErrEmptyResolvedOrder
	}
	submission := BuildSubmission(s.form, s.identity, breakdown)
	cartKey := s.cart.Key
	itemCount := 0
	for _, l := range breakdown.Lines {
		itemCount += l.Line.Quantity
	}
	s.mu.Unlock()

	receipt, err := s.deps.Orders.SubmitOrder(ctx, s.identity.ClientID, submission, s.deps.Token(ctx))
	if err != nil {
		serr := &SubmissionError{Cause: err}
		log.Error("order submission failed", zap.String("client_id", s.identity.ClientID), zap.Error(err))
		s.notify(NoticeError, Message(serr))
		return nil, serr
	}
	if receipt == nil {
		receipt = &domain.OrderReceipt{}
	}
	if s.abandoned.Load() {
		log.Info("order accepted for abandoned session")
	}

	cleared, err := s.deps.Carts.Clear(ctx, s.keys, cartKey)
	if err != nil {
		log.Warn("failed to clear cart after order", zap.String("key", cartKey), zap.Error(err))
	}

	s.mu.Lock()
	s.cart = cleared
	s.form = domain.NewCheckoutForm(s.deps.DefaultCountry, s.contact)
	s.step = domain.StepOrderSummary
	s.receipt = receipt
	s.notifyLocked(NoticeSuccess, msgOrderPlaced)
	s.mu.Unlock()

	event := events.OrderPlaced{
		EventID:     uuid.NewString(),
		SessionID:   s.id,
		OrderID:     receipt.ID.String(),
		OrderNumber: receipt.OrderNumber,
		ClientID:    s.identity.ClientID,
		TenantID:    s.identity.TenantID,
		OwnerID:     s.identity.OwnerID,
		UserID:      s.identity.UserID,
		CartKey:     cartKey,
		TotalAmount: submission.TotalAmount,
		ItemCount:   itemCount,
		PlacedAt:    s.deps.Now().UTC(),
	}
	if err := s.deps.Events.PublishOrderPlaced(ctx, event); err != nil {
		log.Warn("failed to publish order placed event", zap.Error(err))
	}

	log.Info("order placed",
		zap.String("order_number", receipt.OrderNumber),
		zap.Float64("total_amount", submission.TotalAmount),
		zap.Int("items", itemCount))
	return receipt, nil
}

// Receipt is the last accepted order, if any.
func (s *Session) Receipt() *domain.OrderReceipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receipt
}
