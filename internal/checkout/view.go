package checkout

import (
	"github.com/fjod/go_checkout/internal/domain"
	"github.com/fjod/go_checkout/internal/pricing"
)

// View is a consistent read of the session for rendering.
type View struct {
	ID         string
	Step       domain.CheckoutStep
	Steps      []domain.CheckoutStep
	Form       domain.CheckoutForm
	Cart       domain.CartSnapshot
	Breakdown  pricing.Breakdown
	Quotes     []pricing.MethodQuote
	Missing    []string
	Processing bool
	Receipt    *domain.OrderReceipt
	Notices    []Notice
}

// View prices the cart for the current destination and drains pending notices.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	dest := s.form.Destination()
	return View{
		ID:         s.id,
		Step:       s.step,
		Steps:      domain.CheckoutSteps(),
		Form:       s.form,
		Cart:       s.cart.Clone(),
		Breakdown:  s.deps.Calculator.Breakdown(s.cart, s.catalog, dest, s.form.ShippingMethodID),
		Quotes:     s.deps.Calculator.Quotes(s.cart, s.catalog, dest),
		Missing:    validateStep(s.step, s.form, s.cart, s.deps.Calculator.Rates()),
		Processing: s.busy.Load(),
		Receipt:    s.receipt,
		Notices:    s.drainLocked(),
	}
}
