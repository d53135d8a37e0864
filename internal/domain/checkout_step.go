package domain

// CheckoutStep is one stage of the checkout wizard.
type CheckoutStep string

const (
	StepOrderSummary CheckoutStep = "order-summary"
	StepCustomerInfo CheckoutStep = "customer-info"
	StepShipping     CheckoutStep = "shipping"
	StepPayment      CheckoutStep = "payment"
	StepReview       CheckoutStep = "review"
)

var checkoutSteps = []CheckoutStep{
	StepOrderSummary,
	StepCustomerInfo,
	StepShipping,
	StepPayment,
	StepReview,
}

// CheckoutSteps returns the fixed step order.
func CheckoutSteps() []CheckoutStep {
	out := make([]CheckoutStep, len(checkoutSteps))
	copy(out, checkoutSteps)
	return out
}

// Index returns the position of the step, or -1 for an unknown value.
func (s CheckoutStep) Index() int {
	for i, step := range checkoutSteps {
		if step == s {
			return i
		}
	}
	return -1
}

func (s CheckoutStep) IsValid() bool {
	return s.Index() >= 0
}

func (s CheckoutStep) IsFirst() bool {
	return s == checkoutSteps[0]
}

func (s CheckoutStep) IsLast() bool {
	return s == checkoutSteps[len(checkoutSteps)-1]
}

// Next returns the following step; the last step returns itself.
func (s CheckoutStep) Next() CheckoutStep {
	i := s.Index()
	if i < 0 || i == len(checkoutSteps)-1 {
		return s
	}
	return checkoutSteps[i+1]
}

// Previous returns the preceding step; the first step returns itself.
func (s CheckoutStep) Previous() CheckoutStep {
	i := s.Index()
	if i <= 0 {
		return s
	}
	return checkoutSteps[i-1]
}

// AtOrAfter reports whether s is the same as or later than other.
func (s CheckoutStep) AtOrAfter(other CheckoutStep) bool {
	return s.Index() >= other.Index()
}

// String representation (for logging)
func (s CheckoutStep) String() string {
	return string(s)
}
