package checkout

import (
	"strings"

	"github.com/fjod/go_checkout/internal/domain"
	"github.com/fjod/go_checkout/internal/pricing"
)

const (
	msgCartEmpty     = "Your cart is empty."
	msgFirstName     = "First name is required."
	msgLastName      = "Last name is required."
	msgEmail         = "Email address is required."
	msgPhone         = "Phone number is required."
	msgAddress       = "Address is required."
	msgCity          = "City is required."
	msgPostalCode    = "Postal code is required."
	msgPaymentMethod = "Please select a payment method."

	msgShippingMethod = "Please select a shipping method available for your address."
)

type requirement struct {
	value   string
	message string
}

// ValidateStep returns every message for fields step requires but form or
// snapshot lack. An empty result means the step may be left.
func ValidateStep(step domain.CheckoutStep, form domain.CheckoutForm, snapshot domain.CartSnapshot) []string {
	var reqs []requirement
	switch step {
	case domain.StepOrderSummary, domain.StepReview:
		if snapshot.IsEmpty() {
			return []string{msgCartEmpty}
		}
		return nil
	case domain.StepCustomerInfo:
		reqs = []requirement{
			{form.FirstName, msgFirstName},
			{form.LastName, msgLastName},
			{form.Email, msgEmail},
			{form.Phone, msgPhone},
		}
	case domain.StepShipping:
		reqs = []requirement{
			{form.Address, msgAddress},
			{form.City, msgCity},
			{form.PostalCode, msgPostalCode},
			{form.Phone, msgPhone},
		}
	case domain.StepPayment:
		reqs = []requirement{{form.PaymentMethodID, msgPaymentMethod}}
	}

	var messages []string
	for _, r := range reqs {
		if strings.TrimSpace(r.value) == "" {
			messages = append(messages, r.message)
		}
	}
	return messages
}

// validateStep adds the rate-table check to ValidateStep: the shipping step
// only holds with a method offered for the destination.
func validateStep(step domain.CheckoutStep, form domain.CheckoutForm, snapshot domain.CartSnapshot, rates pricing.RateTable) []string {
	messages := ValidateStep(step, form, snapshot)
	if step == domain.StepShipping && !pricing.HasMethod(rates, form.Destination(), form.ShippingMethodID) {
		messages = append(messages, msgShippingMethod)
	}
	return messages
}

// validateAll checks every step in order and reports the first failing one.
func validateAll(form domain.CheckoutForm, snapshot domain.CartSnapshot, rates pricing.RateTable) *ValidationError {
	for _, step := range domain.CheckoutSteps() {
		if msgs := validateStep(step, form, snapshot, rates); len(msgs) > 0 {
			return &ValidationError{Step: step, Messages: msgs}
		}
	}
	return nil
}
