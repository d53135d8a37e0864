package domain

import "strings"

const DefaultShippingMethod = "standard"

// CheckoutForm is the mutable customer input collected across the wizard.
type CheckoutForm struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	City             string `json:"city"`
	State            string `json:"state"`
	PostalCode       string `json:"postal_code"`
	Country          string `json:"country"`
	Notes            string `json:"notes"`
	ShippingMethodID string `json:"shipping_method"`
	PaymentMethodID  string `json:"payment_method"`
}

// Contact is what the authenticated user is already known to have on file.
type Contact struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
}

// NewCheckoutForm returns a form with defaults applied and the contact's known
// details pre-filled.
func NewCheckoutForm(defaultCountry string, contact *Contact) CheckoutForm {
	f := CheckoutForm{
		Country:          defaultCountry,
		ShippingMethodID: DefaultShippingMethod,
	}
	if contact == nil {
		return f
	}
	f.FirstName = contact.FirstName
	f.LastName = contact.LastName
	f.Email = contact.Email
	f.Phone = contact.Phone
	f.Address = contact.Address
	f.City = contact.City
	f.State = contact.State
	f.PostalCode = contact.PostalCode
	if contact.Country != "" {
		f.Country = contact.Country
	}
	return f
}

func (f CheckoutForm) Destination() Destination {
	return Destination{Country: f.Country, State: f.State, City: f.City}
}

func (f CheckoutForm) CustomerName() string {
	return strings.TrimSpace(strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName))
}

// FullAddress joins the non-empty address parts with ", ".
func (f CheckoutForm) FullAddress() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{f.Address, f.City, f.State, f.PostalCode, f.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// FormPatch carries a partial form update; nil fields are left untouched.
type FormPatch struct {
	FirstName        *string `json:"first_name,omitempty"`
	LastName         *string `json:"last_name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Address          *string `json:"address,omitempty"`
	City             *string `json:"city,omitempty"`
	State            *string `json:"state,omitempty"`
	PostalCode       *string `json:"postal_code,omitempty"`
	Country          *string `json:"country,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	ShippingMethodID *string `json:"shipping_method,omitempty"`
	PaymentMethodID  *string `json:"payment_method,omitempty"`
}

// Apply returns the patched form.
func (p FormPatch) Apply(f CheckoutForm) CheckoutForm {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&f.FirstName, p.FirstName)
	set(&f.LastName, p.LastName)
	set(&f.Email, p.Email)
	set(&f.Phone, p.Phone)
	set(&f.Address, p.Address)
	set(&f.City, p.City)
	set(&f.State, p.State)
	set(&f.PostalCode, p.PostalCode)
	set(&f.Country, p.Country)
	set(&f.Notes, p.Notes)
	set(&f.ShippingMethodID, p.ShippingMethodID)
	set(&f.PaymentMethodID, p.PaymentMethodID)
	return f
}
