package checkout

import (
	"github.com/fjod/go_checkout/internal/domain"
	"github.com/fjod/go_checkout/internal/pricing"
)

// Identity is who the session acts for. TenantID/OwnerID/UserID select the cart
// storage keys; ClientID and ContactID go into the order.
type Identity struct {
	TenantID  string
	OwnerID   string
	UserID    string
	ClientID  string
	ContactID string
}

// BuildSubmission maps a priced breakdown and the form into the order payload.
// Every amount is rounded to cents with the same rule used for display.
func BuildSubmission(form domain.CheckoutForm, identity Identity, b pricing.Breakdown) domain.OrderSubmission {
	items := make([]domain.OrderItem, 0, len(b.Lines))
	for _, l := range b.Lines {
		item := domain.OrderItem{
			ProductID:   l.Line.ProductID,
			Quantity:    l.Line.Quantity,
			Price:       pricing.Round2(l.UnitPrice).InexactFloat64(),
			ShippingFee: pricing.Round2(l.Shipping).InexactFloat64(),
		}
		if l.Variant != nil {
			item.VariantID = domain.IDPtr(l.Variant.ID)
			item.Attributes = l.Variant.Attributes
		}
		items = append(items, item)
	}

	address := form.FullAddress()
	return domain.OrderSubmission{
		CustomerName:   form.CustomerName(),
		CustomerEmail:  form.Email,
		CustomerPhone:  form.Phone,
		ShippingAddr:   address,
		BillingAddr:    address,
		Items:          items,
		Subtotal:       b.Subtotal.InexactFloat64(),
		TaxAmount:      b.Tax.InexactFloat64(),
		ShippingFee:    b.Shipping.InexactFloat64(),
		ServiceFee:     b.ServiceFee.InexactFloat64(),
		DiscountAmount: b.Discount.InexactFloat64(),
		TotalAmount:    b.Total.InexactFloat64(),
		PaymentMethod:  form.PaymentMethodID,
		Notes:          form.Notes,
		ClientID:       identity.ClientID,
		ContactID:      identity.ContactID,
		ShippingMethod: form.ShippingMethodID,
		Country:        form.Country,
		State:          form.State,
		City:           form.City,
		PostalCode:     form.PostalCode,
	}
}
