package http

import (
	"github.com/fjod/go_checkout/internal/checkout"
	"github.com/fjod/go_checkout/internal/domain"
	"github.com/fjod/go_checkout/internal/pricing"
	"github.com/shopspring/decimal"
)

type ContactDTO struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type CreateSessionRequestDTO struct {
	Contact *ContactDTO `json:"contact,omitempty"`
}

type ItemRequestDTO struct {
	ProductID domain.ID  `json:"product_id"`
	VariantID *domain.ID `json:"variant_id,omitempty"`
	Quantity  int        `json:"quantity"`
}

type LineDTO struct {
	ProductID  domain.ID         `json:"product_id"`
	VariantID  *domain.ID        `json:"variant_id,omitempty"`
	Name       string            `json:"name"`
	Attributes domain.Attributes `json:"attributes,omitempty"`
	Quantity   int               `json:"quantity"`
	UnitPrice  string            `json:"unit_price"`
	LineTotal  string            `json:"line_total"`
	Weight     string            `json:"weight"`
	Shipping   string            `json:"shipping_fee"`
}

type TotalsDTO struct {
	Subtotal   string `json:"subtotal"`
	Tax        string `json:"tax"`
	ServiceFee string `json:"service_fee"`
	Shipping   string `json:"shipping_fee"`
	Discount   string `json:"discount"`
	Total      string `json:"total"`
	Weight     string `json:"weight"`
	ItemCount  int    `json:"item_count"`
}

type ShippingOptionDTO struct {
	domain.ShippingMethod
	Fee string `json:"fee"`
}

type SessionResponseDTO struct {
	ID              string                `json:"id"`
	Step            domain.CheckoutStep   `json:"step"`
	Steps           []domain.CheckoutStep `json:"steps"`
	Form            domain.CheckoutForm   `json:"form"`
	Lines           []LineDTO             `json:"lines"`
	Totals          TotalsDTO             `json:"totals"`
	ShippingOptions []ShippingOptionDTO   `json:"shipping_options"`
	Missing         []string              `json:"missing"`
	Processing      bool                  `json:"processing"`
	Receipt         *domain.OrderReceipt  `json:"receipt,omitempty"`
	Notices         []checkout.Notice     `json:"notices"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toContact(c *ContactDTO) *domain.Contact {
	if c == nil {
		return nil
	}
	return &domain.Contact{
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		State:      c.State,
		PostalCode: c.PostalCode,
		Country:    c.Country,
	}
}

func toSessionResponse(v checkout.View) SessionResponseDTO {
	lines := make([]LineDTO, 0, len(v.Breakdown.Lines))
	for _, l := range v.Breakdown.Lines {
		dto := LineDTO{
			ProductID: l.Line.ProductID,
			VariantID: l.Line.VariantID,
			Name:      l.Product.Name,
			Quantity:  l.Line.Quantity,
			UnitPrice: money(l.UnitPrice),
			LineTotal: money(l.LineTotal),
			Weight:    l.Weight.String(),
			Shipping:  money(l.Shipping),
		}
		if l.Variant != nil {
			dto.Attributes = l.Variant.Attributes
		}
		lines = append(lines, dto)
	}

	options := make([]ShippingOptionDTO, 0, len(v.Quotes))
	for _, q := range v.Quotes {
		options = append(options, ShippingOptionDTO{ShippingMethod: q.Method, Fee: money(q.Fee)})
	}

	notices := v.Notices
	if notices == nil {
		notices = []checkout.Notice{}
	}
	missing := v.Missing
	if missing == nil {
		missing = []string{}
	}

	return SessionResponseDTO{
		ID:              v.ID,
		Step:            v.Step,
		Steps:           v.Steps,
		Form:            v.Form,
		Lines:           lines,
		Totals:          toTotals(v.Breakdown, v.Cart),
		ShippingOptions: options,
		Missing:         missing,
		Processing:      v.Processing,
		Receipt:         v.Receipt,
		Notices:         notices,
	}
}

func toTotals(b pricing.Breakdown, snapshot domain.CartSnapshot) TotalsDTO {
	return TotalsDTO{
		Subtotal:   money(b.Subtotal),
		Tax:        money(b.Tax),
		ServiceFee: money(b.ServiceFee),
		Shipping:   money(b.Shipping),
		Discount:   money(b.Discount),
		Total:      money(b.Total),
		Weight:     b.Weight.String(),
		ItemCount:  snapshot.ItemCount(),
	}
}
