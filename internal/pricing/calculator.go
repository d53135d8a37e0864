package pricing

import (
	"github.com/fjod/go_checkout/internal/catalog"
	"github.com/fjod/go_checkout/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ServiceFeeRate = decimal.RequireFromString("0.10")
	TaxRate        = decimal.RequireFromString("0.12")
)

// Round2 rounds half-up to cents. Amounts here are never negative, so rounding
// half away from zero is the same thing.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// PricedLine is a cart line that resolved against the catalog.
type PricedLine struct {
	Line      domain.CartLine
	Product   domain.Product
	Variant   *domain.Variant
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
	Weight    decimal.Decimal
	// Shipping is this line's own weight run through the rate table, in cents.
	Shipping decimal.Decimal
}

type Breakdown struct {
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	ServiceFee decimal.Decimal
	Shipping   decimal.Decimal
	Discount   decimal.Decimal
	Total      decimal.Decimal
	Weight     decimal.Decimal
	Lines      []PricedLine
}

// MethodQuote previews the charged shipping for one available method.
type MethodQuote struct {
	Method domain.ShippingMethod
	Fee    decimal.Decimal
}

type Calculator struct {
	rates RateTable
}

func NewCalculator(rates RateTable) *Calculator {
	if rates == nil {
		rates = DefaultTable()
	}
	return &Calculator{rates: rates}
}

func (c *Calculator) Rates() RateTable {
	return c.rates
}

// Lines prices every resolvable line; dangling lines are skipped.
func (c *Calculator) Lines(snapshot domain.CartSnapshot, cat *catalog.Catalog, dest domain.Destination, methodID string) []PricedLine {
	lines := make([]PricedLine, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		product, variant, ok := cat.Resolve(line.ProductID, line.VariantID)
		if !ok || line.Quantity < 1 {
			continue
		}
		unit := catalog.EffectivePrice(product, variant)
		weight := catalog.EffectiveWeight(line.Quantity, product, variant)
		lines = append(lines, PricedLine{
			Line:      line,
			Product:   product,
			Variant:   variant,
			UnitPrice: unit,
			LineTotal: unit.Mul(decimal.NewFromInt(int64(line.Quantity))),
			Weight:    weight,
			Shipping:  Round2(c.rates.Rate(dest, methodID, weight)),
		})
	}
	return lines
}

// Breakdown totals the cart. Tax and service fee are both taken off the raw
// subtotal, and shipping is the sum of per-line fees.
func (c *Calculator) Breakdown(snapshot domain.CartSnapshot, cat *catalog.Catalog, dest domain.Destination, methodID string) Breakdown {
	return summarise(c.Lines(snapshot, cat, dest, methodID))
}

// Quotes prices each method available for dest with the same per-line model as
// Breakdown, so the preview always equals what would be charged.
func (c *Calculator) Quotes(snapshot domain.CartSnapshot, cat *catalog.Catalog, dest domain.Destination) []MethodQuote {
	methods := c.rates.Methods(dest)
	quotes := make([]MethodQuote, 0, len(methods))
	for _, m := range methods {
		fee := decimal.Zero
		for _, line := range c.Lines(snapshot, cat, dest, m.ID) {
			fee = fee.Add(line.Shipping)
		}
		quotes = append(quotes, MethodQuote{Method: m, Fee: fee})
	}
	return quotes
}

func summarise(lines []PricedLine) Breakdown {
	subtotal, shipping, weight := decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal)
		shipping = shipping.Add(l.Shipping)
		weight = weight.Add(l.Weight)
	}

	b := Breakdown{
		Subtotal:   Round2(subtotal),
		ServiceFee: Round2(subtotal.Mul(ServiceFeeRate)),
		Tax:        Round2(subtotal.Mul(TaxRate)),
		Shipping:   Round2(shipping),
		Discount:   decimal.Zero,
		Weight:     weight,
		Lines:      lines,
	}
	b.Total = Round2(b.Subtotal.Add(b.Shipping).Add(b.ServiceFee).Add(b.Tax).Sub(b.Discount))
	return b
}
