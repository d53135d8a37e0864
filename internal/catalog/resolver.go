package catalog

import (
	"strings"

	"github.com/fjod/go_checkout/internal/domain"
	"github.com/shopspring/decimal"
)

// CoerceToNonNegativeNumber is the single policy for reading catalog numbers:
// absent, null, unparsable and negative values all count as zero, so totals stay
// computable when upstream data is bad.
func CoerceToNonNegativeNumber(n domain.Number) decimal.Decimal {
	raw, ok := n.Raw()
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// CoerceToNonNegativeInt applies the same policy and truncates toward zero.
func CoerceToNonNegativeInt(n domain.Number) int {
	return int(CoerceToNonNegativeNumber(n).IntPart())
}

// EffectivePrice prefers a non-null variant price over the product price.
func EffectivePrice(product domain.Product, variant *domain.Variant) decimal.Decimal {
	if variant != nil && !variant.Price.IsNull() {
		return CoerceToNonNegativeNumber(variant.Price)
	}
	return CoerceToNonNegativeNumber(product.Price)
}

// EffectiveStock is the variant stock when a variant is selected, else the product
// stock. Zero means the line cannot be added.
func EffectiveStock(product domain.Product, variant *domain.Variant) int {
	if variant != nil {
		return CoerceToNonNegativeInt(variant.StockQuantity)
	}
	return CoerceToNonNegativeInt(product.StockQuantity)
}

// EffectiveWeight is (variant weight || product weight || 0) * quantity. A non-zero
// variant weight replaces the product weight outright.
func EffectiveWeight(quantity int, product domain.Product, variant *domain.Variant) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	unit := decimal.Zero
	if variant != nil {
		unit = CoerceToNonNegativeNumber(variant.Weight)
	}
	if unit.IsZero() {
		unit = CoerceToNonNegativeNumber(product.Weight)
	}
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}
