package cart

import (
	"github.com/fjod/go_checkout/internal/catalog"
	"github.com/fjod/go_checkout/internal/domain"
)

// Reconcile drops lines whose product, or selected variant, is gone from c and
// reports how many were dropped. Reconciling twice changes nothing.
func Reconcile(snapshot domain.CartSnapshot, c *catalog.Catalog) (domain.CartSnapshot, int) {
	out := domain.CartSnapshot{Key: snapshot.Key}
	removed := 0
	for _, line := range snapshot.Lines {
		if _, _, ok := c.Resolve(line.ProductID, line.VariantID); !ok {
			removed++
			continue
		}
		out.Lines = append(out.Lines, line)
	}
	if removed == 0 {
		return snapshot.Clone(), 0
	}
	return out, removed
}

// SetQuantity replaces the quantity of an existing line. On error the returned
// snapshot is the input, untouched.
func SetQuantity(snapshot domain.CartSnapshot, c *catalog.Catalog, productID domain.ID, variantID *domain.ID, quantity int) (domain.CartSnapshot, error) {
	if quantity < 1 {
		return snapshot, ErrInvalidQuantity
	}
	i, ok := snapshot.Find(productID, variantID)
	if !ok {
		return snapshot, ErrLineNotFound
	}
	product, variant, ok := c.Resolve(productID, variantID)
	if !ok {
		return snapshot, ErrLineNotFound
	}
	if stock := catalog.EffectiveStock(product, variant); quantity > stock {
		return snapshot, &StockError{Available: stock}
	}

	out := snapshot.Clone()
	out.Lines[i].Quantity = quantity
	return out, nil
}

// AddItem adds quantity to the matching line, creating it when absent. The
// resulting line quantity is held to the same stock ceiling as SetQuantity.
func AddItem(snapshot domain.CartSnapshot, c *catalog.Catalog, productID domain.ID, variantID *domain.ID, quantity int) (domain.CartSnapshot, error) {
	if quantity < 1 {
		return snapshot, ErrInvalidQuantity
	}
	if variantID != nil && variantID.IsZero() {
		variantID = nil
	}
	product, variant, ok := c.Resolve(productID, variantID)
	if !ok {
		return snapshot, ErrLineNotFound
	}

	i, exists := snapshot.Find(productID, variantID)
	total := quantity
	if exists {
		total += snapshot.Lines[i].Quantity
	}
	if stock := catalog.EffectiveStock(product, variant); total > stock {
		return snapshot, &StockError{Available: stock}
	}

	out := snapshot.Clone()
	if exists {
		out.Lines[i].Quantity = total
		return out, nil
	}
	line := domain.CartLine{ProductID: productID, Quantity: quantity}
	if variantID != nil {
		line.VariantID = domain.IDPtr(*variantID)
	}
	out.Lines = append(out.Lines, line)
	return out, nil
}

// Remove drops the matching line. Removing an absent line is a no-op.
func Remove(snapshot domain.CartSnapshot, productID domain.ID, variantID *domain.ID) domain.CartSnapshot {
	i, ok := snapshot.Find(productID, variantID)
	if !ok {
		return snapshot.Clone()
	}
	out := snapshot.Clone()
	out.Lines = append(out.Lines[:i], out.Lines[i+1:]...)
	if len(out.Lines) == 0 {
		out.Lines = nil
	}
	return out
}
