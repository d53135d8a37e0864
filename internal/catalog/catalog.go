package catalog

import (
	"context"

	"github.com/fjod/go_checkout/internal/domain"
)

// Catalog is an immutable snapshot of products keyed by id. A nil *Catalog is an
// empty catalog.
type Catalog struct {
	order    []domain.ID
	products map[domain.ID]domain.Product
}

func New(products ...domain.Product) *Catalog {
	c := &Catalog{
		order:    make([]domain.ID, 0, len(products)),
		products: make(map[domain.ID]domain.Product, len(products)),
	}
	for _, p := range products {
		if _, dup := c.products[p.ID]; !dup {
			c.order = append(c.order, p.ID)
		}
		c.products[p.ID] = p
	}
	return c
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

func (c *Catalog) Product(id domain.ID) (domain.Product, bool) {
	if c == nil {
		return domain.Product{}, false
	}
	p, ok := c.products[id]
	return p, ok
}

// Products returns products in the order they were added.
func (c *Catalog) Products() []domain.Product {
	if c == nil {
		return nil
	}
	out := make([]domain.Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out
}

// Resolve looks up a product and, when variantID is set, its variant. It reports
// false when either no longer exists.
func (c *Catalog) Resolve(productID domain.ID, variantID *domain.ID) (domain.Product, *domain.Variant, bool) {
	p, ok := c.Product(productID)
	if !ok {
		return domain.Product{}, nil, false
	}
	if variantID == nil || variantID.IsZero() {
		return p, nil, true
	}
	v, ok := p.Variant(*variantID)
	if !ok {
		return domain.Product{}, nil, false
	}
	return p, v, true
}

// Source hands out the current catalog snapshot.
type Source interface {
	Snapshot(ctx context.Context) (*Catalog, error)
}

type staticSource struct {
	catalog *Catalog
}

// Static wraps a fixed catalog as a Source.
func Static(c *Catalog) Source {
	return staticSource{catalog: c}
}

func (s staticSource) Snapshot(context.Context) (*Catalog, error) {
	return s.catalog, nil
}
