package domain

// Product is a read-only catalog entry. Numeric fields are kept as received and
// resolved through the catalog coercion policy.
type Product struct {
	ID            ID        `json:"id"`
	Name          string    `json:"name"`
	Price         Number    `json:"price"`
	StockQuantity Number    `json:"stock_quantity"`
	Weight        Number    `json:"weight"`
	Variants      []Variant `json:"variants,omitempty"`
}

// Variant overrides price and weight of its product when those are set.
type Variant struct {
	ID            ID         `json:"id"`
	Price         Number     `json:"price"`
	StockQuantity Number     `json:"stock_quantity"`
	Weight        Number     `json:"weight"`
	Attributes    Attributes `json:"attributes"`
}

func (p Product) Variant(id ID) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}
