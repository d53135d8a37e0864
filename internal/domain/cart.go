package domain

// CartLine is one product (and optional variant) with its quantity.
type CartLine struct {
	ProductID ID  `json:"productId"`
	VariantID *ID `json:"variantId"`
	Quantity  int `json:"quantity"`
}

func (l CartLine) Key() LineKey {
	return NewLineKey(l.ProductID, l.VariantID)
}

// LineKey identifies a cart line. A cart holds at most one line per key.
type LineKey struct {
	ProductID ID
	VariantID ID
}

func NewLineKey(productID ID, variantID *ID) LineKey {
	k := LineKey{ProductID: productID}
	if variantID != nil {
		k.VariantID = *variantID
	}
	return k
}

// CartSnapshot is the full set of lines plus the storage key it was loaded from.
// Only Lines are persisted.
type CartSnapshot struct {
	Key   string
	Lines []CartLine
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

func (s CartSnapshot) Find(productID ID, variantID *ID) (int, bool) {
	key := NewLineKey(productID, variantID)
	for i, line := range s.Lines {
		if line.Key() == key {
			return i, true
		}
	}
	return -1, false
}

// ItemCount is the total quantity across lines.
func (s CartSnapshot) ItemCount() int {
	n := 0
	for _, line := range s.Lines {
		n += line.Quantity
	}
	return n
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (s CartSnapshot) Clone() CartSnapshot {
	out := CartSnapshot{Key: s.Key}
	if s.Lines != nil {
		out.Lines = make([]CartLine, len(s.Lines))
		for i, line := range s.Lines {
			out.Lines[i] = line
			if line.VariantID != nil {
				out.Lines[i].VariantID = IDPtr(*line.VariantID)
			}
		}
	}
	return out
}
