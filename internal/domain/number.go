package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Number is a catalog numeric field exactly as received from upstream. It keeps the
// raw token so the catalog coercion policy, not the decoder, decides what a malformed
// value is worth. Decoding never fails.
type Number struct {
	raw   string
	valid bool
}

func NewNumber(v float64) Number {
	return Number{raw: strconv.FormatFloat(v, 'f', -1, 64), valid: true}
}

// RawNumber wraps an unparsed value, e.g. a TEXT column or a form field.
func RawNumber(raw string) Number {
	return Number{raw: raw, valid: true}
}

// Raw returns the raw token and whether the field was present and non-null.
func (n Number) Raw() (string, bool) {
	return n.raw, n.valid
}

func (n Number) IsNull() bool {
	return !n.valid
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(n.raw, 64); err == nil && json.Valid([]byte(n.raw)) {
		return []byte(n.raw), nil
	}
	return json.Marshal(n.raw)
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = Number{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			*n = Number{raw: s, valid: true}
			return nil
		}
	}
	*n = Number{raw: string(b), valid: true}
	return nil
}
