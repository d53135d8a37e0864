package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an opaque product or variant identifier. Upstream pages persist ids either
// as JSON strings or as JSON numbers; both decode to the same ID, and integer-looking
// ids are written back as numbers.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id ID) IsZero() bool {
	return id == ""
}

func (id ID) MarshalJSON() ([]byte, error) {
	if isCanonicalInt(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// IDPtr is a helper for optional variant ids.
func IDPtr(id ID) *ID {
	return &id
}

func isCanonicalInt(s string) bool {
	if s == "" || len(s) > 18 {
		return false
	}
	if s != "0" && (s[0] == '0' || (s[0] == '-' && (len(s) == 1 || s[1] == '0'))) {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}
