package cart

import "strings"

// DefaultSharedKey is the well-known key every page reads the cart from.
const DefaultSharedKey = "cart"

// Identity is whatever the caller knows about who owns the cart. Any field may
// be empty.
type Identity struct {
	TenantID string
	OwnerID  string
	UserID   string
}

// Keys is the ordered set of storage keys a cart may live under.
type Keys struct {
	Candidates []string
	Fallback   string
	Shared     string
}

// KeysFor lists candidate keys from most to least specific. A candidate is only
// produced when every identity part it needs is known.
func KeysFor(id Identity, sharedKey string) Keys {
	tenant := strings.TrimSpace(id.TenantID)
	owner := strings.TrimSpace(id.OwnerID)
	user := strings.TrimSpace(id.UserID)
	if sharedKey == "" {
		sharedKey = DefaultSharedKey
	}

	var candidates []string
	if tenant != "" && owner != "" && user != "" {
		candidates = append(candidates, "cart:"+tenant+":"+owner+":"+user)
	}
	if tenant != "" && user != "" {
		candidates = append(candidates, "cart:"+tenant+":"+user)
		candidates = append(candidates, "cart_"+tenant+"_"+user)
	}
	if tenant != "" {
		candidates = append(candidates, "cart:"+tenant+":guest")
	}

	fallback := []string{"cart"}
	for _, part := range []string{tenant, user} {
		if part != "" {
			fallback = append(fallback, part)
		}
	}
	fallback = append(fallback, "guest")

	return Keys{
		Candidates: candidates,
		Fallback:   strings.Join(fallback, ":"),
		Shared:     sharedKey,
	}
}

// Primary is the key a fresh cart is written to when nothing is persisted yet.
func (k Keys) Primary() string {
	if len(k.Candidates) > 0 {
		return k.Candidates[0]
	}
	return k.Fallback
}

// All returns every key the cart may occupy, deduplicated, in probe order.
func (k Keys) All() []string {
	seen := make(map[string]struct{}, len(k.Candidates)+2)
	all := make([]string, 0, len(k.Candidates)+2)
	for _, key := range append(append([]string{}, k.Candidates...), k.Fallback, k.Shared) {
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		all = append(all, key)
	}
	return all
}
