package routes

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrUnknownRoute = errors.New("unknown route")
	ErrMissingParam = errors.New("missing route parameter")
)

const (
	OrderCreate        = "marketplace.orders.store"
	ContributionCreate = "kiosk.community.contributions.store"
)

// Table maps route names to URI templates such as "/m/{client}/orders".
type Table map[string]string

// Defaults holds the order and contribution endpoints.
func Defaults() Table {
	return Table{
		OrderCreate:        "/m/{client}/orders",
		ContributionCreate: "/kiosk/community/{client}/contributions",
	}
}

// URL substitutes every {param} of the named template. Values are path-escaped.
// Unused params are ignored.
func (t Table) URL(name string, params map[string]string) (string, error) {
	tmpl, ok := t[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}

	var b strings.Builder
	rest := tmpl
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("route %s: unterminated parameter in %q", name, tmpl)
		}
		end += open

		key := rest[open+1 : end]
		value, ok := params[key]
		if !ok || value == "" {
			return "", fmt.Errorf("%w: %s needs %q", ErrMissingParam, name, key)
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(value))
		rest = rest[end+1:]
	}
	return b.String(), nil
}
