package pricing

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fjod/go_checkout/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// RateTable prices shipping for one destination and method. Rate must be a pure,
// non-negative function of its inputs.
type RateTable interface {
	Rate(dest domain.Destination, methodID string, weight decimal.Decimal) decimal.Decimal
	Methods(dest domain.Destination) []domain.ShippingMethod
}

// MethodRate charges Base for the first IncludedKg and PerKg for every started
// kilogram above it.
type MethodRate struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	Description   string  `yaml:"description"`
	EstimatedDays string  `yaml:"estimated_days"`
	Base          float64 `yaml:"base"`
	IncludedKg    float64 `yaml:"included_kg"`
	PerKg         float64 `yaml:"per_kg"`
}

func (m MethodRate) Fee(weight decimal.Decimal) decimal.Decimal {
	fee := decimal.NewFromFloat(m.Base)
	excess := weight.Sub(decimal.NewFromFloat(m.IncludedKg))
	if excess.IsPositive() {
		fee = fee.Add(decimal.NewFromFloat(m.PerKg).Mul(excess.Ceil()))
	}
	return fee
}

func (m MethodRate) method() domain.ShippingMethod {
	return domain.ShippingMethod{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		EstimatedDays: m.EstimatedDays,
	}
}

// Zone applies to every destination matching its non-empty fields. Country "*"
// or an all-empty zone matches everywhere.
type Zone struct {
	Name    string       `yaml:"name"`
	Country string       `yaml:"country"`
	State   string       `yaml:"state"`
	City    string       `yaml:"city"`
	Methods []MethodRate `yaml:"methods"`
}

// specificity is -1 when the zone does not match dest.
func (z Zone) specificity(dest domain.Destination) int {
	score := 0
	for i, pair := range [][2]string{{z.Country, dest.Country}, {z.State, dest.State}, {z.City, dest.City}} {
		want := strings.TrimSpace(pair[0])
		if want == "" || want == "*" {
			continue
		}
		if !strings.EqualFold(want, strings.TrimSpace(pair[1])) {
			return -1
		}
		score = i + 1
	}
	return score
}

// Table is a RateTable backed by zones; the most specific matching zone wins
// (city over state over country over wildcard).
type Table struct {
	zones []Zone
}

type tableFile struct {
	Zones []Zone `yaml:"zones"`
}

func NewTable(zones ...Zone) (*Table, error) {
	for _, z := range zones {
		seen := map[string]bool{}
		for _, m := range z.Methods {
			if m.ID == "" {
				return nil, fmt.Errorf("zone %q: shipping method without id", z.Name)
			}
			if seen[m.ID] {
				return nil, fmt.Errorf("zone %q: duplicate shipping method %q", z.Name, m.ID)
			}
			seen[m.ID] = true
			if m.Base < 0 || m.IncludedKg < 0 || m.PerKg < 0 {
				return nil, fmt.Errorf("zone %q: method %q has negative rates", z.Name, m.ID)
			}
		}
	}
	return &Table{zones: zones}, nil
}

// LoadTable reads a YAML rate table from path.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate table: %w", err)
	}
	return ParseTable(data)
}

func ParseTable(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rate table: %w", err)
	}
	if len(file.Zones) == 0 {
		return nil, errors.New("rate table has no zones")
	}
	return NewTable(file.Zones...)
}

// DefaultTable holds the built-in Philippine rates: standard everywhere, express
// only within Metro Manila and Cebu.
func DefaultTable() *Table {
	standard := MethodRate{
		ID:            domain.DefaultShippingMethod,
		Name:          "Standard Delivery",
		Description:   "Door-to-door courier delivery",
		EstimatedDays: "3-7 business days",
		Base:          50,
		IncludedKg:    3,
		PerKg:         15,
	}
	express := MethodRate{
		ID:            "express",
		Name:          "Express Delivery",
		Description:   "Priority courier within the metro area",
		EstimatedDays: "1-2 business days",
		Base:          120,
		IncludedKg:    1,
		PerKg:         40,
	}
	t, _ := NewTable(
		Zone{Name: "default", Country: "*", Methods: []MethodRate{standard}},
		Zone{Name: "metro-manila", Country: "Philippines", State: "Metro Manila", Methods: []MethodRate{standard, express}},
		Zone{Name: "cebu", Country: "Philippines", State: "Cebu", Methods: []MethodRate{standard, express}},
	)
	return t
}

func (t *Table) zone(dest domain.Destination) (Zone, bool) {
	best, bestScore := Zone{}, -1
	for _, z := range t.zones {
		if s := z.specificity(dest); s > bestScore {
			best, bestScore = z, s
		}
	}
	return best, bestScore >= 0
}

func (t *Table) Methods(dest domain.Destination) []domain.ShippingMethod {
	z, ok := t.zone(dest)
	if !ok {
		return nil
	}
	methods := make([]domain.ShippingMethod, 0, len(z.Methods))
	for _, m := range z.Methods {
		methods = append(methods, m.method())
	}
	return methods
}

// Rate is zero when methodID is not offered for dest.
func (t *Table) Rate(dest domain.Destination, methodID string, weight decimal.Decimal) decimal.Decimal {
	z, ok := t.zone(dest)
	if !ok {
		return decimal.Zero
	}
	for _, m := range z.Methods {
		if m.ID == methodID {
			return m.Fee(weight)
		}
	}
	return decimal.Zero
}

// HasMethod reports whether methodID is offered for dest.
func HasMethod(rates RateTable, dest domain.Destination, methodID string) bool {
	for _, m := range rates.Methods(dest) {
		if m.ID == methodID {
			return true
		}
	}
	return false
}
