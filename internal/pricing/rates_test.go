package pricing

import (
	"testing"

	"github.com/fjod/go_checkout/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMethodRate_Fee(t *testing.T) {
	m := MethodRate{ID: "standard", Base: 50, IncludedKg: 3, PerKg: 15}

	assert.True(t, dec("50").Equal(m.Fee(decimal.Zero)))
	assert.True(t, dec("50").Equal(m.Fee(dec("3"))))
	assert.True(t, dec("65").Equal(m.Fee(dec("3.1"))))
	assert.True(t, dec("80").Equal(m.Fee(dec("5"))))
}

func TestDefaultTable_Methods(t *testing.T) {
	table := DefaultTable()

	cebu := table.Methods(domain.Destination{Country: "Philippines", State: "Cebu", City: "Cebu City"})
	require.Len(t, cebu, 2)
	assert.Equal(t, "standard", cebu[0].ID)
	assert.Equal(t, "express", cebu[1].ID)

	davao := table.Methods(domain.Destination{Country: "Philippines", State: "Davao del Sur", City: "Davao City"})
	require.Len(t, davao, 1)
	assert.Equal(t, "standard", davao[0].ID)

	// matching ignores case and padding
	manila := table.Methods(domain.Destination{Country: " philippines", State: "METRO MANILA"})
	assert.Len(t, manila, 2)
}

func TestDefaultTable_Rate(t *testing.T) {
	table := DefaultTable()
	cebu := domain.Destination{Country: "Philippines", State: "Cebu", City: "Cebu City"}

	assert.True(t, dec("50").Equal(table.Rate(cebu, "standard", dec("3"))))
	assert.True(t, dec("160").Equal(table.Rate(cebu, "express", dec("2"))))

	davao := domain.Destination{Country: "Philippines", State: "Davao del Sur"}
	assert.True(t, table.Rate(davao, "express", dec("1")).IsZero(), "unavailable method")
}

func TestLoadTable(t *testing.T) {
	table, err := LoadTable("testdata/rates.yaml")
	require.NoError(t, err)

	makati := domain.Destination{Country: "Philippines", State: "Metro Manila", City: "Makati"}
	assert.True(t, table.Rate(makati, "standard", dec("10")).IsZero())
	assert.Len(t, table.Methods(makati), 1)

	pasig := domain.Destination{Country: "Philippines", State: "Metro Manila", City: "Pasig"}
	methods := table.Methods(pasig)
	require.Len(t, methods, 2)
	assert.Equal(t, domain.ShippingMethod{ID: "same-day", Name: "Same Day", Description: "Motorcycle courier", EstimatedDays: "same day"}, methods[1])
	assert.True(t, dec("60").Equal(table.Rate(pasig, "standard", dec("3.5"))))

	abroad := domain.Destination{Country: "Japan"}
	assert.True(t, dec("120").Equal(table.Rate(abroad, "standard", dec("2.2"))))
}

func TestLoadTable_Errors(t *testing.T) {
	_, err := LoadTable("testdata/missing.yaml")
	assert.Error(t, err)

	_, err = ParseTable([]byte("zones: ["))
	assert.Error(t, err)

	_, err = ParseTable([]byte("zones: []"))
	assert.Error(t, err)

	_, err = ParseTable([]byte(`
zones:
  - name: bad
    methods:
      - id: standard
        base: -1
`))
	assert.Error(t, err)

	_, err = ParseTable([]byte(`
zones:
  - name: dup
    methods:
      - id: standard
      - id: standard
`))
	assert.Error(t, err)
}

func TestTable_NoMatchingZone(t *testing.T) {
	table, err := NewTable(Zone{Name: "ph", Country: "Philippines", Methods: []MethodRate{{ID: "standard", Base: 10}}})
	require.NoError(t, err)

	abroad := domain.Destination{Country: "Japan"}
	assert.Empty(t, table.Methods(abroad))
	assert.True(t, table.Rate(abroad, "standard", dec("1")).IsZero())
	assert.False(t, HasMethod(table, abroad, "standard"))
	assert.True(t, HasMethod(table, domain.Destination{Country: "Philippines"}, "standard"))
}
