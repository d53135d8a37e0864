package domain

import "strings"

// Destination is the part of the address shipping rates depend on.
type Destination struct {
	Country string `json:"country"`
	State   string `json:"state"`
	City    string `json:"city"`
}

func (d Destination) Equal(other Destination) bool {
	return strings.EqualFold(strings.TrimSpace(d.Country), strings.TrimSpace(other.Country)) &&
		strings.EqualFold(strings.TrimSpace(d.State), strings.TrimSpace(other.State)) &&
		strings.EqualFold(strings.TrimSpace(d.City), strings.TrimSpace(other.City))
}

type ShippingMethod struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	EstimatedDays string `json:"estimated_days"`
}
