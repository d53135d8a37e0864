package orders

import "github.com/fjod/go_checkout/internal/domain"

// Contribution is one community kiosk contribution.
type Contribution struct {
	MemberID      string  `json:"member_id"`
	MemberName    string  `json:"member_name"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	Reference     string  `json:"reference,omitempty"`
	Notes         string  `json:"notes,omitempty"`
	ContributedAt string  `json:"contributed_at,omitempty"`
}

type ContributionReceipt struct {
	ID      domain.ID `json:"id,omitempty"`
	Message string    `json:"message,omitempty"`
}
