package domain

// OrderItem is one resolved line of an order submission.
type OrderItem struct {
	ProductID   ID         `json:"product_id"`
	VariantID   *ID        `json:"variant_id"`
	Attributes  Attributes `json:"attributes"`
	Quantity    int        `json:"quantity"`
	Price       float64    `json:"price"`
	ShippingFee float64    `json:"shipping_fee"`
}

// OrderSubmission is the payload sent to the order-creation endpoint. All money
// values are already rounded to cents.
type OrderSubmission struct {
	CustomerName   string      `json:"customer_name"`
	CustomerEmail  string      `json:"customer_email"`
	CustomerPhone  string      `json:"customer_phone"`
	ShippingAddr   string      `json:"shipping_address"`
	BillingAddr    string      `json:"billing_address"`
	Items          []OrderItem `json:"order_items"`
	Subtotal       float64     `json:"subtotal"`
	TaxAmount      float64     `json:"tax_amount"`
	ShippingFee    float64     `json:"shipping_fee"`
	ServiceFee     float64     `json:"service_fee"`
	DiscountAmount float64     `json:"discount_amount"`
	TotalAmount    float64     `json:"total_amount"`
	PaymentMethod  string      `json:"payment_method"`
	Notes          string      `json:"notes"`
	ClientID       string      `json:"client_id"`
	ContactID      string      `json:"contact_id,omitempty"`
	ShippingMethod string      `json:"shipping_method"`
	Country        string      `json:"country"`
	State          string      `json:"state"`
	City           string      `json:"city"`
	PostalCode     string      `json:"postal_code"`
}

// OrderReceipt is what the order endpoint returns on success. All fields are optional.
type OrderReceipt struct {
	ID          ID     `json:"id,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
	Message     string `json:"message,omitempty"`
}
