package checkout

import "github.com/yanqian/agentic-commerce/internal/domain/shopping"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

// UserInfo is the shipping and payment contact for an order.
type UserInfo struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
	Country      string `json:"country"`
	CardLastFour string `json:"cardLastFour"`
}

// RetailerStep is one retailer's share of the order.
type RetailerStep struct {
	Retailer           string              `json:"retailer"`
	Items              []shopping.CartItem `json:"items"`
	Subtotal           float64             `json:"subtotal"`
	ShippingCost       float64             `json:"shippingCost"`
	EstimatedDelivery  string              `json:"estimatedDelivery"`
	Status             string              `json:"status"`
	ConfirmationNumber *string             `json:"confirmationNumber"`
}

// Plan groups a cart by retailer.
type Plan struct {
	Steps     []RetailerStep `json:"steps"`
	Total     float64        `json:"total"`
	UserInfo  UserInfo       `json:"userInfo"`
	SessionID string         `json:"sessionId"`
}

// Result reports a simulated execution.
type Result struct {
	OrderID      string         `json:"orderId"`
	Success      bool           `json:"success"`
	Steps        []RetailerStep `json:"steps"`
	TotalCharged float64        `json:"totalCharged"`
	Message      string         `json:"message"`
}
