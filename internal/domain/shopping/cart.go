package shopping

// CartItem is one category's selection plus the alternatives kept for swaps.
type CartItem struct {
	Category     Category        `json:"category"`
	Selected     ScoredProduct   `json:"selected"`
	Alternatives []ScoredProduct `json:"alternatives"`
}

// Cart is the assembled basket. BudgetRemaining is negative when over budget.
type Cart struct {
	Items             []CartItem `json:"items"`
	TotalPrice        float64    `json:"totalPrice"`
	BudgetRemaining   float64    `json:"budgetRemaining"`
	RetailersInvolved []string   `json:"retailersInvolved"`
	AllWithinDeadline bool       `json:"allWithinDeadline"`
}

// Budget reconstructs the budget the cart was computed against.
func (c Cart) Budget() float64 {
	return c.TotalPrice + c.BudgetRemaining
}
