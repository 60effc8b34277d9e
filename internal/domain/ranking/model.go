package ranking

import "github.com/yanqian/agentic-commerce/internal/domain/shopping"

// Discovery carries discovered candidates per category.
type Discovery struct {
	Order              []shopping.Category                      `json:"order,omitempty"`
	ProductsByCategory map[shopping.Category][]shopping.Product `json:"productsByCategory"`
}

// Request ranks every discovered category against a spec.
type Request struct {
	Discovery      Discovery                `json:"discoveryResults"`
	Spec           shopping.ShoppingSpec    `json:"spec"`
	LikedSnapshots []shopping.LikedSnapshot `json:"likedSnapshots,omitempty"`
	SessionID      string                   `json:"sessionId,omitempty"`
}

// Response is the ranked output returned to callers.
type Response struct {
	shopping.RankedSet
	Spec      shopping.ShoppingSpec `json:"spec"`
	SessionID string                `json:"sessionId,omitempty"`
}
