package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

type buildCartRequest struct {
	shopping.RankedSet
	Spec      *shopping.ShoppingSpec `json:"spec"`
	SessionID string                 `json:"sessionId"`
}

type addItemRequest struct {
	ProductURL string `json:"productUrl"`
	URL        string `json:"url"`
	SessionID  string `json:"sessionId"`
}

type addItemResponse struct {
	Cart shopping.Cart `json:"cart"`
	shopping.RankedSet
	Spec shopping.ShoppingSpec `json:"spec"`
}

type swapRequest struct {
	SessionID    string            `json:"sessionId"`
	Category     shopping.Category `json:"category"`
	NewProductID string            `json:"newProductId"`
	Cart         *shopping.Cart    `json:"cart"`
}

type optimizeBudgetRequest struct {
	Cart      shopping.Cart `json:"cart"`
	SessionID string        `json:"sessionId"`
}

type optimizeDeliveryRequest struct {
	Cart      shopping.Cart  `json:"cart"`
	Deadline  *shopping.Date `json:"deadline"`
	SessionID string         `json:"sessionId"`
}

// BuildCart assembles a cart from a client supplied ranking.
func (h *Handler) BuildCart(c *gin.Context) {
	var req buildCartRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	sess, httpErr := h.loadSession(ctx, req.SessionID)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}

	ranked := req.RankedSet
	if ranked.ByCategory == nil {
		ranked = shopping.NewRankedSet()
	}
	budget := defaultCartBudget
	if req.Spec != nil {
		budget = req.Spec.Constraints.Budget.Total
	}

	result := h.cartSvc.Build(ranked, budget)

	sess.Ranked = ranked
	if req.Spec != nil {
		sess.Spec = req.Spec
	}
	h.saveSession(ctx, sess)

	c.JSON(http.StatusOK, result)
}

// AddItem adds a user supplied product link to the cart.
func (h *Handler) AddItem(c *gin.Context) {
	var req addItemRequest
	if !bindJSON(c, &req) {
		return
	}
	url := strings.TrimSpace(req.ProductURL)
	if url == "" {
		url = strings.TrimSpace(req.URL)
	}
	if url == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "productUrl is required", nil))
		return
	}

	ctx := c.Request.Context()
	product, err := h.catalogSvc.CustomProduct(ctx, url)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}

	sess, httpErr := h.loadSession(ctx, req.SessionID)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}

	existing := sess.Ranked.ByCategory[shopping.CategoryCustom]
	custom := make([]shopping.ScoredProduct, 0, len(existing)+1)
	custom = append(custom, product)
	for _, sp := range existing {
		if sp.Product.ID != product.Product.ID {
			custom = append(custom, sp)
		}
	}
	sess.Ranked.Set(shopping.CategoryCustom, custom)

	budget := sess.Budget(defaultCustomBudget)
	result := h.cartSvc.Build(sess.Ranked, budget)
	h.saveSession(ctx, sess)

	spec := h.minimalSpec(budget)
	if sess.Spec != nil {
		spec = *sess.Spec
	}
	c.JSON(http.StatusOK, addItemResponse{Cart: result, RankedSet: sess.Ranked, Spec: spec})
}

// SwapItem replaces one category's selection.
func (h *Handler) SwapItem(c *gin.Context) {
	var req swapRequest
	if !bindJSON(c, &req) {
		return
	}
	if !req.Category.Valid() {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "unknown category: "+string(req.Category), nil))
		return
	}
	if strings.TrimSpace(req.NewProductID) == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "newProductId is required", nil))
		return
	}

	sess, httpErr := h.loadSession(c.Request.Context(), req.SessionID)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}

	current := req.Cart
	if current == nil {
		rebuilt := h.cartSvc.Build(sess.Ranked, sess.Budget(defaultCartBudget))
		current = &rebuilt
	}

	c.JSON(http.StatusOK, h.cartSvc.Swap(*current, req.Category, req.NewProductID, sess.Ranked))
}

// OptimizeBudget trades expensive selections for cheaper good ones.
func (h *Handler) OptimizeBudget(c *gin.Context) {
	var req optimizeBudgetRequest
	if !bindJSON(c, &req) {
		return
	}
	sess, httpErr := h.loadSession(c.Request.Context(), req.SessionID)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}
	c.JSON(http.StatusOK, h.cartSvc.OptimizeBudget(req.Cart, sess.Ranked))
}

// OptimizeDelivery swaps in selections that arrive by the deadline.
func (h *Handler) OptimizeDelivery(c *gin.Context) {
	var req optimizeDeliveryRequest
	if !bindJSON(c, &req) {
		return
	}
	sess, httpErr := h.loadSession(c.Request.Context(), req.SessionID)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}

	deadline := shopping.NewDate(h.now())
	if req.Deadline != nil && !req.Deadline.IsZero() {
		deadline = *req.Deadline
	}
	c.JSON(http.StatusOK, h.cartSvc.OptimizeDelivery(req.Cart, sess.Ranked, deadline))
}

func (h *Handler) minimalSpec(budget float64) shopping.ShoppingSpec {
	return shopping.ShoppingSpec{
		Scenario:    "custom",
		ItemsNeeded: []shopping.ItemSpec{},
		Constraints: shopping.Constraints{
			Budget:           shopping.Budget{Total: budget, Currency: "USD"},
			Size:             shopping.SizeNotApplicable,
			DeliveryDeadline: shopping.NewDate(h.now()),
			StylePreferences: []string{},
			BrandPreferences: []string{},
			ColorPreferences: []string{},
		},
	}
}
