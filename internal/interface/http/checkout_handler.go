package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/agentic-commerce/internal/domain/checkout"
	"github.com/yanqian/agentic-commerce/internal/domain/session"
	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

type checkoutPlanRequest struct {
	Cart      shopping.Cart     `json:"cart"`
	UserInfo  checkout.UserInfo `json:"userInfo"`
	SessionID string            `json:"sessionId"`
}

// PlanCheckout groups the cart into per-retailer orders.
func (h *Handler) PlanCheckout(c *gin.Context) {
	var req checkoutPlanRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.checkoutSvc.Plan(req.Cart, req.UserInfo, session.NormalizeID(req.SessionID))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ExecuteCheckout places every retailer order in a plan.
func (h *Handler) ExecuteCheckout(c *gin.Context) {
	var plan checkout.Plan
	if !bindJSON(c, &plan) {
		return
	}
	result, err := h.checkoutSvc.Execute(c.Request.Context(), plan)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}
