package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/agentic-commerce/internal/domain/explainer"
	"github.com/yanqian/agentic-commerce/internal/domain/ranking"
	"github.com/yanqian/agentic-commerce/internal/domain/session"
	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
	"github.com/yanqian/agentic-commerce/pkg/metrics"
)

const (
	intentKindSpec          = "spec"
	intentKindClarification = "clarification"
)

type intentRequest struct {
	Message string `json:"message"`
}

// intentResponse is a tagged union: exactly one of Spec or Question is set.
type intentResponse struct {
	Kind     string                       `json:"kind"`
	Spec     *shopping.ShoppingSpec       `json:"spec,omitempty"`
	Question *shopping.ClarifyingQuestion `json:"question,omitempty"`
	Usage    *metrics.TokenUsage          `json:"usage,omitempty"`
}

type discoverRequest struct {
	Spec      shopping.ShoppingSpec `json:"spec"`
	SessionID string                `json:"sessionId"`
}

type discoverResponse struct {
	ranking.Discovery
	SessionID string `json:"sessionId"`
}

type explainRequest struct {
	SessionID string            `json:"sessionId"`
	Category  shopping.Category `json:"category"`
	ProductID string            `json:"productId"`
}

// ParseIntent turns a free-text message into a spec or a clarifying question.
func (h *Handler) ParseIntent(c *gin.Context) {
	var req intentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.intentSvc.Parse(c.Request.Context(), req.Message)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}

	resp := intentResponse{Spec: result.Spec, Question: result.Question}
	if result.Question != nil {
		resp.Kind = intentKindClarification
	} else {
		resp.Kind = intentKindSpec
	}
	if !result.Usage.IsZero() {
		usage := result.Usage
		resp.Usage = &usage
	}
	c.JSON(http.StatusOK, resp)
}

// Discover searches every requested category and remembers the spec.
func (h *Handler) Discover(c *gin.Context) {
	var req discoverRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.Spec.ItemsNeeded) == 0 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "spec.itemsNeeded cannot be empty", nil))
		return
	}
	for _, item := range req.Spec.ItemsNeeded {
		if !item.Category.Valid() {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "unknown category: "+string(item.Category), nil))
			return
		}
	}

	ctx := c.Request.Context()
	sess, httpErr := h.loadSession(ctx, req.SessionID)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}

	results := h.discoverySvc.Discover(ctx, req.Spec)

	spec := req.Spec
	sess.Spec = &spec
	h.saveSession(ctx, sess)

	c.JSON(http.StatusOK, discoverResponse{Discovery: results, SessionID: sess.ID})
}

// Rank scores discovered products and stores the ranking for later cart edits.
func (h *Handler) Rank(c *gin.Context) {
	var req ranking.Request
	if !bindJSON(c, &req) {
		return
	}
	if len(req.Spec.ItemsNeeded) == 0 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "spec.itemsNeeded cannot be empty", nil))
		return
	}

	ctx := c.Request.Context()
	req.SessionID = session.NormalizeID(req.SessionID)
	sess, httpErr := h.loadSession(ctx, req.SessionID)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}

	resp := h.rankingSvc.Rank(req)
	resp.SessionID = sess.ID

	spec := resp.Spec
	sess.Spec = &spec
	sess.Ranked = resp.RankedSet
	h.saveSession(ctx, sess)

	c.JSON(http.StatusOK, resp)
}

// Explain describes why a ranked product scored the way it did.
func (h *Handler) Explain(c *gin.Context) {
	var req explainRequest
	if !bindJSON(c, &req) {
		return
	}
	if !req.Category.Valid() {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "unknown category: "+string(req.Category), nil))
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "productId is required", nil))
		return
	}

	ctx := c.Request.Context()
	sess, httpErr := h.loadSession(ctx, req.SessionID)
	if httpErr != nil {
		abortWithError(c, httpErr)
		return
	}

	resp := h.explainerSvc.Explain(ctx, explainer.Request{
		Category:  req.Category,
		ProductID: req.ProductID,
		Ranked:    sess.Ranked.ByCategory[req.Category],
		Spec:      sess.Spec,
	})
	c.JSON(http.StatusOK, resp)
}
