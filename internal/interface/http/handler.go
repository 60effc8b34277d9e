package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/agentic-commerce/internal/domain/cart"
	"github.com/yanqian/agentic-commerce/internal/domain/catalog"
	"github.com/yanqian/agentic-commerce/internal/domain/checkout"
	"github.com/yanqian/agentic-commerce/internal/domain/discovery"
	"github.com/yanqian/agentic-commerce/internal/domain/explainer"
	"github.com/yanqian/agentic-commerce/internal/domain/intent"
	"github.com/yanqian/agentic-commerce/internal/domain/ranking"
	"github.com/yanqian/agentic-commerce/internal/domain/session"
	"github.com/yanqian/agentic-commerce/pkg/util"
)

const (
	// defaultCartBudget applies when a cart is built without a spec.
	defaultCartBudget = 400.0
	// defaultCustomBudget applies when a user adds a link before any spec exists.
	defaultCustomBudget = 1000.0
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	intentSvc    intent.Service
	discoverySvc discovery.Service
	rankingSvc   ranking.Service
	cartSvc      cart.Service
	explainerSvc explainer.Service
	catalogSvc   catalog.Service
	checkoutSvc  checkout.Service
	sessions     session.Store
	logger       *slog.Logger
	now          func() time.Time
}

// NewHandler constructs the root HTTP handler.
func NewHandler(
	intentSvc intent.Service,
	discoverySvc discovery.Service,
	rankingSvc ranking.Service,
	cartSvc cart.Service,
	explainerSvc explainer.Service,
	catalogSvc catalog.Service,
	checkoutSvc checkout.Service,
	sessions session.Store,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		intentSvc:    intentSvc,
		discoverySvc: discoverySvc,
		rankingSvc:   rankingSvc,
		cartSvc:      cartSvc,
		explainerSvc: explainerSvc,
		catalogSvc:   catalogSvc,
		checkoutSvc:  checkoutSvc,
		sessions:     sessions,
		logger:       logger.With("component", "http.handler"),
		now:          util.NowUTC,
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) loadSession(ctx context.Context, id string) (session.Session, *HTTPError) {
	sess, err := session.Load(ctx, h.sessions, id)
	if err != nil {
		return session.Session{}, NewHTTPError(http.StatusServiceUnavailable, "session_unavailable", "session store unavailable", err)
	}
	return sess, nil
}

func (h *Handler) saveSession(ctx context.Context, sess session.Session) {
	sess.UpdatedAt = h.now()
	if err := h.sessions.Put(ctx, sess); err != nil {
		// The response is still useful; later calls fall back to an empty session.
		h.logger.Error("session save failed", "session_id", sess.ID, "error", err)
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return false
	}
	return true
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
