package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type productDetailsRequest struct {
	URL string `json:"url"`
}

// ProductDetails reads structured product data from a retailer page.
func (h *Handler) ProductDetails(c *gin.Context) {
	var req productDetailsRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "url is required", nil))
		return
	}
	c.JSON(http.StatusOK, h.catalogSvc.Details(c.Request.Context(), req.URL))
}
