package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const corsMaxAge = "600"

// corsPolicy lets the storefront frontends call the API with credentials.
// An empty origin list or a "*" entry opens the API to any origin, without
// credentials.
type corsPolicy struct {
	origins  map[string]struct{}
	wildcard bool
}

func newCORSPolicy(origins []string) corsPolicy {
	p := corsPolicy{origins: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
		switch o {
		case "":
		case "*":
			p.wildcard = true
		default:
			p.origins[o] = struct{}{}
		}
	}
	if len(p.origins) == 0 {
		p.wildcard = true
	}
	return p
}

// allowOrigin returns the Access-Control-Allow-Origin value for a request, or
// "" when the origin is not allowed.
func (p corsPolicy) allowOrigin(origin string) string {
	if origin != "" {
		if _, ok := p.origins[strings.ToLower(origin)]; ok {
			return origin
		}
	}
	if p.wildcard {
		return "*"
	}
	return ""
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	policy := newCORSPolicy(origins)
	return func(c *gin.Context) {
		headers := c.Writer.Header()
		headers.Add("Vary", "Origin")

		allowed := policy.allowOrigin(c.GetHeader("Origin"))
		if allowed != "" {
			headers.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				headers.Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}
		if allowed != "" {
			headers.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			requested := c.GetHeader("Access-Control-Request-Headers")
			if requested == "" {
				requested = "Content-Type"
			}
			headers.Set("Access-Control-Allow-Headers", requested)
			headers.Set("Access-Control-Max-Age", corsMaxAge)
		}
		c.AbortWithStatus(http.StatusNoContent)
	}
}
