package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/solvewatch/models"
)

// callerKey is the context key under which Auth records the authenticated
// caller's API key. RateLimit uses it as the caller's identity.
const callerKey = "solvewatch_caller"

// Auth returns API-key authentication middleware. Keys arrive either as
// an X-API-Key header or as an Authorization bearer token. With no keys
// configured the endpoint group is open and the middleware does nothing.
func Auth(apiKeys []string) gin.HandlerFunc {
	valid := make(map[string]bool, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			valid[k] = true
		}
	}
	if len(valid) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := credentialFrom(c)
		switch {
		case key == "":
			rejectUnauthorized(c, "missing API key: send X-API-Key or Authorization: Bearer <key>")
		case !valid[key]:
			rejectUnauthorized(c, "unrecognized API key")
		default:
			c.Set(callerKey, key)
			c.Next()
		}
	}
}

// credentialFrom pulls the API key out of the request, X-API-Key winning
// over a bearer token when both are present.
func credentialFrom(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return token
	}
	return ""
}

func rejectUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ClassifyResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeUnauthorized,
			Message: msg,
		},
	})
}
