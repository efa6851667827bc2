package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func authRouter(apiKeys []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(apiKeys))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func TestAuth_OpenAccessWhenNoKeys(t *testing.T) {
	r := authRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("no configured keys means open access, got %d", w.Code)
	}
}

func TestAuth_MissingKey(t *testing.T) {
	r := authRouter([]string{"secret-key"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing key should 401, got %d", w.Code)
	}
}

func TestAuth_InvalidKey(t *testing.T) {
	r := authRouter([]string{"secret-key"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-API-Key", "wrong")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("invalid key should 401, got %d", w.Code)
	}
}

func TestAuth_HeaderStyles(t *testing.T) {
	r := authRouter([]string{"secret-key"})

	tests := []struct {
		name   string
		header string
		value  string
	}{
		{"x-api-key", "X-API-Key", "secret-key"},
		{"bearer", "Authorization", "Bearer secret-key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set(tt.header, tt.value)
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("valid key via %s should pass, got %d", tt.header, w.Code)
			}
		})
	}
}
