package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupLoginRateLimitRouter(rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.POST("/v1/auth/login", LoginRateLimitMiddleware(rps, burst, logger), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestLoginRateLimitMiddleware(t *testing.T) {
	t.Run("Success_WithinBurst", func(t *testing.T) {
		router := setupLoginRateLimitRouter(1, 3)

		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("Error_BurstExceeded", func(t *testing.T) {
		router := setupLoginRateLimitRouter(0.001, 2)

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
			req.RemoteAddr = "192.0.2.2:1234"
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.RemoteAddr = "192.0.2.2:1234"
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("Success_IndependentPerIP", func(t *testing.T) {
		router := setupLoginRateLimitRouter(0.001, 1)

		first := httptest.NewRecorder()
		firstReq := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		firstReq.RemoteAddr = "192.0.2.3:1234"
		router.ServeHTTP(first, firstReq)
		assert.Equal(t, http.StatusOK, first.Code)

		// The first IP is exhausted, a second IP is not
		exhausted := httptest.NewRecorder()
		exhaustedReq := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		exhaustedReq.RemoteAddr = "192.0.2.3:1234"
		router.ServeHTTP(exhausted, exhaustedReq)
		assert.Equal(t, http.StatusTooManyRequests, exhausted.Code)

		other := httptest.NewRecorder()
		otherReq := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		otherReq.RemoteAddr = "192.0.2.4:1234"
		router.ServeHTTP(other, otherReq)
		assert.Equal(t, http.StatusOK, other.Code)
	})
}
