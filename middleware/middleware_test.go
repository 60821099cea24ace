package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"saubio/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func whoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"userID": c.GetString("userID"), "role": c.GetString("role")})
}

func TestJWTAuthMiddleware(t *testing.T) {
	router := gin.New()
	router.GET("/me", JWTAuthMiddleware(), whoAmI)

	token, err := utils.GenerateToken("u1", utils.RoleClient, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		target string
		header string
		status int
	}{
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Token " + token, http.StatusUnauthorized},
		{"garbage token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"valid header", "/me", "Bearer " + token, http.StatusOK},
		{"query token", "/me?access_token=" + token, "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestJWTAuthAdminMiddleware(t *testing.T) {
	router := gin.New()
	router.GET("/admin", JWTAuthAdminMiddleware(), whoAmI)

	clientToken, _ := utils.GenerateToken("u1", utils.RoleClient, time.Hour)
	adminToken, _ := utils.GenerateToken("ops@saubio.test", utils.RoleAdmin, time.Hour)

	call := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusForbidden, call(clientToken))
	assert.Equal(t, http.StatusOK, call(adminToken))
}

func rateLimitedRouter(t *testing.T, perMin int, trusted []string) *gin.Engine {
	t.Helper()
	router := gin.New()
	require.NoError(t, router.SetTrustedProxies(trusted))
	router.Use(rateLimit(newRateLimiterStore(perMin)))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func hit(router http.Handler, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit(t *testing.T) {
	router := rateLimitedRouter(t, 2, nil)

	codes := []int{
		hit(router, "203.0.113.7:4000", ""),
		hit(router, "203.0.113.7:4001", ""),
		hit(router, "203.0.113.7:4002", ""),
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	assert.Equal(t, http.StatusOK, hit(router, "198.51.100.1:4000", ""), "other clients keep their own budget")
}

func TestRateLimit_IgnoresForwardedForFromUntrustedPeers(t *testing.T) {
	router := rateLimitedRouter(t, 2, nil)

	codes := []int{
		hit(router, "203.0.113.7:4000", "10.1.1.1"),
		hit(router, "203.0.113.7:4000", "10.1.1.2"),
		hit(router, "203.0.113.7:4000", "10.1.1.3"),
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_UsesForwardedForBehindTrustedProxy(t *testing.T) {
	router := rateLimitedRouter(t, 1, []string{"10.0.0.0/8"})

	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.5:4000", "203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.5:4000", "203.0.113.7"))
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.5:4000", "198.51.100.1"))
}

func TestRequestLogger(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger(zap.NewNop()))
	router.GET("/", func(c *gin.Context) {
		_, ok := c.Get("logger")
		assert.True(t, ok)
		c.String(http.StatusOK, c.GetString("requestID"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Body.String())
}
