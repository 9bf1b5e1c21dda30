package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		want           bool
	}{
		{"exact match", "http://localhost:3000", []string{"http://localhost:3000"}, true},
		{"wildcard match", "chrome-extension://abcdefg12345", []string{"chrome-extension://*"}, true},
		{"second entry matches", "http://localhost:3000", []string{"chrome-extension://*", "http://localhost:3000"}, true},
		{"no match", "http://evil.com", []string{"chrome-extension://*"}, false},
		{"port differs", "http://localhost:3001", []string{"http://localhost:3000"}, false},
		{"empty origin", "", []string{"chrome-extension://*"}, false},
		{"empty allowed list", "http://localhost:3000", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isAllowedOrigin(tt.origin, tt.allowedOrigins))
		})
	}
}

func newMiddlewareRouter(middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(middleware...)
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return router
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		origin     string
		method     string
		wantStatus int
		wantCORS   bool
	}{
		{"allowed origin GET", "http://localhost:3000", http.MethodGet, http.StatusOK, true},
		{"allowed origin preflight", "chrome-extension://abc", http.MethodOptions, http.StatusNoContent, true},
		{"disallowed origin", "http://evil.com", http.MethodGet, http.StatusOK, false},
		{"no origin header", "", http.MethodGet, http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newMiddlewareRouter(CORSMiddleware([]string{"http://localhost:3000", "chrome-extension://*"}))

			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCORS {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
				assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
				assert.NotEmpty(t, w.Header().Get("Access-Control-Max-Age"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	router := newMiddlewareRouter(RequestIDMiddleware())

	t.Run("mints a uuid", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		_, err := uuid.Parse(w.Header().Get(requestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(requestIDHeader, "trace-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "trace-123", w.Header().Get(requestIDHeader))
	})
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	newMiddlewareRouter(SecurityHeadersMiddleware()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware(), RecoveryMiddleware(zerolog.Nop()))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, msgInternal, body.Error)
	assert.False(t, body.Timestamp.IsZero())
}

func TestIPRateLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewIPRateLimiter(3, 3*time.Minute)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"), "buckets are per IP")

	// One token refills every window/limit
	now = now.Add(time.Minute)
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	now = now.Add(time.Hour)
	limiter.visitors["10.0.0.2"].lastSeen = now.Add(-2 * time.Hour)
	assert.Equal(t, 1, limiter.Prune(time.Hour))
	assert.Equal(t, 1, limiter.Len())
}

func TestRateLimitMiddleware(t *testing.T) {
	router := newMiddlewareRouter(RateLimitMiddleware(NewIPRateLimiter(2, time.Hour)))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "192.0.2.10:5555"
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
