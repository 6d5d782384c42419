package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTokenBucket_BurstThenExhausted(t *testing.T) {
	tb := NewTokenBucket(0.0001, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "request %d within burst should pass", i)
	}
	assert.False(t, tb.Allow())
}

func TestIPRateLimiter_Returns429WhenExhausted(t *testing.T) {
	r := gin.New()
	r.GET("/limited", IPRateLimiter(0.0001, 2), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = "192.0.2.10:12345"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}
