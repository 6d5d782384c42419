package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/banuch/logbook/internal/error/code"
	"github.com/banuch/logbook/internal/error/response"
)

// 简单的令牌桶限流器
type TokenBucket struct {
	rate       float64   // 每秒填充的令牌数
	capacity   int       // 桶的容量
	tokens     float64   // 当前令牌数
	lastRefill time.Time // 上次填充时间
	mu         sync.Mutex
}

// NewTokenBucket 创建新的令牌桶限流器
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow 尝试获取令牌
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	// 填充令牌
	tb.tokens += elapsed * tb.rate
	if tb.tokens > float64(tb.capacity) {
		tb.tokens = float64(tb.capacity)
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

var (
	ipLimiters   = make(map[string]*TokenBucket)
	ipLimitersMu sync.RWMutex
)

// getIPLimiter 获取或创建某个键的限流器
func getIPLimiter(key string, rate float64, burst int) *TokenBucket {
	ipLimitersMu.RLock()
	limiter, exists := ipLimiters[key]
	ipLimitersMu.RUnlock()

	if !exists {
		limiter = NewTokenBucket(rate, burst)
		ipLimitersMu.Lock()
		ipLimiters[key] = limiter
		ipLimitersMu.Unlock()
	}
	return limiter
}

// IPRateLimiter 按客户端IP限流
func IPRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := getIPLimiter(c.ClientIP(), rate, burst)
		if !limiter.Allow() {
			response.FailWithMessage(c, code.ErrTooManyRequests, "请求频率过高，请稍后再试", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginRateLimiter 登录接口限流，按IP加路径组合键
// 登录走bcrypt校验，单次成本高，限流阈值比普通接口更紧
func LoginRateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + c.Request.URL.Path
		limiter := getIPLimiter(key, 0.5, 5)
		if !limiter.Allow() {
			response.FailWithMessage(c, code.ErrTooManyRequests, "登录尝试过于频繁，请稍后再试", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// 定期清理长时间未活动的限流器
func init() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			cleanExpiredLimiters()
		}
	}()
}

// cleanExpiredLimiters 清理超过1小时未使用的限流器
func cleanExpiredLimiters() {
	cutoff := time.Now().Add(-1 * time.Hour)

	ipLimitersMu.Lock()
	defer ipLimitersMu.Unlock()
	for key, limiter := range ipLimiters {
		limiter.mu.Lock()
		idle := limiter.lastRefill.Before(cutoff)
		limiter.mu.Unlock()
		if idle {
			delete(ipLimiters, key)
		}
	}
}
