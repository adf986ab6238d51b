package app

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// tokenBucket — лимит запросов на IP в памяти процесса.
type tokenBucket struct {
	capacity int
	rate     int
	mu       sync.Mutex
	state    map[string]*bucket
	now      func() time.Time
	swept    time.Time
}

type bucket struct {
	tokens int
	last   time.Time
}

func newTokenBucket(perMinute int) *tokenBucket {
	return &tokenBucket{capacity: perMinute, rate: perMinute, state: make(map[string]*bucket), now: time.Now}
}

func (l *tokenBucket) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.allow(ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": msgTooManyRequests})
			return
		}
		c.Next()
	}
}

// idleAfter — за это время корзина заполняется целиком и неотличима от новой.
const idleAfter = time.Minute

func (l *tokenBucket) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.swept) >= idleAfter {
		l.sweep(now)
	}
	b, ok := l.state[key]
	if !ok {
		l.state[key] = &bucket{tokens: l.capacity - 1, last: now}
		return true
	}
	refill := int(now.Sub(b.last).Minutes() * float64(l.rate))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

func (l *tokenBucket) sweep(now time.Time) {
	for k, b := range l.state {
		if now.Sub(b.last) >= idleAfter {
			delete(l.state, k)
		}
	}
	l.swept = now
}
