package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Rate limit tiers
const (
	// Login and checkout writes
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// Everything else
	limitGeneral = rate.Limit(10)
	burstGeneral = 20
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client and tier.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewLimiter starts a background sweep of idle buckets. Call Stop to end it.
func NewLimiter() *Limiter {
	l := &Limiter{
		visitors: make(map[string]*visitor),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) get(key string, r rate.Limit, b int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(r, b)}
		l.visitors[key] = v
	}
	v.lastSeen = l.now()
	return v.limiter
}

func (l *Limiter) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, v := range l.visitors {
		if l.now().Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
		}
	}
}

// Middleware answers 429 once the client's bucket for the request tier is empty.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, burst, tier := resolveRateTier(c)

		identity := "ip:" + c.ClientIP()
		if deviceID := c.GetHeader("X-Device-ID"); deviceID != "" {
			identity = "device:" + deviceID
		}

		if !l.get(identity+":"+tier, limit, burst).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": http.StatusText(http.StatusTooManyRequests)})
			return
		}
		c.Next()
	}
}

func resolveRateTier(c *gin.Context) (rate.Limit, int, string) {
	if c.Request.Method == http.MethodPost {
		switch c.FullPath() {
		case "/admin/login", "/orders", "/reviews":
			return limitStrict, burstStrict, "strict"
		}
	}
	return limitGeneral, burstGeneral, "general"
}
