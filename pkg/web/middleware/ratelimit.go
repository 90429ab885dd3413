package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"golang.org/x/time/rate"

	"contact-book/pkg/common/config"
)

// visitorIdle 超过该时长未访问的客户端限流器会被回收
const visitorIdle = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按客户端 IP 的令牌桶限流
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	limit := rate.Inf
	if cfg.Rate > 0 {
		interval := cfg.Interval
		if interval <= 0 {
			interval = time.Second
		}
		limit = rate.Every(interval / time.Duration(cfg.Rate))
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.Rate
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		now:      time.Now,
	}
}

// Allow 消耗 key 对应的一个令牌
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > visitorIdle {
		rl.sweep(now)
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep 调用方需持有锁
func (rl *RateLimiter) sweep(now time.Time) {
	for k, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorIdle {
			delete(rl.visitors, k)
		}
	}
	rl.lastSweep = now
}

// RateLimitMiddleware 超出限制返回 429
func RateLimitMiddleware(rl *RateLimiter) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if !rl.Allow(ctx.ClientIP()) {
			hlog.CtxInfof(c, "[RATE LIMIT] ip=%s path=%s", ctx.ClientIP(), ctx.Path())
			ctx.AbortWithMsg("too many requests", 429)
			return
		}
		ctx.Next(c)
	}
}
