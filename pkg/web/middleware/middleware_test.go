package middleware

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-book/pkg/common/config"
)

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{Rate: 2, Burst: 2, Interval: time.Second})
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	// 不同客户端互不影响
	assert.True(t, rl.Allow("5.6.7.8"))

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))

	// 长时间未访问的客户端被回收
	now = now.Add(2 * visitorIdle)
	rl.Allow("9.9.9.9")
	assert.Len(t, rl.visitors, 1)
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{})
	for i := 0; i < 100; i++ {
		require.True(t, rl.Allow("k"))
	}
}

func TestSecurityCheck(t *testing.T) {
	h := server.New()
	h.Use(SecurityCheckMiddleware(config.SecurityConfig{
		MaxBodySize:    8,
		AllowedMethods: []string{"GET", "POST"},
	}))
	ok := func(ctx context.Context, c *app.RequestContext) { c.String(200, "ok") }
	h.GET("/x", ok)
	h.POST("/x", ok)
	h.PUT("/x", ok)

	w := ut.PerformRequest(h.Engine, "GET", "/x", nil)
	assert.Equal(t, 200, w.Code)

	w = ut.PerformRequest(h.Engine, "PUT", "/x", nil)
	assert.Equal(t, 405, w.Code)

	w = ut.PerformRequest(h.Engine, "POST", "/x", &ut.Body{Body: strings.NewReader("0123456789"), Len: 10})
	assert.Equal(t, 413, w.Code)
}

func TestLoggerSetsRequestID(t *testing.T) {
	h := server.New()
	h.Use(LoggerMiddleware())
	h.GET("/x", func(ctx context.Context, c *app.RequestContext) { c.String(200, RequestID(c)) })

	w := ut.PerformRequest(h.Engine, "GET", "/x", nil)
	rid := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, rid)
	assert.Equal(t, rid, w.Body.String())

	w = ut.PerformRequest(h.Engine, "GET", "/x", nil, ut.Header{Key: RequestIDHeader, Value: "abc"})
	assert.Equal(t, "abc", w.Body.String())
}

func sessionCookie(t *testing.T, c *app.RequestContext, name string) string {
	t.Helper()
	ck := protocol.AcquireCookie()
	defer protocol.ReleaseCookie(ck)
	ck.SetKey(name)
	require.True(t, c.Response.Header.Cookie(ck))
	return string(ck.Value())
}

func TestSessions(t *testing.T) {
	s, err := NewSessions(config.Default().Middleware.Session)
	require.NoError(t, err)

	c := ut.CreateUtRequestContext("POST", "/user/login", nil)
	require.NoError(t, s.Establish(c, SessionAccount{ID: 7, Name: "alice"}))
	token := sessionCookie(t, c, "session")
	require.NotEmpty(t, token)

	h := server.New()
	h.Use(s.Optional())
	h.GET("/whoami", func(ctx context.Context, c *app.RequestContext) {
		if acct, ok := CurrentAccount(ctx, c); ok {
			c.String(200, acct.Name)
			return
		}
		c.String(200, "anonymous")
	})
	h.GET("/private", s.Require(), func(ctx context.Context, c *app.RequestContext) {
		acct, _ := CurrentAccount(ctx, c)
		c.String(200, "hello %d", acct.ID)
	})

	cookie := ut.Header{Key: "Cookie", Value: "session=" + token}

	w := ut.PerformRequest(h.Engine, "GET", "/whoami", nil)
	assert.Equal(t, "anonymous", w.Body.String())
	w = ut.PerformRequest(h.Engine, "GET", "/whoami", nil, cookie)
	assert.Equal(t, "alice", w.Body.String())
	w = ut.PerformRequest(h.Engine, "GET", "/whoami", nil, ut.Header{Key: "Cookie", Value: "session=garbage"})
	assert.Equal(t, "anonymous", w.Body.String())

	w = ut.PerformRequest(h.Engine, "GET", "/private", nil)
	assert.Equal(t, 302, w.Code)
	assert.True(t, strings.HasSuffix(w.Header().Get("Location"), LoginPath))

	w = ut.PerformRequest(h.Engine, "GET", "/private", nil, cookie)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "hello 7", w.Body.String())
}
