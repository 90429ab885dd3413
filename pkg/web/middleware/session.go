package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol"
	jwth "github.com/hertz-contrib/jwt"

	"contact-book/pkg/common/config"
)

const (
	// IdentityKey 已登录账号 id 在 RequestContext 中的键
	IdentityKey = "account_id"
	nameClaim   = "name"
	// LoginPath 未登录访问受保护页面时跳转的地址
	LoginPath = "/user/login"
)

// SessionAccount 写入会话的账号信息
type SessionAccount struct {
	ID   uint
	Name string
}

// Sessions 登录会话：JWT 存放在 HttpOnly cookie 中
type Sessions struct {
	mw         *jwth.HertzJWTMiddleware
	cookieName string
	secure     bool
}

func NewSessions(cfg config.SessionConfig) (*Sessions, error) {
	s := &Sessions{
		cookieName: cfg.CookieName,
		secure:     cfg.SecureCookie,
	}

	mw, err := jwth.New(&jwth.HertzJWTMiddleware{
		Realm:       cfg.Realm,
		Key:         []byte(cfg.Secret),
		Timeout:     cfg.ExpireDuration,
		IdentityKey: IdentityKey,
		TokenLookup: "cookie: " + cfg.CookieName,
		TimeFunc:    time.Now,
		PayloadFunc: func(data interface{}) jwth.MapClaims {
			if a, ok := data.(SessionAccount); ok {
				return jwth.MapClaims{
					IdentityKey: a.ID,
					nameClaim:   a.Name,
				}
			}
			return jwth.MapClaims{}
		},
		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			return identityFromClaims(jwth.ExtractClaims(ctx, c))
		},
		Unauthorized: s.unauthorized,
	})
	if err != nil {
		return nil, fmt.Errorf("session middleware init failed: %w", err)
	}
	s.mw = mw
	return s, nil
}

// JSON 解码后数字为 float64
func identityFromClaims(claims jwth.MapClaims) uint {
	if id, ok := claims[IdentityKey].(float64); ok && id > 0 {
		return uint(id)
	}
	return 0
}

// Establish 签发会话并写入 cookie
func (s *Sessions) Establish(c *app.RequestContext, acct SessionAccount) error {
	token, expire, err := s.mw.TokenGenerator(acct)
	if err != nil {
		return err
	}
	maxAge := int(time.Until(expire).Seconds())
	c.SetCookie(s.cookieName, token, maxAge, "/", "", protocol.CookieSameSiteLaxMode, s.secure, true)
	return nil
}

// Clear 删除会话 cookie
func (s *Sessions) Clear(c *app.RequestContext) {
	c.SetCookie(s.cookieName, "", -1, "/", "", protocol.CookieSameSiteLaxMode, s.secure, true)
}

// Require 未登录时跳转到登录页
func (s *Sessions) Require() app.HandlerFunc {
	return s.mw.MiddlewareFunc()
}

// Optional 有合法会话时记录当前账号，否则按匿名继续
func (s *Sessions) Optional() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if len(c.Cookie(s.cookieName)) > 0 {
			claims, err := s.mw.GetClaimsFromJWT(ctx, c)
			if err != nil {
				hlog.CtxDebugf(ctx, "ignoring session cookie: %v", err)
			} else if id := identityFromClaims(claims); id != 0 {
				c.Set("JWT_PAYLOAD", claims)
				c.Set(IdentityKey, id)
			}
		}
		c.Next(ctx)
	}
}

func (s *Sessions) unauthorized(ctx context.Context, c *app.RequestContext, code int, message string) {
	hlog.CtxInfof(ctx, "session required path=%s: %s", c.Path(), message)
	if len(c.Cookie(s.cookieName)) > 0 {
		s.Clear(c)
	}
	c.Redirect(302, []byte(LoginPath))
}

// CurrentAccount 当前请求的登录账号
func CurrentAccount(ctx context.Context, c *app.RequestContext) (SessionAccount, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return SessionAccount{}, false
	}
	id, _ := v.(uint)
	if id == 0 {
		return SessionAccount{}, false
	}
	name, _ := jwth.ExtractClaims(ctx, c)[nameClaim].(string)
	return SessionAccount{ID: id, Name: name}, true
}
