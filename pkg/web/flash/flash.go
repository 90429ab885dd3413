// Package flash 一次性提示消息：写入签名 cookie，下一次请求读取后清除
package flash

import (
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/golang-jwt/jwt/v5"
)

// Level 取值与 Bootstrap alert 的样式名一致
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "danger"
)

type Message struct {
	Level Level  `json:"l"`
	Text  string `json:"t"`
}

func Info(text string) Message    { return Message{Level: LevelInfo, Text: text} }
func Success(text string) Message { return Message{Level: LevelSuccess, Text: text} }
func Error(text string) Message   { return Message{Level: LevelError, Text: text} }

const (
	// pendingKey 本次请求已排队的消息
	pendingKey = "flash.pending"
	// takenKey 本次请求已读取过 cookie 中的消息
	takenKey = "flash.taken"
)

type flashClaims struct {
	Messages []Message `json:"msgs"`
	jwt.RegisteredClaims
}

type Store struct {
	key    []byte
	cookie string
	ttl    time.Duration
	secure bool
}

func NewStore(secret, cookieName string, ttl time.Duration, secure bool) *Store {
	return &Store{
		key:    []byte(secret),
		cookie: cookieName,
		ttl:    ttl,
		secure: secure,
	}
}

// Add 追加消息并写入响应 cookie；同一请求内多次调用会合并，
// 请求带来的尚未展示的消息保留在前面
func (s *Store) Add(c *app.RequestContext, msgs ...Message) {
	if len(msgs) == 0 {
		return
	}
	var pending []Message
	if v, ok := c.Get(pendingKey); ok {
		pending, _ = v.([]Message)
	} else if _, taken := c.Get(takenKey); !taken {
		pending = s.incoming(c)
	}
	pending = append(pending, msgs...)
	c.Set(pendingKey, pending)

	tok, err := s.sign(pending)
	if err != nil {
		hlog.Errorf("flash: sign failed: %v", err)
		return
	}
	c.SetCookie(s.cookie, tok, int(s.ttl.Seconds()), "/", "", protocol.CookieSameSiteLaxMode, s.secure, true)
}

// Take 读取上一次请求留下的消息并清除 cookie；签名无效或过期时丢弃
func (s *Store) Take(c *app.RequestContext) []Message {
	if _, ok := c.Get(takenKey); ok {
		return nil
	}
	c.Set(takenKey, true)
	if len(c.Cookie(s.cookie)) == 0 {
		return nil
	}
	// 本请求又排入了新消息时保留新 cookie
	if _, ok := c.Get(pendingKey); !ok {
		c.SetCookie(s.cookie, "", -1, "/", "", protocol.CookieSameSiteLaxMode, s.secure, true)
	}
	return s.incoming(c)
}

// incoming 请求 cookie 中的消息；签名无效或过期时丢弃
func (s *Store) incoming(c *app.RequestContext) []Message {
	raw := c.Cookie(s.cookie)
	if len(raw) == 0 {
		return nil
	}
	msgs, err := s.parse(string(raw))
	if err != nil {
		hlog.Debugf("flash: dropping cookie: %v", err)
		return nil
	}
	return msgs
}

func (s *Store) sign(msgs []Message) (string, error) {
	now := time.Now()
	cl := flashClaims{
		Messages: msgs,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(s.key)
}

func (s *Store) parse(tok string) ([]Message, error) {
	p, err := jwt.ParseWithClaims(tok, &flashClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Method.Alg())
		}
		return s.key, nil
	})
	if err != nil {
		return nil, err
	}
	cl, ok := p.Claims.(*flashClaims)
	if !ok || !p.Valid {
		return nil, errors.New("invalid flash token")
	}
	return cl.Messages, nil
}
