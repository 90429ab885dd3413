package middleware

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/hertz-contrib/cors"

	"contact-book/pkg/common/config"
	"contact-book/pkg/web/view"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID 当前请求的追踪 id
func RequestID(ctx *app.RequestContext) string {
	return ctx.GetString(requestIDKey)
}

// LoggerMiddleware 请求日志，附带 request id 和 handler 通过 c.Error 记录的内部错误
func LoggerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()

		rid := string(ctx.GetHeader(RequestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx.Set(requestIDKey, rid)
		ctx.Header(RequestIDHeader, rid)

		ctx.Next(c) // 放行到后续处理器
		latency := time.Since(start)

		hlog.CtxInfof(c, "| %3d | %13v | %15s | %-7s | %s | rid=%s",
			ctx.Response.StatusCode(),
			latency,
			ctx.ClientIP(),
			ctx.Method(),
			ctx.Path(),
			rid,
		)
		if len(ctx.Errors) > 0 {
			hlog.CtxErrorf(c, "rid=%s %s", rid, strings.TrimSpace(ctx.Errors.String()))
		}
	}
}

/*
	启动时指定环境变量
	export APP_ENV=production
	go run main.go
*/

// RecoveryMiddleware 捕获 panic 并渲染错误页；非生产环境展示 panic 内容
func RecoveryMiddleware(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				stack := string(debug.Stack())
				hlog.CtxErrorf(c, "[PANIC RECOVERED] rid=%s %v\n%s", RequestID(ctx), err, stack)

				msg := "Something went wrong on our side."
				if !cfg.IsProd() {
					msg = fmt.Sprintf("panic: %v", err)
				}
				ctx.HTML(500, "error", view.Page{
					Title: "Error",
					Body:  ErrorBody{Status: 500, Message: msg},
				})
				ctx.Abort()
			}
		}()
		ctx.Next(c)
	}
}

// ErrorBody 错误页数据
type ErrorBody struct {
	Status  int
	Message string
}

// CORSMiddleware 跨域配置
func CORSMiddleware(corsConfig config.CORSConfig) app.HandlerFunc {
	return cors.New(
		cors.Config{
			AllowOrigins:     corsConfig.AllowOrigins,
			AllowMethods:     corsConfig.AllowMethods,
			AllowHeaders:     corsConfig.AllowHeaders,
			ExposeHeaders:    corsConfig.ExposeHeaders,
			AllowCredentials: corsConfig.AllowCredentials,
			MaxAge:           corsConfig.MaxAge,
		},
	)
}

// TimeoutMiddleware 为后续处理器设置截止时间，存储层调用随之取消
func TimeoutMiddleware(seconds int) app.HandlerFunc {
	timeout := time.Duration(seconds) * time.Second
	return func(c context.Context, ctx *app.RequestContext) {
		if timeout <= 0 {
			ctx.Next(c)
			return
		}
		timeoutCtx, cancel := context.WithTimeout(c, timeout)
		defer cancel()

		ctx.Next(timeoutCtx)

		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			hlog.CtxWarnf(c, "request timeout path=%s rid=%s", ctx.Path(), RequestID(ctx))
		}
	}
}

// SecurityCheckMiddleware 请求体大小与 HTTP 方法校验
func SecurityCheckMiddleware(sec config.SecurityConfig) app.HandlerFunc {
	allowed := make(map[string]bool, len(sec.AllowedMethods))
	for _, m := range sec.AllowedMethods {
		allowed[strings.ToUpper(m)] = true
	}

	return func(c context.Context, ctx *app.RequestContext) {
		// 防护机制1：请求体大小限制
		if sec.MaxBodySize > 0 && int64(ctx.Request.Header.ContentLength()) > sec.MaxBodySize {
			securityResponse(ctx, 413, "request body exceeds max size")
			return
		}

		// 防护机制2：检查HTTP方法
		if len(allowed) > 0 && !allowed[string(ctx.Method())] {
			securityResponse(ctx, 405, "method not allowed")
			return
		}

		ctx.Next(c)
	}
}

// 安全响应统一处理
func securityResponse(ctx *app.RequestContext, status int, msg string) {
	hlog.Warnf("SecurityAlert[%d]: %s method=%s path=%s", status, msg, ctx.Method(), ctx.Path())
	ctx.AbortWithMsg(msg, status)
}
