package middleware

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"contact-book/pkg/common/metrics"
)

// MetricsMiddleware 记录请求数与耗时，按注册的路由模板聚合
func MetricsMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if string(ctx.Path()) == "/metrics" {
			ctx.Next(c)
			return
		}

		done := metrics.TrackInFlight()
		start := time.Now()
		ctx.Next(c)
		done()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(string(ctx.Method()), route, ctx.Response.StatusCode(), time.Since(start))
	}
}
