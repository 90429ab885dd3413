package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"

	"contact-book/pkg/common/config"
	"contact-book/pkg/common/metrics"
	accountsvc "contact-book/pkg/core/account/service"
	contactsvc "contact-book/pkg/core/contact/service"
	"contact-book/pkg/web/flash"
	"contact-book/pkg/web/handler"
	"contact-book/pkg/web/middleware"
	"contact-book/pkg/web/view"
)

// Services 路由依赖的业务服务
type Services struct {
	Accounts *accountsvc.Service
	Contacts *contactsvc.Service
	// DB 健康检查使用；内存存储时为 nil
	DB handler.Pinger
}

// RegisterAPIs 注册页面、实时校验与运维接口
func RegisterAPIs(h *server.Hertz, cfg *config.Config, svc Services) error {
	sessions, err := middleware.NewSessions(cfg.Middleware.Session)
	if err != nil {
		return fmt.Errorf("init sessions: %w", err)
	}
	flashes := flash.NewStore(
		cfg.Middleware.Session.Secret,
		cfg.Flash.CookieName,
		cfg.Flash.TTL,
		cfg.Middleware.Session.SecureCookie,
	)
	limiter := middleware.NewRateLimiter(cfg.Middleware.RateLimit)
	rateLimited := middleware.RateLimitMiddleware(limiter)

	// 初始化Handler实例
	healthHandler := handler.NewHealthCheckHandler(cfg.Database.Driver, svc.DB)
	accountHandler := handler.NewAccountHandler(svc.Accounts, sessions, flashes)
	contactHandler := handler.NewContactHandler(svc.Contacts, flashes)

	h.SetHTMLTemplate(view.Templates())

	// 注册全局中间件（按执行顺序）
	h.Use(
		middleware.RecoveryMiddleware(cfg),
		middleware.LoggerMiddleware(),
		middleware.MetricsMiddleware(),
		middleware.SecurityCheckMiddleware(cfg.Middleware.Security),
		middleware.TimeoutMiddleware(cfg.Middleware.Timeout.RequestTimeout),
		middleware.CORSMiddleware(cfg.Middleware.CORS),
		sessions.Optional(),
	)

	// 运维接口
	h.GET("/health", healthHandler.AdvancedHealthCheck)
	h.GET("/metrics", wrapHTTPHandler(metrics.Handler()))

	h.GET("/", contactHandler.Index)

	contactGroup := h.Group("/contacts")
	{
		contactGroup.GET("", contactHandler.List)
		contactGroup.GET("/new", contactHandler.NewPage)
		contactGroup.POST("/new", contactHandler.Create)
		contactGroup.GET("/email", rateLimited, contactHandler.ValidateEmail)
		contactGroup.GET("/download", contactHandler.Download)
		contactGroup.GET("/:id", contactHandler.View)
		contactGroup.DELETE("/:id", contactHandler.Delete)
		contactGroup.POST("/:id/delete", contactHandler.Delete)
		contactGroup.GET("/:id/edit", contactHandler.EditPage)
		contactGroup.POST("/:id/edit", contactHandler.Update)
	}

	userGroup := h.Group("/user")
	{
		userGroup.GET("/new", accountHandler.SignupPage)
		userGroup.POST("/new", accountHandler.Signup)

		validateGroup := userGroup.Group("/new", rateLimited)
		validateGroup.POST("/name/validate", accountHandler.ValidateName)
		validateGroup.POST("/email/validate", accountHandler.ValidateEmail)
		validateGroup.POST("/password/validate", accountHandler.ValidatePassword)

		userGroup.GET("/login", accountHandler.LoginPage)
		userGroup.POST("/login", rateLimited, accountHandler.Login)
		userGroup.GET("/logout", accountHandler.Logout)
		userGroup.POST("/logout", accountHandler.Logout)

		// 需要登录的接口
		profileGroup := userGroup.Group("/profile", sessions.Require())
		profileGroup.GET("", accountHandler.Profile)
		profileGroup.POST("/email", accountHandler.ChangeEmail)
		profileGroup.POST("/email/validate", rateLimited, accountHandler.ValidateProfileEmail)
	}

	h.NoRoute(contactHandler.NotFound)
	return nil
}

// wrapHTTPHandler 在 hertz 路由上挂载 net/http Handler
func wrapHTTPHandler(handler http.Handler) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		req, err := adaptor.GetCompatRequest(&c.Request)
		if err != nil {
			c.AbortWithMsg(err.Error(), http.StatusInternalServerError)
			return
		}
		handler.ServeHTTP(adaptor.GetCompatResponseWriter(&c.Response), req.WithContext(ctx))
	}
}
