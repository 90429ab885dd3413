package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
)

// Pinger 数据库连通性检查，*sql.DB 满足该接口
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthCheckHandler struct {
	driver string
	db     Pinger // 内存存储时为 nil
}

func NewHealthCheckHandler(driver string, db Pinger) *HealthCheckHandler {
	return &HealthCheckHandler{driver: driver, db: db}
}

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Uptime     string            `json:"uptime"`
	Components []ComponentStatus `json:"components,omitempty"`
}

type ComponentStatus struct {
	Name    string        `json:"name"`
	Status  string        `json:"status"`
	IsCore  bool          `json:"is_core"`
	Latency time.Duration `json:"latency,omitempty"`
	Error   string        `json:"error,omitempty"`
}

var startupTime = time.Now()

const pingTimeout = 2 * time.Second

// AdvancedHealthCheck 核心组件异常时返回 503
func (h *HealthCheckHandler) AdvancedHealthCheck(ctx context.Context, c *app.RequestContext) {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(startupTime).Round(time.Second).String(),
		Components: []ComponentStatus{
			h.checkDatabase(ctx),
		},
	}

	if hasCriticalErrors(status.Components) {
		status.Status = "degraded"
		c.JSON(503, status)
		return
	}

	c.JSON(200, status)
}

func (h *HealthCheckHandler) checkDatabase(ctx context.Context) ComponentStatus {
	comp := ComponentStatus{Name: "database:" + h.driver, Status: "ok", IsCore: true}
	if h.db == nil {
		return comp
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(pingCtx)
	comp.Latency = time.Since(start)
	if err != nil {
		comp.Status = "down"
		comp.Error = err.Error()
	}
	return comp
}

func hasCriticalErrors(components []ComponentStatus) bool {
	for _, comp := range components {
		// 核心组件状态异常或任意组件发生严重错误
		if (comp.IsCore && comp.Status != "ok") || comp.Status == "critical" {
			return true
		}
	}
	return false
}
