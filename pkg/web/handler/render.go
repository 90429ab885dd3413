package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"contact-book/pkg/web/flash"
	"contact-book/pkg/web/middleware"
	"contact-book/pkg/web/view"
)

// pages 各页面处理器共用的渲染工具
type pages struct {
	flashes *flash.Store
}

// render 取出待展示的 flash 并渲染完整页面
func (p pages) render(ctx context.Context, c *app.RequestContext, status int, name, title string, body interface{}, alerts ...flash.Message) {
	page := view.Page{
		Title:   title,
		Flashes: p.flashes.Take(c),
		Alerts:  alerts,
		Body:    body,
	}
	if acct, ok := middleware.CurrentAccount(ctx, c); ok {
		page.Account = acct.Name
	}
	c.HTML(status, name, page)
}

func (p pages) renderError(ctx context.Context, c *app.RequestContext, status int, msg string) {
	p.render(ctx, c, status, "error", strconv.Itoa(status), middleware.ErrorBody{Status: status, Message: msg})
}

// redirect POST 之后使用 303，htmx 与浏览器都会改用 GET
func redirect(c *app.RequestContext, location string) {
	c.Redirect(303, []byte(location))
}

// parseID 路径参数 :id
func parseID(c *app.RequestContext) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// NotFound 未匹配路由
func (p pages) NotFound(ctx context.Context, c *app.RequestContext) {
	p.renderError(ctx, c, 404, "Page not found.")
}
