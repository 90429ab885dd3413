// Package view 服务端渲染用的 html/template 模板集合
package view

import (
	"bytes"
	"embed"
	"html/template"

	"contact-book/pkg/web/flash"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))

var funcs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
}

// Templates 交给 hertz SetHTMLTemplate 的模板集合
func Templates() *template.Template {
	return templates
}

// Page 全页面模板的公共数据
type Page struct {
	Title   string
	Flashes []flash.Message
	// Alerts 本次请求产生的页面级错误，与 Flashes 一同展示
	Alerts  []flash.Message
	Account string // 已登录账号名，未登录为空
	Body    interface{}
}

// Fragment 渲染单个片段模板，用于 htmx 局部替换
func Fragment(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
