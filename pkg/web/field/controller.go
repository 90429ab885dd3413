// Package field 表单字段控制器：渲染输入框片段并提供实时校验接口
package field

import (
	"context"
	"html/template"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"contact-book/pkg/common/metrics"
	core "contact-book/pkg/core/field"
	"contact-book/pkg/web/flash"
	"contact-book/pkg/web/view"
)

const htmlContentType = "text/html; charset=utf-8"

// Config 输入框的静态配置
type Config struct {
	Label       string
	Name        string // name 与 id 属性，也是实时校验读取的参数名
	Type        string // input type，默认 text
	Placeholder string
	Endpoint    string // 实时校验地址，空表示不做实时校验
	Method      string // get 或 post，默认 post
	Script      string // 附加在 input 上的 hyperscript
	Echo        bool   // 是否回填输入值；密码框为 false
	Trim        bool   // 校验前去掉首尾空白，与提交时的处理保持一致
}

// Controller 无状态，可被多个请求并发使用
type Controller struct {
	kind core.Kind
	cfg  Config
	rule core.Rule
}

func NewController(kind core.Kind, cfg Config, rule core.Rule) *Controller {
	if cfg.Type == "" {
		cfg.Type = "text"
	}
	if cfg.Method == "" {
		cfg.Method = "post"
	}
	return &Controller{kind: kind, cfg: cfg, rule: rule}
}

func (fc *Controller) Config() Config { return fc.cfg }

type fieldView struct {
	Config
	Value string
	State string
	Error string
}

// LiveCheck 执行规则，不写存储
func (fc *Controller) LiveCheck(ctx context.Context, raw string) core.State {
	state := core.Check(ctx, fc.rule, raw)
	metrics.RecordLiveCheck(fc.kind.String(), state.Tag())
	return state
}

// Render 样式只取决于状态；非内联类错误（基础设施故障）按未校验展示，由页面级提示说明
func (fc *Controller) Render(state core.State) template.HTML {
	v := fieldView{Config: fc.cfg, State: state.Tag()}
	if fc.cfg.Echo {
		v.Value = state.Value()
	}
	if state.Is(core.Invalid) {
		if state.Err().Category().Inline() {
			v.Error = state.Err().Error()
		} else {
			v.State = core.Untouched.String()
		}
	}

	out, err := view.Fragment("field", v)
	if err != nil {
		hlog.Errorf("render field %s: %v", fc.cfg.Name, err)
		return ""
	}
	return out
}

// Handle 实时校验接口，返回字段片段；基础设施错误额外附带一条 out-of-band 提示
func (fc *Controller) Handle(ctx context.Context, c *app.RequestContext) {
	raw := string(c.FormValue(fc.cfg.Name))
	if fc.cfg.Trim {
		raw = strings.TrimSpace(raw)
	}
	state := fc.LiveCheck(ctx, raw)

	body := string(fc.Render(state))
	if state.Is(core.Invalid) && !state.Err().Category().Inline() {
		hlog.CtxWarnf(ctx, "live check %s: %v", fc.kind, state.Err())
		alert, err := view.Fragment("oob-alert", flash.Error(UnavailableMessage))
		if err == nil {
			body += string(alert)
		}
	}
	c.Data(200, htmlContentType, []byte(body))
}

// UnavailableMessage 存储不可用时展示给用户的提示
const UnavailableMessage = "We could not check this value right now. Please try again."
