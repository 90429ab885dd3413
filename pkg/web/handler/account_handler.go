package handler

import (
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	apperrors "contact-book/pkg/common/errors"
	"contact-book/pkg/common/metrics"
	"contact-book/pkg/core/account/model"
	"contact-book/pkg/core/account/service"
	core "contact-book/pkg/core/field"
	"contact-book/pkg/web/field"
	"contact-book/pkg/web/flash"
	"contact-book/pkg/web/middleware"
	webmodel "contact-book/pkg/web/model"
)

const (
	msgRaceTaken          = "That name or email was taken a moment ago. Please check your details and try again."
	msgInvalidLogin       = "Invalid name/email or password."
	profileEmailCheckPath = "/user/profile/email/validate"
)

type AccountHandler struct {
	pages
	accounts *service.Service
	sessions *middleware.Sessions

	name     *field.Controller
	email    *field.Controller
	password *field.Controller
}

func NewAccountHandler(accounts *service.Service, sessions *middleware.Sessions, flashes *flash.Store) *AccountHandler {
	lookup := accounts.Accounts()
	return &AccountHandler{
		pages:    pages{flashes: flashes},
		accounts: accounts,
		sessions: sessions,
		name: field.NewController(core.KindName, field.Config{
			Label:       "Name",
			Name:        "name",
			Placeholder: "your alias",
			Endpoint:    "/user/new/name/validate",
			Echo:        true,
		}, core.NameRule(lookup)),
		email: field.NewController(core.KindEmail, field.Config{
			Label:       "Email",
			Name:        "email",
			Type:        "email",
			Placeholder: "you@example.org",
			Endpoint:    "/user/new/email/validate",
			Echo:        true,
		}, core.EmailRule(lookup, nil)),
		password: field.NewController(core.KindPassword, field.Config{
			Label:    "Password",
			Name:     "password",
			Type:     "password",
			Endpoint: "/user/new/password/validate",
			Script:   "on change or keyup debounced at 350ms send newpass to #confirm_password",
		}, core.PasswordRule()),
	}
}

// region signup

type signupBody struct {
	Name     template.HTML
	Email    template.HTML
	Password template.HTML
	Ready    bool
}

func (h *AccountHandler) renderSignup(ctx context.Context, c *app.RequestContext, form field.SignupForm, alerts ...flash.Message) {
	h.render(ctx, c, 200, "user/signup", "Sign up", signupBody{
		Name:     h.name.Render(form.Name),
		Email:    h.email.Render(form.Email),
		Password: h.password.Render(form.Password),
		Ready:    form.Ready(),
	}, alerts...)
}

// SignupPage GET /user/new
func (h *AccountHandler) SignupPage(ctx context.Context, c *app.RequestContext) {
	h.renderSignup(ctx, c, field.NewSignupForm())
}

func (h *AccountHandler) ValidateName(ctx context.Context, c *app.RequestContext) {
	h.name.Handle(ctx, c)
}

func (h *AccountHandler) ValidateEmail(ctx context.Context, c *app.RequestContext) {
	h.email.Handle(ctx, c)
}

func (h *AccountHandler) ValidatePassword(ctx context.Context, c *app.RequestContext) {
	h.password.Handle(ctx, c)
}

// Signup POST /user/new
func (h *AccountHandler) Signup(ctx context.Context, c *app.RequestContext) {
	var req webmodel.SignupReq
	if err := c.BindAndValidate(&req); err != nil {
		h.renderError(ctx, c, 400, "Malformed form submission.")
		return
	}
	attempt := service.SignupAttempt{Name: req.Name, Email: req.Email, Password: req.Password}

	id, err := h.accounts.Submit(ctx, attempt)
	metrics.RecordSignup(service.OutcomeOf(err).String())

	var rejected *service.RejectedError
	var insertErr *service.InsertError
	switch {
	case err == nil:
		if err := h.sessions.Establish(c, middleware.SessionAccount{ID: id, Name: attempt.Name}); err != nil {
			c.Error(apperrors.Private(err))
		}
		h.flashes.Add(c, flash.Success(fmt.Sprintf("Welcome, %s! Your account has been created.", attempt.Name)))
		redirect(c, "/contacts")

	case errors.As(err, &rejected):
		form := h.rejectedForm(ctx, rejected)
		if rejected.Err.Category().Inline() {
			h.renderSignup(ctx, c, form)
			return
		}
		c.Error(apperrors.Private(err))
		h.renderSignup(ctx, c, form, flash.Error(field.UnavailableMessage))

	case errors.As(err, &insertErr):
		c.Error(apperrors.Private(err))
		msg := field.UnavailableMessage
		if insertErr.Category == core.CategoryRace {
			msg = msgRaceTaken
		}
		form := field.SignupForm{
			Name:     core.NewValid(attempt.Name),
			Email:    core.NewValid(attempt.Email),
			Password: core.NewUntouched(),
		}
		h.renderSignup(ctx, c, form, flash.Error(msg))

	default:
		c.Error(apperrors.Private(err))
		h.renderError(ctx, c, 500, "Unexpected error.")
	}
}

// rejectedForm 失败字段之前的字段均已通过；失败字段之后的字段按实时校验重新计算，
// 基础设施错误时之后的字段不再查询。密码不回显，未失败时按未校验展示
func (h *AccountHandler) rejectedForm(ctx context.Context, rejected *service.RejectedError) field.SignupForm {
	a := rejected.Attempt
	failed := rejected.Err.Field()
	infra := !rejected.Err.Category().Inline()

	state := func(kind core.Kind, fc *field.Controller, raw string) core.State {
		switch {
		case kind < failed:
			return core.NewValid(raw)
		case kind == failed:
			return core.NewInvalid(raw, rejected.Err)
		case infra, kind == core.KindPassword:
			return core.NewUntouched()
		}
		return fc.LiveCheck(ctx, raw)
	}

	return field.SignupForm{
		Name:     state(core.KindName, h.name, a.Name),
		Email:    state(core.KindEmail, h.email, a.Email),
		Password: state(core.KindPassword, h.password, a.Password),
	}
}

// endregion

// region login

type loginBody struct {
	Login string
	Error string
}

func (h *AccountHandler) LoginPage(ctx context.Context, c *app.RequestContext) {
	h.render(ctx, c, 200, "user/login", "Log in", loginBody{})
}

// Login POST /user/login
func (h *AccountHandler) Login(ctx context.Context, c *app.RequestContext) {
	var req webmodel.LoginReq
	if err := c.BindAndValidate(&req); err != nil {
		h.renderError(ctx, c, 400, "Malformed form submission.")
		return
	}

	acct, err := h.accounts.Login(ctx, req.Login, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		hlog.CtxInfof(ctx, "failed login for %q", req.Login)
		h.render(ctx, c, 200, "user/login", "Log in", loginBody{Login: req.Login, Error: msgInvalidLogin})
		return
	}
	if err != nil {
		c.Error(apperrors.Private(err))
		h.render(ctx, c, 200, "user/login", "Log in", loginBody{Login: req.Login}, flash.Error(field.UnavailableMessage))
		return
	}

	if err := h.sessions.Establish(c, middleware.SessionAccount{ID: acct.ID, Name: acct.Name}); err != nil {
		c.Error(apperrors.Private(err))
		h.renderError(ctx, c, 500, "Could not start a session.")
		return
	}
	h.flashes.Add(c, flash.Success("Welcome back, "+acct.Name+"!"))
	redirect(c, "/contacts")
}

func (h *AccountHandler) Logout(ctx context.Context, c *app.RequestContext) {
	h.sessions.Clear(c)
	h.flashes.Add(c, flash.Info("You have been logged out."))
	redirect(c, "/user/login")
}

// endregion

// region profile

type profileBody struct {
	Account model.Account
	Email   template.HTML
}

// profileEmail 当前账号自己的邮箱不算占用
func (h *AccountHandler) profileEmail(id uint) *field.Controller {
	return field.NewController(core.KindEmail, field.Config{
		Label:    "New email",
		Name:     "email",
		Type:     "email",
		Endpoint: profileEmailCheckPath,
		Echo:     true,
	}, core.EmailRule(h.accounts.Accounts(), &id))
}

// currentAccount 会话中的账号已不存在时清除会话并跳转登录页
func (h *AccountHandler) currentAccount(ctx context.Context, c *app.RequestContext) (model.Account, bool) {
	sess, ok := middleware.CurrentAccount(ctx, c)
	if !ok {
		redirect(c, middleware.LoginPath)
		return model.Account{}, false
	}
	acct, err := h.accounts.Get(ctx, sess.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		h.sessions.Clear(c)
		redirect(c, middleware.LoginPath)
		return model.Account{}, false
	}
	if err != nil {
		c.Error(apperrors.Private(err))
		h.renderError(ctx, c, 503, field.UnavailableMessage)
		return model.Account{}, false
	}
	return acct, true
}

// Profile GET /user/profile
func (h *AccountHandler) Profile(ctx context.Context, c *app.RequestContext) {
	acct, ok := h.currentAccount(ctx, c)
	if !ok {
		return
	}
	h.render(ctx, c, 200, "user/profile", "Profile", profileBody{
		Account: acct,
		Email:   h.profileEmail(acct.ID).Render(core.NewValid(acct.Email)),
	})
}

func (h *AccountHandler) ValidateProfileEmail(ctx context.Context, c *app.RequestContext) {
	sess, ok := middleware.CurrentAccount(ctx, c)
	if !ok {
		c.AbortWithMsg("session required", 401)
		return
	}
	h.profileEmail(sess.ID).Handle(ctx, c)
}

// ChangeEmail POST /user/profile/email
func (h *AccountHandler) ChangeEmail(ctx context.Context, c *app.RequestContext) {
	acct, ok := h.currentAccount(ctx, c)
	if !ok {
		return
	}
	var req webmodel.EmailReq
	if err := c.BindAndValidate(&req); err != nil {
		h.renderError(ctx, c, 400, "Malformed form submission.")
		return
	}

	err := h.accounts.ChangeEmail(ctx, acct.ID, req.Email)
	if err == nil {
		h.flashes.Add(c, flash.Success("Email updated."))
		redirect(c, "/user/profile")
		return
	}

	fc := h.profileEmail(acct.ID)
	body := profileBody{Account: acct}

	var fe core.FieldError
	var insertErr *service.InsertError
	switch {
	case errors.As(err, &fe) && fe.Category().Inline():
		body.Email = fc.Render(core.NewInvalid(req.Email, fe))
		h.render(ctx, c, 200, "user/profile", "Profile", body)
	case errors.As(err, &insertErr) && insertErr.Category == core.CategoryRace:
		c.Error(apperrors.Private(err))
		body.Email = fc.Render(core.NewValid(req.Email))
		h.render(ctx, c, 200, "user/profile", "Profile", body, flash.Error(msgRaceTaken))
	default:
		c.Error(apperrors.Private(err))
		body.Email = fc.Render(core.NewUntouched())
		h.render(ctx, c, 200, "user/profile", "Profile", body, flash.Error(field.UnavailableMessage))
	}
}

// endregion
