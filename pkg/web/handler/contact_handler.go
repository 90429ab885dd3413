package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	apperrors "contact-book/pkg/common/errors"
	"contact-book/pkg/core/contact/model"
	"contact-book/pkg/core/contact/service"
	core "contact-book/pkg/core/field"
	"contact-book/pkg/web/field"
	"contact-book/pkg/web/flash"
	webmodel "contact-book/pkg/web/model"
)

const exportFilename = "contacts.txt"

type ContactHandler struct {
	pages
	contacts *service.Service
}

func NewContactHandler(contacts *service.Service, flashes *flash.Store) *ContactHandler {
	return &ContactHandler{
		pages:    pages{flashes: flashes},
		contacts: contacts,
	}
}

// emailField 编辑时 id 非 nil，联系人自己的邮箱不算占用
func (h *ContactHandler) emailField(id *uint) *field.Controller {
	endpoint := "/contacts/email"
	if id != nil {
		endpoint += "?id=" + strconv.FormatUint(uint64(*id), 10)
	}
	return field.NewController(core.KindEmail, field.Config{
		Label:       "Email",
		Name:        "email",
		Type:        "email",
		Placeholder: "Email",
		Endpoint:    endpoint,
		Method:      "get",
		Echo:        true,
		Trim:        true,
	}, core.EmailRule(h.contacts.Contacts(), id))
}

type contactFormBody struct {
	Action  string
	ID      uint
	Name    string
	NameErr string
	Email   template.HTML
}

func (h *ContactHandler) Index(ctx context.Context, c *app.RequestContext) {
	c.Redirect(302, []byte("/contacts"))
}

// List GET /contacts?q=&page=
func (h *ContactHandler) List(ctx context.Context, c *app.RequestContext) {
	var req webmodel.ContactListReq
	if err := c.BindAndValidate(&req); err != nil {
		// 页码非法时按第一页处理
		req = webmodel.ContactListReq{Query: c.Query("q")}
	}

	page, err := h.contacts.List(ctx, req.Query, req.Page)
	if err != nil {
		c.Error(apperrors.Private(err))
		h.render(ctx, c, 200, "contacts/list", "Contacts", service.Page{Query: req.Query, Number: 1},
			flash.Error(field.UnavailableMessage))
		return
	}
	h.render(ctx, c, 200, "contacts/list", "Contacts", page)
}

// View GET /contacts/:id
func (h *ContactHandler) View(ctx context.Context, c *app.RequestContext) {
	contact, ok := h.load(ctx, c)
	if !ok {
		return
	}
	h.render(ctx, c, 200, "contacts/show", contact.Name, contact)
}

// load 读取路径中的联系人，失败时已写出错误页
func (h *ContactHandler) load(ctx context.Context, c *app.RequestContext) (model.Contact, bool) {
	id, ok := parseID(c)
	if !ok {
		h.renderError(ctx, c, 404, "Contact not found.")
		return model.Contact{}, false
	}
	contact, err := h.contacts.Get(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		h.renderError(ctx, c, 404, "Contact not found.")
		return model.Contact{}, false
	}
	if err != nil {
		c.Error(apperrors.Private(err))
		h.renderError(ctx, c, 503, field.UnavailableMessage)
		return model.Contact{}, false
	}
	return contact, true
}

func (h *ContactHandler) NewPage(ctx context.Context, c *app.RequestContext) {
	h.render(ctx, c, 200, "contacts/form", "New contact", contactFormBody{
		Action: "/contacts/new",
		Email:  h.emailField(nil).Render(core.NewUntouched()),
	})
}

// Create POST /contacts/new
func (h *ContactHandler) Create(ctx context.Context, c *app.RequestContext) {
	var req webmodel.ContactReq
	if err := c.BindAndValidate(&req); err != nil {
		h.renderError(ctx, c, 400, "Malformed form submission.")
		return
	}

	_, err := h.contacts.Create(ctx, service.Input{Name: req.Name, Email: req.Email})
	if err == nil {
		h.flashes.Add(c, flash.Success("New contact saved"))
		redirect(c, "/contacts")
		return
	}
	h.renderFormError(ctx, c, err, contactFormBody{Action: "/contacts/new"}, req, nil)
}

func (h *ContactHandler) EditPage(ctx context.Context, c *app.RequestContext) {
	contact, ok := h.load(ctx, c)
	if !ok {
		return
	}
	h.render(ctx, c, 200, "contacts/form", "Edit contact", contactFormBody{
		Action: fmt.Sprintf("/contacts/%d/edit", contact.ID),
		ID:     contact.ID,
		Name:   contact.Name,
		Email:  h.emailField(&contact.ID).Render(core.NewValid(contact.Email)),
	})
}

// Update POST /contacts/:id/edit
func (h *ContactHandler) Update(ctx context.Context, c *app.RequestContext) {
	contact, ok := h.load(ctx, c)
	if !ok {
		return
	}
	var req webmodel.ContactReq
	if err := c.BindAndValidate(&req); err != nil {
		h.renderError(ctx, c, 400, "Malformed form submission.")
		return
	}

	err := h.contacts.Update(ctx, contact.ID, service.Input{Name: req.Name, Email: req.Email})
	if err == nil {
		h.flashes.Add(c, flash.Success("Changes saved"))
		redirect(c, fmt.Sprintf("/contacts/%d", contact.ID))
		return
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		h.renderError(ctx, c, 404, "Contact not found.")
		return
	}
	body := contactFormBody{Action: fmt.Sprintf("/contacts/%d/edit", contact.ID), ID: contact.ID}
	h.renderFormError(ctx, c, err, body, req, &contact.ID)
}

// renderFormError 校验错误内联展示，其余错误作为页面提示
func (h *ContactHandler) renderFormError(ctx context.Context, c *app.RequestContext, err error, body contactFormBody, req webmodel.ContactReq, id *uint) {
	fc := h.emailField(id)
	body.Name = req.Name

	var invalid *service.InvalidError
	if errors.As(err, &invalid) {
		body.Name = invalid.Input.Name
		if invalid.Name != nil {
			body.NameErr = invalid.Name.Error()
		}
		if invalid.Email != nil {
			body.Email = fc.Render(core.NewInvalid(invalid.Input.Email, invalid.Email))
		} else {
			body.Email = fc.Render(core.NewValid(invalid.Input.Email))
		}
		h.render(ctx, c, 200, "contacts/form", "Contact", body)
		return
	}

	c.Error(apperrors.Private(err))
	body.Email = fc.Render(core.NewUntouched())
	h.render(ctx, c, 200, "contacts/form", "Contact", body, flash.Error(field.UnavailableMessage))
}

// Delete DELETE /contacts/:id 与 POST /contacts/:id/delete
func (h *ContactHandler) Delete(ctx context.Context, c *app.RequestContext) {
	id, ok := parseID(c)
	if !ok {
		h.renderError(ctx, c, 404, "Contact not found.")
		return
	}
	err := h.contacts.Delete(ctx, id)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		h.flashes.Add(c, flash.Info("Contact was already deleted"))
	case err != nil:
		c.Error(apperrors.Private(err))
		h.flashes.Add(c, flash.Error("Could not delete contact. Please try again."))
	default:
		h.flashes.Add(c, flash.Success("Deleted Contact!"))
	}
	redirect(c, "/contacts")
}

// ValidateEmail GET /contacts/email?email=&id=
func (h *ContactHandler) ValidateEmail(ctx context.Context, c *app.RequestContext) {
	var id *uint
	if raw := c.Query("id"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 0); err == nil {
			u := uint(v)
			id = &u
		}
	}
	h.emailField(id).Handle(ctx, c)
}

// Download GET /contacts/download
func (h *ContactHandler) Download(ctx context.Context, c *app.RequestContext) {
	var buf bytes.Buffer
	if err := h.contacts.Export(ctx, &buf); err != nil {
		c.Error(apperrors.Private(err))
		h.renderError(ctx, c, 503, field.UnavailableMessage)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename))
	c.Data(200, "text/plain; charset=utf-8", buf.Bytes())
}
