package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	apperrors "contact-book/pkg/common/errors"
	"contact-book/pkg/core/contact/model"
	"contact-book/pkg/core/contact/repository/dao"
	"contact-book/pkg/core/field"
)

const (
	NameMaxLen      = 250
	DefaultPageSize = 10
)

var (
	ErrNameRequired = errors.New("name is required")
	ErrNameTooLong  = fmt.Errorf("name must be at most %d characters", NameMaxLen)
)

// Input 联系人表单提交值
type Input struct {
	Name  string
	Email string
}

// InvalidError 表单校验失败；Name/Email 为 nil 表示该字段合法
type InvalidError struct {
	Input Input
	Name  error
	Email field.FieldError
}

func (e *InvalidError) Error() string {
	var parts []string
	if e.Name != nil {
		parts = append(parts, "name: "+e.Name.Error())
	}
	if e.Email != nil {
		parts = append(parts, "email: "+e.Email.Error())
	}
	return "invalid contact: " + strings.Join(parts, "; ")
}

// Page 一页搜索结果，Number 从 1 开始
type Page struct {
	Contacts []model.Contact
	Query    string
	Number   int
	HasPrev  bool
	HasNext  bool
}

type Service struct {
	contacts dao.ContactRepository
	pageSize int
}

func NewService(contacts dao.ContactRepository, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{contacts: contacts, pageSize: pageSize}
}

// Contacts 供邮箱实时校验使用
func (s *Service) Contacts() dao.ContactRepository {
	return s.contacts
}

// List 多取一条判断是否有下一页
func (s *Service) List(ctx context.Context, query string, page int) (Page, error) {
	if page < 1 {
		page = 1
	}
	query = strings.TrimSpace(query)

	found, err := s.contacts.Search(ctx, query, (page-1)*s.pageSize, s.pageSize+1)
	if err != nil {
		return Page{}, err
	}

	p := Page{Query: query, Number: page, HasPrev: page > 1}
	if len(found) > s.pageSize {
		p.HasNext = true
		found = found[:s.pageSize]
	}
	p.Contacts = found
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uint) (model.Contact, error) {
	return s.contacts.Get(ctx, id)
}

// CheckName 去掉首尾空白后不能为空，最多 250 个字符
func CheckName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return name, ErrNameRequired
	}
	if utf8.RuneCountInString(name) > NameMaxLen {
		return name, ErrNameTooLong
	}
	return name, nil
}

// validate 名称与邮箱都检查，便于一次展示全部错误；邮箱查询失败按基础设施错误返回
func (s *Service) validate(ctx context.Context, in Input, currentID *uint) (Input, error) {
	name, nameErr := CheckName(in.Name)
	in.Name = name
	in.Email = strings.TrimSpace(in.Email)

	emailErr := field.CheckEmail(ctx, s.contacts, in.Email, currentID)
	if emailErr != nil && emailErr.Category() == field.CategoryInfra {
		return in, emailErr
	}
	if nameErr != nil || emailErr != nil {
		return in, &InvalidError{Input: in, Name: nameErr, Email: emailErr}
	}
	return in, nil
}

// Create 校验失败返回 *InvalidError
func (s *Service) Create(ctx context.Context, in Input) (uint, error) {
	in, err := s.validate(ctx, in, nil)
	if err != nil {
		return 0, err
	}

	id, err := s.contacts.Insert(ctx, in.Name, in.Email)
	if errors.Is(err, apperrors.ErrDuplicateEntry) {
		return 0, &InvalidError{Input: in, Email: &field.EmailError{Kind: field.EmailTaken}}
	}
	if err != nil {
		return 0, err
	}
	hlog.CtxInfof(ctx, "created contact id=%d", id)
	return id, nil
}

// Update 联系人保留自己的邮箱不算冲突
func (s *Service) Update(ctx context.Context, id uint, in Input) error {
	in, err := s.validate(ctx, in, &id)
	if err != nil {
		return err
	}

	err = s.contacts.Update(ctx, id, in.Name, in.Email)
	if errors.Is(err, apperrors.ErrDuplicateEntry) {
		return &InvalidError{Input: in, Email: &field.EmailError{Kind: field.EmailTaken}}
	}
	return err
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.contacts.Delete(ctx, id); err != nil {
		return err
	}
	hlog.CtxInfof(ctx, "deleted contact id=%d", id)
	return nil
}

// Export 每个联系人一行：name: '<name>'<TAB>email: '<email>'
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	return s.contacts.Each(ctx, func(c model.Contact) error {
		_, err := fmt.Fprintf(w, "name: '%s'\temail: '%s'\n", c.Name, c.Email)
		return err
	})
}
