package service

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	apperrors "contact-book/pkg/common/errors"
	"contact-book/pkg/core/account/model"
	"contact-book/pkg/core/account/repository/dao"
	"contact-book/pkg/core/field"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	accounts dao.AccountRepository
	hasher   PasswordHasher
}

func NewService(accounts dao.AccountRepository, hasher PasswordHasher) *Service {
	return &Service{
		accounts: accounts,
		hasher:   hasher,
	}
}

// Accounts 供字段实时校验使用的只读查询
func (s *Service) Accounts() dao.AccountRepository {
	return s.accounts
}

// Login login 可以是名称或邮箱
func (s *Service) Login(ctx context.Context, login, password string) (model.Account, error) {
	acct, err := s.accounts.QueryByLogin(ctx, login)
	if errors.Is(err, apperrors.ErrNotFound) {
		return model.Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.Account{}, err
	}

	ok, err := s.hasher.Verify(password, acct.PasswordHash)
	if err != nil {
		hlog.CtxWarnf(ctx, "password verify failed for account id=%d: %v", acct.ID, err)
		return model.Account{}, ErrInvalidCredentials
	}
	if !ok {
		return model.Account{}, ErrInvalidCredentials
	}
	return acct, nil
}

func (s *Service) Get(ctx context.Context, id uint) (model.Account, error) {
	return s.accounts.QueryByID(ctx, id)
}

// ChangeEmail 修改本人邮箱；本人当前邮箱不算占用。
// 校验失败返回 field.FieldError，写入失败返回 *InsertError
func (s *Service) ChangeEmail(ctx context.Context, id uint, email string) error {
	if err := field.CheckEmail(ctx, s.accounts, email, &id); err != nil {
		return err
	}

	// 邮箱未变化时不写库
	acct, err := s.accounts.QueryByID(ctx, id)
	if err != nil {
		return err
	}
	if acct.Email == email {
		return nil
	}

	if err := s.accounts.UpdateEmail(ctx, id, email); err != nil {
		cat := field.CategoryInfra
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			cat = field.CategoryRace
		}
		return &InsertError{Category: cat, Err: err}
	}
	return nil
}
