package dao

import (
	"context"

	"contact-book/pkg/core/account/model"
)

// AccountRepository 账号持久化接口；未找到时返回 errors.ErrNotFound
type AccountRepository interface {
	FindIDByName(ctx context.Context, name string) (uint, bool, error)
	FindIDByEmail(ctx context.Context, email string) (uint, bool, error)
	QueryByID(ctx context.Context, id uint) (model.Account, error)
	// QueryByLogin 按名称或邮箱查询
	QueryByLogin(ctx context.Context, login string) (model.Account, error)
	// Insert 违反唯一约束时返回 errors.ErrDuplicateEntry
	Insert(ctx context.Context, name, email, passwordHash string) (uint, error)
	UpdateEmail(ctx context.Context, id uint, email string) error
}
