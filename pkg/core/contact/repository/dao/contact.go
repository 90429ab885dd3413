package dao

import (
	"context"

	"contact-book/pkg/core/contact/model"
)

// ContactRepository 联系人持久化接口；未找到时返回 errors.ErrNotFound，
// 邮箱冲突时返回 errors.ErrDuplicateEntry
type ContactRepository interface {
	// Search 按名称子串过滤，按 id 升序
	Search(ctx context.Context, term string, offset, limit int) ([]model.Contact, error)
	// Each 按 id 升序遍历全部联系人，fn 返回错误时停止
	Each(ctx context.Context, fn func(model.Contact) error) error
	Get(ctx context.Context, id uint) (model.Contact, error)
	FindIDByEmail(ctx context.Context, email string) (uint, bool, error)
	Insert(ctx context.Context, name, email string) (uint, error)
	Update(ctx context.Context, id uint, name, email string) error
	Delete(ctx context.Context, id uint) error
}
