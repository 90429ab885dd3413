package memory

import (
	"context"
	"sync"
	"time"

	apperrors "contact-book/pkg/common/errors"
	"contact-book/pkg/core/account/model"
	"contact-book/pkg/core/account/repository/dao"
)

var _ dao.AccountRepository = (*AccountRepo)(nil)

// AccountRepo 内存实现，用于开发环境和测试；名称与邮箱唯一
type AccountRepo struct {
	mu     sync.RWMutex
	nextID uint
	m      map[uint]*model.Account
}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{
		nextID: 1,
		m:      make(map[uint]*model.Account),
	}
}

func (r *AccountRepo) find(match func(*model.Account) bool) *model.Account {
	for _, a := range r.m {
		if match(a) {
			return a
		}
	}
	return nil
}

func (r *AccountRepo) FindIDByName(ctx context.Context, name string) (uint, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a := r.find(func(a *model.Account) bool { return a.Name == name })
	if a == nil {
		return 0, false, nil
	}
	return a.ID, true, nil
}

func (r *AccountRepo) FindIDByEmail(ctx context.Context, email string) (uint, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a := r.find(func(a *model.Account) bool { return a.Email == email })
	if a == nil {
		return 0, false, nil
	}
	return a.ID, true, nil
}

func (r *AccountRepo) QueryByID(ctx context.Context, id uint) (model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.m[id]
	if !ok {
		return model.Account{}, apperrors.ErrNotFound
	}
	return *a, nil
}

func (r *AccountRepo) QueryByLogin(ctx context.Context, login string) (model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a := r.find(func(a *model.Account) bool { return a.Name == login || a.Email == login })
	if a == nil {
		return model.Account{}, apperrors.ErrNotFound
	}
	return *a, nil
}

func (r *AccountRepo) Insert(ctx context.Context, name, email, passwordHash string) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.find(func(a *model.Account) bool { return a.Name == name || a.Email == email }) != nil {
		return 0, apperrors.ErrDuplicateEntry
	}
	now := time.Now()
	a := &model.Account{
		ID:           r.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.m[a.ID] = a
	r.nextID++
	return a.ID, nil
}

func (r *AccountRepo) UpdateEmail(ctx context.Context, id uint, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.m[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if other := r.find(func(o *model.Account) bool { return o.Email == email && o.ID != id }); other != nil {
		return apperrors.ErrDuplicateEntry
	}
	a.Email = email
	a.Version++
	a.UpdatedAt = time.Now()
	return nil
}

// Len 当前账号数
func (r *AccountRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.m)
}
