package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "contact-book/pkg/common/errors"
	"contact-book/pkg/core/contact/model"
	"contact-book/pkg/core/contact/repository/dao"
)

var _ dao.ContactRepository = (*ContactRepo)(nil)

// ContactRepo 内存实现；名称搜索不区分大小写，与 MySQL 默认排序规则一致
type ContactRepo struct {
	mu     sync.RWMutex
	nextID uint
	m      map[uint]*model.Contact
}

func NewContactRepo() *ContactRepo {
	return &ContactRepo{
		nextID: 1,
		m:      make(map[uint]*model.Contact),
	}
}

// sorted 调用方需持有锁
func (r *ContactRepo) sorted() []model.Contact {
	out := make([]model.Contact, 0, len(r.m))
	for _, c := range r.m {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *ContactRepo) Search(ctx context.Context, term string, offset, limit int) ([]model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	term = strings.ToLower(term)
	var matched []model.Contact
	for _, c := range r.sorted() {
		if strings.Contains(strings.ToLower(c.Name), term) {
			matched = append(matched, c)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit >= 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *ContactRepo) Each(ctx context.Context, fn func(model.Contact) error) error {
	r.mu.RLock()
	all := r.sorted()
	r.mu.RUnlock()

	for _, c := range all {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *ContactRepo) Get(ctx context.Context, id uint) (model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.m[id]
	if !ok {
		return model.Contact{}, apperrors.ErrNotFound
	}
	return *c, nil
}

func (r *ContactRepo) FindIDByEmail(ctx context.Context, email string) (uint, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.m {
		if c.Email == email {
			return c.ID, true, nil
		}
	}
	return 0, false, nil
}

func (r *ContactRepo) emailTaken(email string, except uint) bool {
	for _, c := range r.m {
		if c.Email == email && c.ID != except {
			return true
		}
	}
	return false
}

func (r *ContactRepo) Insert(ctx context.Context, name, email string) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(email, 0) {
		return 0, apperrors.ErrDuplicateEntry
	}
	now := time.Now()
	c := &model.Contact{ID: r.nextID, Name: name, Email: email, CreatedAt: now, UpdatedAt: now}
	r.m[c.ID] = c
	r.nextID++
	return c.ID, nil
}

func (r *ContactRepo) Update(ctx context.Context, id uint, name, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.m[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if r.emailTaken(email, id) {
		return apperrors.ErrDuplicateEntry
	}
	c.Name = name
	c.Email = email
	c.UpdatedAt = time.Now()
	return nil
}

func (r *ContactRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.m, id)
	return nil
}
