package impl

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "contact-book/pkg/common/errors"
	"contact-book/pkg/core/account/model"
	"contact-book/pkg/core/account/repository/dao"
)

var _ dao.AccountRepository = (*GormAccountRepository)(nil)

type GormAccountRepository struct {
	db *gorm.DB
}

func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

func (r *GormAccountRepository) findID(ctx context.Context, column, value string) (uint, bool, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Account{}).
		Where(column+" = ?", value).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, false, fmt.Errorf("%w: failed to check %s", apperrors.WrapGormError(err), column)
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

// FindIDByName check name existence
func (r *GormAccountRepository) FindIDByName(ctx context.Context, name string) (uint, bool, error) {
	return r.findID(ctx, "name", name)
}

// FindIDByEmail check email existence
func (r *GormAccountRepository) FindIDByEmail(ctx context.Context, email string) (uint, bool, error) {
	return r.findID(ctx, "email", email)
}

func (r *GormAccountRepository) QueryByID(ctx context.Context, id uint) (model.Account, error) {
	var acct model.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&acct).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.Account{}, apperrors.ErrNotFound
	case err != nil:
		return model.Account{}, fmt.Errorf("%w: account query failed", apperrors.WrapGormError(err))
	default:
		return acct, nil
	}
}

func (r *GormAccountRepository) QueryByLogin(ctx context.Context, login string) (model.Account, error) {
	var acct model.Account
	err := r.db.WithContext(ctx).
		Where("name = ? OR email = ?", login, login).
		First(&acct).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.Account{}, apperrors.ErrNotFound
	case err != nil:
		return model.Account{}, fmt.Errorf("%w: credential lookup failed", apperrors.WrapGormError(err))
	default:
		return acct, nil
	}
}

// Insert create new account with transaction
func (r *GormAccountRepository) Insert(ctx context.Context, name, email, passwordHash string) (uint, error) {
	acct := model.Account{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Version:      1,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&acct).Error; err != nil {
			if apperrors.IsDuplicateError(err) {
				return apperrors.ErrDuplicateEntry
			}
			return fmt.Errorf("%w: account creation failed", apperrors.WrapGormError(err))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return acct.ID, nil
}

// UpdateEmail update email with version control
func (r *GormAccountRepository) UpdateEmail(ctx context.Context, id uint, email string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var acct model.Account
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&acct).Error; err != nil {
			return apperrors.WrapGormError(err)
		}

		result := tx.Model(&model.Account{}).
			Where("id = ? AND version = ?", id, acct.Version).
			Updates(map[string]interface{}{
				"email":   email,
				"version": acct.Version + 1,
			})

		if result.Error != nil {
			if apperrors.IsDuplicateError(result.Error) {
				return apperrors.ErrDuplicateEntry
			}
			return fmt.Errorf("%w: email update failed", apperrors.WrapGormError(result.Error))
		}

		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}
