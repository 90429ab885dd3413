package impl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "contact-book/pkg/common/errors"
	"contact-book/pkg/core/contact/model"
	"contact-book/pkg/core/contact/repository/dao"
)

var _ dao.ContactRepository = (*GormContactRepository)(nil)

// exportBatchSize 导出时每批读取的行数
const exportBatchSize = 100

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike 转义 LIKE 通配符，搜索词按字面匹配
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

type GormContactRepository struct {
	db *gorm.DB
}

func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

func (r *GormContactRepository) Search(ctx context.Context, term string, offset, limit int) ([]model.Contact, error) {
	q := r.db.WithContext(ctx).Model(&model.Contact{})
	if term != "" {
		q = q.Where("name LIKE ?", "%"+escapeLike(term)+"%")
	}

	var contacts []model.Contact
	if err := q.Order("id").Offset(offset).Limit(limit).Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("%w: contact search failed", apperrors.WrapGormError(err))
	}
	return contacts, nil
}

func (r *GormContactRepository) Each(ctx context.Context, fn func(model.Contact) error) error {
	var batch []model.Contact
	result := r.db.WithContext(ctx).Model(&model.Contact{}).
		FindInBatches(&batch, exportBatchSize, func(tx *gorm.DB, _ int) error {
			for _, c := range batch {
				if err := fn(c); err != nil {
					return err
				}
			}
			return nil
		})
	if result.Error != nil {
		return fmt.Errorf("%w: contact export failed", apperrors.WrapGormError(result.Error))
	}
	return nil
}

func (r *GormContactRepository) Get(ctx context.Context, id uint) (model.Contact, error) {
	var c model.Contact
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.Contact{}, apperrors.ErrNotFound
	case err != nil:
		return model.Contact{}, fmt.Errorf("%w: contact query failed", apperrors.WrapGormError(err))
	default:
		return c, nil
	}
}

func (r *GormContactRepository) FindIDByEmail(ctx context.Context, email string) (uint, bool, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Contact{}).
		Where("email = ?", email).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, false, fmt.Errorf("%w: failed to check email", apperrors.WrapGormError(err))
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

func (r *GormContactRepository) Insert(ctx context.Context, name, email string) (uint, error) {
	c := model.Contact{Name: name, Email: email}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return 0, apperrors.ErrDuplicateEntry
		}
		return 0, fmt.Errorf("%w: contact creation failed", apperrors.WrapGormError(err))
	}
	return c.ID, nil
}

// Update 先确认记录存在；MySQL 在值未变化时 RowsAffected 为 0，不能用来判断是否存在
func (r *GormContactRepository) Update(ctx context.Context, id uint, name, email string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Contact
		if err := tx.Where("id = ?", id).First(&c).Error; err != nil {
			return apperrors.WrapGormError(err)
		}

		err := tx.Model(&c).Updates(map[string]interface{}{
			"name":  name,
			"email": email,
		}).Error
		if err != nil {
			if apperrors.IsDuplicateError(err) {
				return apperrors.ErrDuplicateEntry
			}
			return fmt.Errorf("%w: contact update failed", apperrors.WrapGormError(err))
		}
		return nil
	})
}

func (r *GormContactRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Contact{}, id)
	if result.Error != nil {
		return fmt.Errorf("%w: contact deletion failed", apperrors.WrapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
