package repo

import (
	"ScholarDesk/internal/model"
	"context"

	"gorm.io/gorm"
)

// CategoryRepository доступ к пользовательским категориям.
type CategoryRepository interface {
	Create(ctx context.Context, c *model.UserCategory) error
	// GetByID возвращает gorm.ErrRecordNotFound, если категории нет.
	GetByID(ctx context.Context, id int64) (*model.UserCategory, error)
	List(ctx context.Context, userID int64) ([]model.UserCategory, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
	// Delete удаляет категорию и обнуляет ссылки на неё у ресурсов.
	Delete(ctx context.Context, c *model.UserCategory) error
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, c *model.UserCategory) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*model.UserCategory, error) {
	var c model.UserCategory
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context, userID int64) ([]model.UserCategory, error) {
	var out []model.UserCategory
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name").Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) Update(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.UserCategory{}).Where("id = ?", id).Updates(fields).Error
}

func (r *categoryRepo) Delete(ctx context.Context, c *model.UserCategory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.AcademicResource{}).
			Where("user_category_id = ?", c.ID).
			Update("user_category_id", gorm.Expr("NULL")).Error; err != nil {
			return err
		}
		return tx.Delete(&model.UserCategory{}, c.ID).Error
	})
}
