package repo

import (
	"ScholarDesk/internal/model"
	"context"

	"gorm.io/gorm"
)

// FolderRepository доступ к папкам пользователя.
type FolderRepository interface {
	Create(ctx context.Context, f *model.Folder) error
	// GetByID возвращает gorm.ErrRecordNotFound, если папки нет.
	GetByID(ctx context.Context, id int64) (*model.Folder, error)
	// ListByParent папки одного уровня; parentID=nil означает корень.
	ListByParent(ctx context.Context, userID int64, parentID *int64) ([]model.Folder, error)
	// ListAll все папки пользователя, для построения дерева.
	ListAll(ctx context.Context, userID int64) ([]model.Folder, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
	// Delete удаляет папку, её ресурсы и подпапки переходят к родителю удаляемой.
	Delete(ctx context.Context, f *model.Folder) error
}

type folderRepo struct {
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) FolderRepository {
	return &folderRepo{db: db}
}

func (r *folderRepo) Create(ctx context.Context, f *model.Folder) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *folderRepo) GetByID(ctx context.Context, id int64) (*model.Folder, error) {
	var f model.Folder
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *folderRepo) ListByParent(ctx context.Context, userID int64, parentID *int64) ([]model.Folder, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	var out []model.Folder
	if err := q.Order("sort_order").Order("name").Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *folderRepo) ListAll(ctx context.Context, userID int64) ([]model.Folder, error) {
	var out []model.Folder
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sort_order").Order("name").Order("id").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *folderRepo) Update(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Folder{}).Where("id = ?", id).Updates(fields).Error
}

func (r *folderRepo) Delete(ctx context.Context, f *model.Folder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.AcademicResource{}).
			Where("author_id = ? AND folder_id = ?", f.UserID, f.ID).
			Update("folder_id", f.ParentID).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Folder{}).
			Where("parent_id = ?", f.ID).
			Update("parent_id", f.ParentID).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Folder{}, f.ID).Error
	})
}
