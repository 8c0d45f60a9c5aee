package repo

import (
	"ScholarDesk/internal/model"
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ResourceFilter условия выборки ресурсов пользователя. Пустые поля не фильтруют.
type ResourceFilter struct {
	AuthorID   int64
	Search     string
	Status     model.ReadingStatus
	FolderID   *int64
	CategoryID *int64
	Subject    string
	Limit      int
	Offset     int
}

// ResourceRepository контракт доступа к AcademicResource для слоя сервиса.
type ResourceRepository interface {
	// Create сохраняет ресурс и привязывает теги одной транзакцией.
	Create(ctx context.Context, res *model.AcademicResource, tags []string) error

	// GetByID возвращает ресурс с тегами или gorm.ErrRecordNotFound.
	GetByID(ctx context.Context, id int64) (*model.AcademicResource, error)

	// List страница ресурсов по фильтру и общее количество совпадений.
	// Порядок: created_at по убыванию, при равенстве id по убыванию.
	List(ctx context.Context, f ResourceFilter) ([]model.AcademicResource, int64, error)

	// Update частичное обновление полей. Если replaceTags, набор тегов заменяется на tags.
	// updated=false, если записи с таким id нет.
	Update(ctx context.Context, id int64, fields map[string]any, tags []string, replaceTags bool) (updated bool, err error)

	// Delete удаляет ресурс вместе со связями тегов.
	Delete(ctx context.Context, id int64) (deleted bool, err error)
}

type resourceRepo struct {
	db *gorm.DB
}

// NewResourceRepository создаёт реализацию репозитория для AcademicResource.
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepo{db: db}
}

func (r *resourceRepo) Create(ctx context.Context, res *model.AcademicResource, tags []string) error {
	if res.Keywords == nil {
		res.Keywords = []string{}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(res).Error; err != nil {
			return err
		}
		if err := linkTags(tx, res.ID, tags); err != nil {
			return err
		}
		byRes, err := tagsByResource(tx, []int64{res.ID})
		if err != nil {
			return err
		}
		res.Tags = nonNilTags(byRes[res.ID])
		return nil
	})
}

func (r *resourceRepo) GetByID(ctx context.Context, id int64) (*model.AcademicResource, error) {
	var res model.AcademicResource
	db := r.db.WithContext(ctx)
	if err := db.First(&res, id).Error; err != nil {
		return nil, err
	}
	byRes, err := tagsByResource(db, []int64{res.ID})
	if err != nil {
		return nil, err
	}
	res.Tags = nonNilTags(byRes[res.ID])
	return &res, nil
}

func (r *resourceRepo) List(ctx context.Context, f ResourceFilter) ([]model.AcademicResource, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&model.AcademicResource{}).Scopes(resourceFilterScope(f)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.AcademicResource
	q := db.Scopes(resourceFilterScope(f)).Order("created_at DESC").Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, 0, err
	}

	ids := make([]int64, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	byRes, err := tagsByResource(db, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range list {
		list[i].Tags = nonNilTags(byRes[list[i].ID])
	}
	return list, total, nil
}

func (r *resourceRepo) Update(ctx context.Context, id int64, fields map[string]any, tags []string, replaceTags bool) (bool, error) {
	updated := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upd := make(map[string]any, len(fields)+1)
		for k, v := range fields {
			upd[k] = v
		}
		// updated_at меняется всегда, даже если пришли только теги
		upd["updated_at"] = time.Now().UTC()

		res := tx.Model(&model.AcademicResource{}).Where("id = ?", id).Updates(upd)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		updated = true

		if !replaceTags {
			return nil
		}
		if err := unlinkTags(tx, id); err != nil {
			return err
		}
		return linkTags(tx, id, tags)
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

func (r *resourceRepo) Delete(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := unlinkTags(tx, id); err != nil {
			return err
		}
		res := tx.Delete(&model.AcademicResource{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func resourceFilterScope(f ResourceFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("author_id = ?", f.AuthorID)
		if f.Status != "" {
			db = db.Where("reading_status = ?", f.Status)
		}
		if f.FolderID != nil {
			db = db.Where("folder_id = ?", *f.FolderID)
		}
		if f.CategoryID != nil {
			db = db.Where("user_category_id = ?", *f.CategoryID)
		}
		if f.Subject != "" {
			db = db.Where("subject = ?", f.Subject)
		}
		if term := strings.TrimSpace(f.Search); term != "" {
			p := likePattern(term)
			db = db.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(authors) LIKE ? ESCAPE '\' OR LOWER(abstract) LIKE ? ESCAPE '\')`, p, p, p)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern подстрока для LIKE без учёта регистра, % и _ из запроса ищутся буквально.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

func nonNilTags(tags []model.Tag) []model.Tag {
	if tags == nil {
		return []model.Tag{}
	}
	return tags
}
