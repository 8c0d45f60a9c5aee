package repo

import (
	"ScholarDesk/internal/model"
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository чтение общего списка тегов.
type TagRepository interface {
	// ListPopular теги по убыванию usage_count, limit<=0 без ограничения.
	ListPopular(ctx context.Context, limit int) ([]model.Tag, error)
}

type tagRepo struct {
	db *gorm.DB
}

// NewTagRepository создаёт реализацию репозитория для Tag.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepo{db: db}
}

func (r *tagRepo) ListPopular(ctx context.Context, limit int) ([]model.Tag, error) {
	q := r.db.WithContext(ctx).Order("usage_count DESC").Order("name")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var tags []model.Tag
	if err := q.Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// NormalizeTagNames обрезает пробелы, выкидывает пустые и повторяющиеся имена, порядок сохраняется.
func NormalizeTagNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// linkTags привязывает теги к ресурсу внутри транзакции tx.
// Отсутствующие теги создаются, usage_count растёт только для новых связей.
func linkTags(tx *gorm.DB, resourceID int64, names []string) error {
	for _, name := range NormalizeTagNames(names) {
		// создаём тег, если его ещё нет
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&model.Tag{Name: name, Color: model.DefaultTagColor}).Error; err != nil {
			return err
		}

		var tag model.Tag
		if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
			return err
		}

		link := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "resource_id"}, {Name: "tag_id"}},
			DoNothing: true,
		}).Create(&model.AcademicResourceTag{ResourceID: resourceID, TagID: tag.ID})
		if link.Error != nil {
			return link.Error
		}
		if link.RowsAffected == 0 {
			continue
		}

		// инкремент в SQL, без read-modify-write
		if err := tx.Model(&model.Tag{}).Where("id = ?", tag.ID).
			UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error; err != nil {
			return err
		}
	}
	return nil
}

// unlinkTags удаляет все связи ресурса и уменьшает usage_count затронутых тегов, не ниже нуля.
func unlinkTags(tx *gorm.DB, resourceID int64) error {
	var tagIDs []int64
	if err := tx.Model(&model.AcademicResourceTag{}).
		Where("resource_id = ?", resourceID).
		Pluck("tag_id", &tagIDs).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}

	if err := tx.Where("resource_id = ?", resourceID).Delete(&model.AcademicResourceTag{}).Error; err != nil {
		return err
	}
	return tx.Model(&model.Tag{}).Where("id IN ?", tagIDs).
		UpdateColumn("usage_count", gorm.Expr("CASE WHEN usage_count > 0 THEN usage_count - 1 ELSE 0 END")).Error
}

type resourceTagRow struct {
	ResourceID int64
	model.Tag
}

// tagsByResource загружает теги для набора ресурсов одним запросом.
func tagsByResource(db *gorm.DB, ids []int64) (map[int64][]model.Tag, error) {
	out := make(map[int64][]model.Tag, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []resourceTagRow
	err := db.Table("academic_resource_tags AS rt").
		Select("rt.resource_id, t.id, t.name, t.category, t.usage_count, t.color, t.created_at").
		Joins("JOIN tags t ON t.id = rt.tag_id").
		Where("rt.resource_id IN ?", ids).
		Order("t.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ResourceID] = append(out[row.ResourceID], row.Tag)
	}
	return out, nil
}
