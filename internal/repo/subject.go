package repo

import (
	"ScholarDesk/internal/model"
	"context"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubjectRepository справочник дисциплин.
type SubjectRepository interface {
	List(ctx context.Context) ([]model.Subject, error)
	// Seed добавляет отсутствующие дисциплины, существующие не трогает. Возвращает число добавленных.
	Seed(ctx context.Context, subjects []model.Subject) (int, error)
}

type subjectRepo struct {
	db *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) List(ctx context.Context) ([]model.Subject, error) {
	var out []model.Subject
	if err := r.db.WithContext(ctx).Order("sort_order").Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subjectRepo) Seed(ctx context.Context, subjects []model.Subject) (int, error) {
	added := 0
	for i := range subjects {
		s := subjects[i]
		if s.Slug == "" {
			s.Slug = slug.Make(s.Name)
		}
		tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&s)
		if tx.Error != nil {
			return added, tx.Error
		}
		added += int(tx.RowsAffected)
	}
	return added, nil
}

// DefaultSubjects начальный набор дисциплин.
func DefaultSubjects() []model.Subject {
	names := []string{
		"Computer Science",
		"Mathematics",
		"Physics",
		"Chemistry",
		"Biology",
		"Medicine",
		"Engineering",
		"Economics",
		"Management",
		"Literature",
		"History",
		"Philosophy",
	}
	out := make([]model.Subject, 0, len(names)+1)
	for i, n := range names {
		out = append(out, model.Subject{
			Name:        n,
			Description: n + " and related fields",
			SortOrder:   i + 1,
		})
	}
	out = append(out, model.Subject{Name: "Other", Description: "Everything else", SortOrder: 99})
	return out
}
