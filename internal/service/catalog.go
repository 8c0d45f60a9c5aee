package service

import (
	"ScholarDesk/internal/model"
	"ScholarDesk/internal/repo"
	"context"
)

// CatalogService общие справочники: дисциплины и теги.
type CatalogService struct {
	subjects repo.SubjectRepository
	tags     repo.TagRepository
}

func NewCatalogService(subjects repo.SubjectRepository, tags repo.TagRepository) *CatalogService {
	return &CatalogService{subjects: subjects, tags: tags}
}

func (s *CatalogService) Subjects(ctx context.Context) ([]model.Subject, error) {
	list, err := s.subjects.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Subject{}
	}
	return list, nil
}

func (s *CatalogService) Tags(ctx context.Context, limit int) ([]model.Tag, error) {
	list, err := s.tags.ListPopular(ctx, limit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Tag{}
	}
	return list, nil
}

// SeedSubjects добавляет стандартные дисциплины, которых ещё нет.
func (s *CatalogService) SeedSubjects(ctx context.Context) (int, error) {
	return s.subjects.Seed(ctx, repo.DefaultSubjects())
}
