package service

import (
	"ScholarDesk/internal/model"
	"ScholarDesk/internal/repo"
	"context"
	"fmt"
	"strings"
)

// CategoryService пользовательские категории.
type CategoryService struct {
	repo repo.CategoryRepository
}

func NewCategoryService(r repo.CategoryRepository) *CategoryService {
	return &CategoryService{repo: r}
}

type CategoryInput struct {
	Name        string
	Description string
	Color       string
}

type CategoryUpdate struct {
	Name        *string
	Description *string
	Color       *string
}

func (s *CategoryService) Create(ctx context.Context, userID int64, in CategoryInput) (*model.UserCategory, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("category name is required")
	}
	color := in.Color
	if color == "" {
		color = model.DefaultCategoryColor
	}
	c := &model.UserCategory{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       color,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context, userID int64) ([]model.UserCategory, error) {
	list, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if list == nil {
		list = []model.UserCategory{}
	}
	return list, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, id int64, upd CategoryUpdate) (*model.UserCategory, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, invalid("category name cannot be empty")
		}
		fields["name"] = name
	}
	setString(fields, "description", upd.Description)
	if upd.Color != nil {
		fields["color"] = *upd.Color
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("category", err)
	}
	return c, nil
}

// Delete удаляет категорию, у ресурсов ссылка обнуляется.
func (s *CategoryService) Delete(ctx context.Context, userID, id int64) error {
	c, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, c); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *CategoryService) owned(ctx context.Context, userID, id int64) (*model.UserCategory, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("category", err)
	}
	if c.UserID != userID {
		return nil, ErrForbidden
	}
	return c, nil
}
