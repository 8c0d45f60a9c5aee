package service

import (
	"ScholarDesk/internal/model"
	"ScholarDesk/internal/repo"
	"context"
	"errors"
	"fmt"
	"strings"
)

// FolderService папки пользователя и их дерево.
type FolderService struct {
	repo repo.FolderRepository
}

func NewFolderService(r repo.FolderRepository) *FolderService {
	return &FolderService{repo: r}
}

// FolderInput поля новой папки.
type FolderInput struct {
	Name        string
	Description string
	Color       string
	SortOrder   int
	ParentID    *int64
}

// FolderUpdate частичное обновление папки.
type FolderUpdate struct {
	Name        *string
	Description *string
	Color       *string
	SortOrder   *int
	ParentID    Optional[int64]
}

func (s *FolderService) Create(ctx context.Context, userID int64, in FolderInput) (*model.Folder, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("folder name is required")
	}
	if in.ParentID != nil {
		if _, err := s.owned(ctx, userID, *in.ParentID); err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
				return nil, invalid("parent folder %d not found", *in.ParentID)
			}
			return nil, err
		}
	}
	color := in.Color
	if color == "" {
		color = model.DefaultFolderColor
	}
	f := &model.Folder{
		UserID:      userID,
		ParentID:    in.ParentID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       color,
		SortOrder:   in.SortOrder,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	return f, nil
}

// List папки одного уровня, parentID=nil для корня.
func (s *FolderService) List(ctx context.Context, userID int64, parentID *int64) ([]model.Folder, error) {
	list, err := s.repo.ListByParent(ctx, userID, parentID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	if list == nil {
		list = []model.Folder{}
	}
	return list, nil
}

// Tree строит дерево папок пользователя. Children никогда не nil.
func (s *FolderService) Tree(ctx context.Context, userID int64) ([]*model.FolderNode, error) {
	all, err := s.repo.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return BuildTree(all), nil
}

// BuildTree собирает дерево из плоского списка в исходном порядке.
// Узлы, недостижимые от корней (цикл в старых данных), в дерево не попадают.
func BuildTree(folders []model.Folder) []*model.FolderNode {
	byParent := make(map[int64][]model.Folder)
	var roots []model.Folder
	for _, f := range folders {
		if f.ParentID == nil {
			roots = append(roots, f)
			continue
		}
		byParent[*f.ParentID] = append(byParent[*f.ParentID], f)
	}

	visited := make(map[int64]bool, len(folders))
	var build func(f model.Folder) *model.FolderNode
	build = func(f model.Folder) *model.FolderNode {
		visited[f.ID] = true
		node := &model.FolderNode{Folder: f, Children: []*model.FolderNode{}}
		for _, child := range byParent[f.ID] {
			if visited[child.ID] {
				continue
			}
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	out := make([]*model.FolderNode, 0, len(roots))
	for _, r := range roots {
		out = append(out, build(r))
	}
	return out
}

// Update меняет поля папки. Перенос в саму себя или в потомка отклоняется с ErrFolderCycle.
func (s *FolderService) Update(ctx context.Context, userID, id int64, upd FolderUpdate) (*model.Folder, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, invalid("folder name cannot be empty")
		}
		fields["name"] = name
	}
	setString(fields, "description", upd.Description)
	if upd.Color != nil {
		fields["color"] = *upd.Color
	}
	if upd.SortOrder != nil {
		fields["sort_order"] = *upd.SortOrder
	}
	if upd.ParentID.Set {
		if upd.ParentID.Value != nil {
			if err := s.checkMove(ctx, userID, id, *upd.ParentID.Value); err != nil {
				return nil, err
			}
		}
		fields["parent_id"] = upd.ParentID.orNil()
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("update folder: %w", err)
	}
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("folder", err)
	}
	return f, nil
}

// Delete удаляет папку, её содержимое переходит к родителю.
func (s *FolderService) Delete(ctx context.Context, userID, id int64) error {
	f, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, f); err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	return nil
}

// checkMove проверяет, что newParent принадлежит пользователю и не лежит внутри папки id.
func (s *FolderService) checkMove(ctx context.Context, userID, id, newParent int64) error {
	if newParent == id {
		return ErrFolderCycle
	}
	all, err := s.repo.ListAll(ctx, userID)
	if err != nil {
		return fmt.Errorf("list folders: %w", err)
	}
	parents := make(map[int64]*int64, len(all))
	for _, f := range all {
		parents[f.ID] = f.ParentID
	}
	if _, ok := parents[newParent]; !ok {
		return invalid("parent folder %d not found", newParent)
	}

	// поднимаемся от нового родителя к корню
	seen := map[int64]bool{}
	for cur := &newParent; cur != nil; cur = parents[*cur] {
		if *cur == id {
			return ErrFolderCycle
		}
		if seen[*cur] {
			break
		}
		seen[*cur] = true
	}
	return nil
}

func (s *FolderService) owned(ctx context.Context, userID, id int64) (*model.Folder, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("folder", err)
	}
	if f.UserID != userID {
		return nil, ErrForbidden
	}
	return f, nil
}
