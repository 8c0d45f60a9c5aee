package service

import (
	"ScholarDesk/internal/metrics"
	"ScholarDesk/internal/model"
	"ScholarDesk/internal/repo"
	"ScholarDesk/internal/storage"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100

	resourceKind = "academic"
)

// ResourceService инкапсулирует бизнес-логику работы с AcademicResource.
type ResourceService struct {
	repo       repo.ResourceRepository
	folders    repo.FolderRepository
	categories repo.CategoryRepository
	store      storage.Storage
	logger     *zap.SugaredLogger
}

func NewResourceService(r repo.ResourceRepository, folders repo.FolderRepository, categories repo.CategoryRepository,
	store storage.Storage, logger *zap.SugaredLogger) *ResourceService {
	return &ResourceService{repo: r, folders: folders, categories: categories, store: store, logger: logger}
}

// ResourceInput поля нового ресурса.
type ResourceInput struct {
	Title           string
	Authors         string
	Abstract        string
	Content         string
	Subject         string
	Notes           string
	Keywords        []string
	Tags            []string
	PublicationYear *int
	CitationCount   int
	ReadingStatus   model.ReadingStatus
	FolderID        *int64
	CategoryID      *int64
}

// FileUpload прикреплённый файл.
type FileUpload struct {
	Name   string
	Reader io.Reader
}

// ResourceUpdate частичное обновление, nil и незаданные Optional не меняют поле.
type ResourceUpdate struct {
	Title           *string
	Authors         *string
	Abstract        *string
	Content         *string
	Subject         *string
	Notes           *string
	Keywords        *[]string
	PublicationYear Optional[int]
	CitationCount   *int
	ReadingStatus   *model.ReadingStatus
	FolderID        Optional[int64]
	CategoryID      Optional[int64]
	// Tags != nil заменяет весь набор тегов.
	Tags *[]string
}

// ListFilter параметры страницы списка.
type ListFilter struct {
	Page       int
	PerPage    int
	FolderID   *int64
	CategoryID *int64
	Status     model.ReadingStatus
	Subject    string
	Search     string
}

// ResourcePage страница списка ресурсов.
type ResourcePage struct {
	Resources []model.AcademicResource `json:"resources"`
	Total     int64                    `json:"total"`
	Page      int                      `json:"page"`
	PerPage   int                      `json:"per_page"`
	Pages     int                      `json:"pages"`
}

// Pages число страниц: ceil(total/perPage).
func Pages(total int64, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// Create проверяет вход, сохраняет файл (если есть), затем ресурс и теги одной транзакцией.
// При ошибке транзакции сохранённый файл удаляется.
func (s *ResourceService) Create(ctx context.Context, userID int64, in ResourceInput, file *FileUpload) (*model.AcademicResource, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	status := in.ReadingStatus
	if status == "" {
		status = model.StatusUnread
	}
	if !status.Valid() {
		return nil, invalid("unknown reading status %q", status)
	}
	if in.CitationCount < 0 {
		return nil, invalid("citation_count cannot be negative")
	}
	if file != nil {
		if err := checkUploadName(file.Name); err != nil {
			return nil, err
		}
	}
	if err := s.checkFolder(ctx, userID, in.FolderID); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, userID, in.CategoryID); err != nil {
		return nil, err
	}

	res := &model.AcademicResource{
		AuthorID:        userID,
		Title:           title,
		Authors:         strings.TrimSpace(in.Authors),
		Abstract:        strings.TrimSpace(in.Abstract),
		Content:         strings.TrimSpace(in.Content),
		Subject:         strings.TrimSpace(in.Subject),
		Notes:           strings.TrimSpace(in.Notes),
		Keywords:        datatypes.JSONSlice[string](cleanList(in.Keywords)),
		PublicationYear: in.PublicationYear,
		CitationCount:   in.CitationCount,
		ReadingStatus:   status,
		FileType:        model.FileTypeNote,
		FolderID:        in.FolderID,
		UserCategoryID:  in.CategoryID,
	}

	var stored *storage.StoredFile
	if file != nil {
		var err error
		stored, err = s.store.Save(ctx, file.Reader, file.Name, storage.SaveOptions{
			OwnerID:  userID,
			Kind:     resourceKind,
			FolderID: in.FolderID,
		})
		if err != nil {
			return nil, saveError(err)
		}
		res.FilePath = stored.Path
		res.FileSize = stored.Size
		res.FileType = model.FileType(stored.Extension)
		metrics.UploadedBytes.Add(float64(stored.Size))
	}

	if err := s.repo.Create(ctx, res, in.Tags); err != nil {
		if stored != nil && !s.store.Delete(ctx, stored.Path) {
			s.logger.Warnw("orphan file left after failed create", "path", stored.Path)
		}
		return nil, fmt.Errorf("create resource: %w", err)
	}
	metrics.ResourcesCreated.Inc()
	return res, nil
}

// Upload сохраняет файл без создания ресурса.
func (s *ResourceService) Upload(ctx context.Context, userID int64, file FileUpload) (*storage.StoredFile, error) {
	if err := checkUploadName(file.Name); err != nil {
		return nil, err
	}
	stored, err := s.store.Save(ctx, file.Reader, file.Name, storage.SaveOptions{OwnerID: userID, Kind: resourceKind})
	if err != nil {
		return nil, saveError(err)
	}
	metrics.UploadedBytes.Add(float64(stored.Size))
	return stored, nil
}

// Get возвращает ресурс владельца: ErrNotFound если его нет, ErrForbidden если он чужой.
func (s *ResourceService) Get(ctx context.Context, userID, id int64) (*model.AcademicResource, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("resource", err)
	}
	if res.AuthorID != userID {
		return nil, ErrForbidden
	}
	if res.Keywords == nil {
		res.Keywords = datatypes.JSONSlice[string]{}
	}
	return res, nil
}

func (s *ResourceService) List(ctx context.Context, userID int64, f ListFilter) (*ResourcePage, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("unknown reading status %q", f.Status)
	}

	list, total, err := s.repo.List(ctx, repo.ResourceFilter{
		AuthorID:   userID,
		Search:     f.Search,
		Status:     f.Status,
		FolderID:   f.FolderID,
		CategoryID: f.CategoryID,
		Subject:    f.Subject,
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	})
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	if list == nil {
		list = []model.AcademicResource{}
	}
	return &ResourcePage{
		Resources: list,
		Total:     total,
		Page:      page,
		PerPage:   perPage,
		Pages:     Pages(total, perPage),
	}, nil
}

// Update применяет только разрешённые поля. Возвращает, была ли изменена строка.
func (s *ResourceService) Update(ctx context.Context, userID, id int64, upd ResourceUpdate) (bool, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return false, err
	}

	fields := map[string]any{}
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return false, invalid("title cannot be empty")
		}
		fields["title"] = title
	}
	setString(fields, "authors", upd.Authors)
	setString(fields, "abstract", upd.Abstract)
	setString(fields, "content", upd.Content)
	setString(fields, "subject", upd.Subject)
	setString(fields, "notes", upd.Notes)
	if upd.Keywords != nil {
		fields["keywords"] = datatypes.JSONSlice[string](cleanList(*upd.Keywords))
	}
	if upd.PublicationYear.Set {
		fields["publication_year"] = upd.PublicationYear.orNil()
	}
	if upd.CitationCount != nil {
		if *upd.CitationCount < 0 {
			return false, invalid("citation_count cannot be negative")
		}
		fields["citation_count"] = *upd.CitationCount
	}
	if upd.ReadingStatus != nil {
		if !upd.ReadingStatus.Valid() {
			return false, invalid("unknown reading status %q", *upd.ReadingStatus)
		}
		fields["reading_status"] = *upd.ReadingStatus
	}
	if upd.FolderID.Set {
		if err := s.checkFolder(ctx, userID, upd.FolderID.Value); err != nil {
			return false, err
		}
		fields["folder_id"] = upd.FolderID.orNil()
	}
	if upd.CategoryID.Set {
		if err := s.checkCategory(ctx, userID, upd.CategoryID.Value); err != nil {
			return false, err
		}
		fields["user_category_id"] = upd.CategoryID.orNil()
	}

	var tags []string
	if upd.Tags != nil {
		tags = *upd.Tags
	}
	updated, err := s.repo.Update(ctx, id, fields, tags, upd.Tags != nil)
	if err != nil {
		return false, fmt.Errorf("update resource: %w", err)
	}
	return updated, nil
}

// Delete удаляет ресурс и связи тегов, после коммита удаляет файл. Ошибка удаления файла не возвращается.
func (s *ResourceService) Delete(ctx context.Context, userID, id int64) error {
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if !deleted {
		return fmt.Errorf("resource %w", ErrNotFound)
	}
	if res.FilePath != "" && !s.store.Delete(ctx, res.FilePath) {
		s.logger.Debugw("stored file not removed", "resource_id", id, "path", res.FilePath)
	}
	return nil
}

// OpenFile открывает файл ресурса для скачивания; preview разрешён только для PDF.
// Вызывающий закрывает reader.
func (s *ResourceService) OpenFile(ctx context.Context, userID, id int64, preview bool) (*model.AcademicResource, io.ReadCloser, error) {
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	if preview && !strings.EqualFold(string(res.FileType), string(model.FileTypePDF)) {
		return nil, nil, invalid("only PDF files can be previewed")
	}
	if res.FilePath == "" {
		return nil, nil, fmt.Errorf("file %w", ErrNotFound)
	}
	rc, err := s.store.Open(ctx, res.FilePath)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, nil, fmt.Errorf("file %w", ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	return res, rc, nil
}

func (s *ResourceService) checkFolder(ctx context.Context, userID int64, id *int64) error {
	if id == nil {
		return nil
	}
	f, err := s.folders.GetByID(ctx, *id)
	if err != nil || f.UserID != userID {
		if err != nil && !isRecordNotFound(err) {
			return err
		}
		return invalid("folder %d not found", *id)
	}
	return nil
}

func (s *ResourceService) checkCategory(ctx context.Context, userID int64, id *int64) error {
	if id == nil {
		return nil
	}
	c, err := s.categories.GetByID(ctx, *id)
	if err != nil || c.UserID != userID {
		if err != nil && !isRecordNotFound(err) {
			return err
		}
		return invalid("category %d not found", *id)
	}
	return nil
}

// saveError совпадение имени в хранилище отдаётся клиенту как конфликт.
func saveError(err error) error {
	if errors.Is(err, storage.ErrExists) {
		return fmt.Errorf("save file: %w", ErrFileConflict)
	}
	return fmt.Errorf("save file: %w", err)
}

func checkUploadName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("no file selected")
	}
	if !model.UploadableFileTypes[model.FileType(storage.Extension(name))] {
		return ErrUnsupportedFileType
	}
	return nil
}

// cleanList обрезает пробелы и убирает пустые элементы, порядок сохраняется. Никогда не nil.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func setString(fields map[string]any, column string, v *string) {
	if v != nil {
		fields[column] = strings.TrimSpace(*v)
	}
}
