package handlers

import (
	"ScholarDesk/internal/config"
	"ScholarDesk/internal/middleware"
	"ScholarDesk/internal/model"
	"ScholarDesk/internal/service"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// запас на поля формы сверх лимита файла
const formOverhead = 1 << 20

// ResourceHandler CRUD академических ресурсов и отдача файлов.
type ResourceHandler struct {
	ResourceService *service.ResourceService
	Logger          *zap.SugaredLogger
	Config          *config.Config
}

func NewResourceHandler(resourceService *service.ResourceService, logger *zap.SugaredLogger, cfg *config.Config) *ResourceHandler {
	return &ResourceHandler{ResourceService: resourceService, Logger: logger, Config: cfg}
}

// resourceCreateRequest JSON-вариант создания ресурса без файла.
type resourceCreateRequest struct {
	Title           string              `json:"title" validate:"required,max=300"`
	Authors         string              `json:"authors"`
	Abstract        string              `json:"abstract"`
	Content         string              `json:"content"`
	Subject         string              `json:"subject" validate:"max=100"`
	Notes           string              `json:"notes"`
	Keywords        []string            `json:"keywords"`
	Tags            []string            `json:"tags"`
	PublicationYear *int                `json:"publication_year" validate:"omitempty,gte=0,lte=3000"`
	CitationCount   int                 `json:"citation_count" validate:"gte=0"`
	ReadingStatus   model.ReadingStatus `json:"reading_status" validate:"omitempty,oneof=unread reading completed reviewing"`
	FolderID        *int64              `json:"folder_id"`
	UserCategoryID  *int64              `json:"user_category_id"`
	CategoryID      *int64              `json:"category_id"`
}

// resourceUpdateRequest частичное обновление: отсутствующие ключи не трогаются, null очищает.
type resourceUpdateRequest struct {
	Title           *string                 `json:"title" validate:"omitempty,max=300"`
	Authors         *string                 `json:"authors"`
	Abstract        *string                 `json:"abstract"`
	Content         *string                 `json:"content"`
	Subject         *string                 `json:"subject" validate:"omitempty,max=100"`
	Notes           *string                 `json:"notes"`
	Keywords        *[]string               `json:"keywords"`
	PublicationYear service.Optional[int]   `json:"publication_year"`
	CitationCount   *int                    `json:"citation_count" validate:"omitempty,gte=0"`
	ReadingStatus   *model.ReadingStatus    `json:"reading_status"`
	FolderID        service.Optional[int64] `json:"folder_id"`
	UserCategoryID  service.Optional[int64] `json:"user_category_id"`
	CategoryID      service.Optional[int64] `json:"category_id"`
	Tags            *[]string               `json:"tags"`
}

// List список ресурсов с фильтрами и пагинацией.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	q := r.URL.Query()

	filter := service.ListFilter{
		Status:  model.ReadingStatus(strings.TrimSpace(q.Get("status"))),
		Subject: strings.TrimSpace(q.Get("subject")),
		Search:  strings.TrimSpace(q.Get("search")),
	}
	var err error
	if filter.Page, err = intQuery(q.Get("page"), "page"); err != nil {
		respondServiceError(w, h.Logger, "ListResources", err)
		return
	}
	if filter.PerPage, err = intQuery(q.Get("per_page"), "per_page"); err != nil {
		respondServiceError(w, h.Logger, "ListResources", err)
		return
	}
	if filter.FolderID, err = optionalID(q.Get("folder_id"), "folder_id"); err != nil {
		respondServiceError(w, h.Logger, "ListResources", err)
		return
	}
	category := q.Get("category_id")
	if category == "" {
		category = q.Get("user_category_id")
	}
	if filter.CategoryID, err = optionalID(category, "category_id"); err != nil {
		respondServiceError(w, h.Logger, "ListResources", err)
		return
	}

	page, err := h.ResourceService.List(r.Context(), userID, filter)
	if err != nil {
		respondServiceError(w, h.Logger, "ListResources", err)
		return
	}
	respondOK(w, http.StatusOK, "", page)
}

func intQuery(raw, name string) (int, error) {
	n, err := optionalInt(raw, name)
	if err != nil || n == nil {
		return 0, err
	}
	return *n, nil
}

// Create создаёт ресурс из multipart-формы (с файлом или без) или из JSON.
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxUploadBytes()+formOverhead)

	var (
		in   service.ResourceInput
		file *service.FileUpload
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req resourceCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			respondServiceError(w, h.Logger, "CreateResource", err)
			return
		}
		in = req.input()
	} else {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			h.Logger.Warnw("CreateResource: invalid multipart form", "error", err)
			if isTooLarge(err) {
				respondError(w, http.StatusRequestEntityTooLarge, "file is too large")
				return
			}
			respondError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		var err error
		if in, err = formInput(r); err != nil {
			respondServiceError(w, h.Logger, "CreateResource", err)
			return
		}
		f, header, ferr := r.FormFile("file")
		switch {
		case ferr == nil:
			defer f.Close()
			if header.Filename != "" {
				file = &service.FileUpload{Name: header.Filename, Reader: f}
			}
		case !errors.Is(ferr, http.ErrMissingFile):
			respondError(w, http.StatusBadRequest, "invalid file field")
			return
		}
	}

	res, err := h.ResourceService.Create(r.Context(), userID, in, file)
	if err != nil {
		respondServiceError(w, h.Logger, "CreateResource", err)
		return
	}
	h.Logger.Infow("resource created", "user_id", userID, "resource_id", res.ID, "file_type", res.FileType)
	respondOK(w, http.StatusCreated, "Resource created successfully", res)
}

func (req resourceCreateRequest) input() service.ResourceInput {
	category := req.UserCategoryID
	if category == nil {
		category = req.CategoryID
	}
	return service.ResourceInput{
		Title:           req.Title,
		Authors:         req.Authors,
		Abstract:        req.Abstract,
		Content:         req.Content,
		Subject:         req.Subject,
		Notes:           req.Notes,
		Keywords:        req.Keywords,
		Tags:            req.Tags,
		PublicationYear: req.PublicationYear,
		CitationCount:   req.CitationCount,
		ReadingStatus:   req.ReadingStatus,
		FolderID:        req.FolderID,
		CategoryID:      category,
	}
}

// formInput поля multipart-формы; keywords и tags приходят строкой через запятую.
func formInput(r *http.Request) (service.ResourceInput, error) {
	in := service.ResourceInput{
		Title:         r.FormValue("title"),
		Authors:       r.FormValue("authors"),
		Abstract:      r.FormValue("abstract"),
		Content:       r.FormValue("content"),
		Subject:       r.FormValue("subject"),
		Notes:         r.FormValue("notes"),
		Keywords:      splitCSV(r.FormValue("keywords")),
		Tags:          splitCSV(r.FormValue("tags")),
		ReadingStatus: model.ReadingStatus(strings.TrimSpace(r.FormValue("reading_status"))),
	}
	var err error
	if in.PublicationYear, err = optionalInt(r.FormValue("publication_year"), "publication_year"); err != nil {
		return in, err
	}
	citations, err := optionalInt(r.FormValue("citation_count"), "citation_count")
	if err != nil {
		return in, err
	}
	if citations != nil {
		in.CitationCount = *citations
	}
	if in.FolderID, err = optionalID(r.FormValue("folder_id"), "folder_id"); err != nil {
		return in, err
	}
	category := r.FormValue("user_category_id")
	if category == "" {
		category = r.FormValue("category_id")
	}
	if in.CategoryID, err = optionalID(category, "user_category_id"); err != nil {
		return in, err
	}
	return in, nil
}

// Get один ресурс владельца.
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		respondServiceError(w, h.Logger, "GetResource", err)
		return
	}
	res, err := h.ResourceService.Get(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, h.Logger, "GetResource", err)
		return
	}
	respondOK(w, http.StatusOK, "", res)
}

// Update частичное обновление ресурса.
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		respondServiceError(w, h.Logger, "UpdateResource", err)
		return
	}
	var req resourceUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, h.Logger, "UpdateResource", err)
		return
	}

	upd := service.ResourceUpdate{
		Title:           req.Title,
		Authors:         req.Authors,
		Abstract:        req.Abstract,
		Content:         req.Content,
		Subject:         req.Subject,
		Notes:           req.Notes,
		Keywords:        req.Keywords,
		PublicationYear: req.PublicationYear,
		CitationCount:   req.CitationCount,
		ReadingStatus:   req.ReadingStatus,
		FolderID:        req.FolderID,
		CategoryID:      req.UserCategoryID,
		Tags:            req.Tags,
	}
	if !upd.CategoryID.Set {
		upd.CategoryID = req.CategoryID
	}

	updated, err := h.ResourceService.Update(r.Context(), userID, id, upd)
	if err != nil {
		respondServiceError(w, h.Logger, "UpdateResource", err)
		return
	}
	if !updated {
		respondError(w, http.StatusNotFound, "resource not found")
		return
	}
	respondOK(w, http.StatusOK, "Resource updated successfully", nil)
}

// Delete удаляет ресурс вместе с файлом.
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		respondServiceError(w, h.Logger, "DeleteResource", err)
		return
	}
	if err := h.ResourceService.Delete(r.Context(), userID, id); err != nil {
		respondServiceError(w, h.Logger, "DeleteResource", err)
		return
	}
	respondOK(w, http.StatusOK, "Resource deleted successfully", nil)
}

// Upload сохраняет файл без создания ресурса.
func (h *ResourceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxUploadBytes()+formOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if isTooLarge(err) {
			respondError(w, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer f.Close()

	stored, err := h.ResourceService.Upload(r.Context(), userID, service.FileUpload{Name: header.Filename, Reader: f})
	if err != nil {
		respondServiceError(w, h.Logger, "Upload", err)
		return
	}
	respondOK(w, http.StatusCreated, "File uploaded successfully", stored)
}

// Download отдаёт файл ресурса вложением.
func (h *ResourceHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, false)
}

// Preview отдаёт PDF для просмотра в браузере.
func (h *ResourceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, true)
}

func (h *ResourceHandler) serveFile(w http.ResponseWriter, r *http.Request, preview bool) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		respondServiceError(w, h.Logger, "ServeFile", err)
		return
	}
	res, body, err := h.ResourceService.OpenFile(r.Context(), userID, id, preview)
	if err != nil {
		respondServiceError(w, h.Logger, "ServeFile", err)
		return
	}
	defer body.Close()

	ext := strings.ToLower(string(res.FileType))
	contentType := mime.TypeByExtension("." + ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := "attachment"
	if preview {
		contentType = "application/pdf"
		disposition = "inline"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{
		"filename": downloadName(res.Title, ext),
	}))
	if res.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(res.FileSize, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.Logger.Warnw("ServeFile: copy interrupted", "resource_id", id, "error", err)
	}
}

// downloadName имя файла для Content-Disposition: "{title}.{ext}" без разделителей путей.
func downloadName(title, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', '\r', '\n':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "resource"
	}
	return name + "." + ext
}
