package handlers

import (
	"ScholarDesk/internal/middleware"
	"ScholarDesk/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// FolderHandler папки пользователя.
type FolderHandler struct {
	FolderService *service.FolderService
	Logger        *zap.SugaredLogger
}

func NewFolderHandler(folderService *service.FolderService, logger *zap.SugaredLogger) *FolderHandler {
	return &FolderHandler{FolderService: folderService, Logger: logger}
}

type folderCreateRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Color       string `json:"color" validate:"omitempty,rgbcolor"`
	SortOrder   int    `json:"sort_order"`
	ParentID    *int64 `json:"parent_id"`
}

type folderUpdateRequest struct {
	Name        *string                 `json:"name" validate:"omitempty,max=100"`
	Description *string                 `json:"description"`
	Color       *string                 `json:"color" validate:"omitempty,rgbcolor"`
	SortOrder   *int                    `json:"sort_order"`
	ParentID    service.Optional[int64] `json:"parent_id"`
}

// List папки одного уровня; без parent_id корневые.
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	parentID, err := optionalID(r.URL.Query().Get("parent_id"), "parent_id")
	if err != nil {
		respondServiceError(w, h.Logger, "ListFolders", err)
		return
	}
	folders, err := h.FolderService.List(r.Context(), userID, parentID)
	if err != nil {
		respondServiceError(w, h.Logger, "ListFolders", err)
		return
	}
	respondOK(w, http.StatusOK, "", folders)
}

// Tree всё дерево папок пользователя.
func (h *FolderHandler) Tree(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	tree, err := h.FolderService.Tree(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.Logger, "FolderTree", err)
		return
	}
	respondOK(w, http.StatusOK, "", tree)
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	var req folderCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, h.Logger, "CreateFolder", err)
		return
	}
	f, err := h.FolderService.Create(r.Context(), userID, service.FolderInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		SortOrder:   req.SortOrder,
		ParentID:    req.ParentID,
	})
	if err != nil {
		respondServiceError(w, h.Logger, "CreateFolder", err)
		return
	}
	respondOK(w, http.StatusCreated, "Folder created successfully", f)
}

func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		respondServiceError(w, h.Logger, "UpdateFolder", err)
		return
	}
	var req folderUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, h.Logger, "UpdateFolder", err)
		return
	}
	f, err := h.FolderService.Update(r.Context(), userID, id, service.FolderUpdate{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		SortOrder:   req.SortOrder,
		ParentID:    req.ParentID,
	})
	if err != nil {
		respondServiceError(w, h.Logger, "UpdateFolder", err)
		return
	}
	respondOK(w, http.StatusOK, "Folder updated successfully", f)
}

func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		respondServiceError(w, h.Logger, "DeleteFolder", err)
		return
	}
	if err := h.FolderService.Delete(r.Context(), userID, id); err != nil {
		respondServiceError(w, h.Logger, "DeleteFolder", err)
		return
	}
	respondOK(w, http.StatusOK, "Folder deleted successfully", nil)
}
