package handlers

import (
	"ScholarDesk/internal/middleware"
	"ScholarDesk/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// CategoryHandler пользовательские категории.
type CategoryHandler struct {
	CategoryService *service.CategoryService
	Logger          *zap.SugaredLogger
}

func NewCategoryHandler(categoryService *service.CategoryService, logger *zap.SugaredLogger) *CategoryHandler {
	return &CategoryHandler{CategoryService: categoryService, Logger: logger}
}

type categoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,rgbcolor"`
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	list, err := h.CategoryService.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.Logger, "ListCategories", err)
		return
	}
	respondOK(w, http.StatusOK, "", list)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, h.Logger, "CreateCategory", err)
		return
	}
	in := service.CategoryInput{}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Color != nil {
		in.Color = *req.Color
	}
	c, err := h.CategoryService.Create(r.Context(), userID, in)
	if err != nil {
		respondServiceError(w, h.Logger, "CreateCategory", err)
		return
	}
	respondOK(w, http.StatusCreated, "Category created successfully", c)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		respondServiceError(w, h.Logger, "UpdateCategory", err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, h.Logger, "UpdateCategory", err)
		return
	}
	c, err := h.CategoryService.Update(r.Context(), userID, id, service.CategoryUpdate{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		respondServiceError(w, h.Logger, "UpdateCategory", err)
		return
	}
	respondOK(w, http.StatusOK, "Category updated successfully", c)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		respondServiceError(w, h.Logger, "DeleteCategory", err)
		return
	}
	if err := h.CategoryService.Delete(r.Context(), userID, id); err != nil {
		respondServiceError(w, h.Logger, "DeleteCategory", err)
		return
	}
	respondOK(w, http.StatusOK, "Category deleted successfully", nil)
}
