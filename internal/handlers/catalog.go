package handlers

import (
	"ScholarDesk/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// CatalogHandler справочники дисциплин и тегов.
type CatalogHandler struct {
	CatalogService *service.CatalogService
	Logger         *zap.SugaredLogger
}

func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.SugaredLogger) *CatalogHandler {
	return &CatalogHandler{CatalogService: catalogService, Logger: logger}
}

func (h *CatalogHandler) Subjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.CatalogService.Subjects(r.Context())
	if err != nil {
		respondServiceError(w, h.Logger, "Subjects", err)
		return
	}
	respondOK(w, http.StatusOK, "", list)
}

// Tags теги по популярности; limit=0 или без limit все.
func (h *CatalogHandler) Tags(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r.URL.Query().Get("limit"), "limit")
	if err != nil {
		respondServiceError(w, h.Logger, "Tags", err)
		return
	}
	list, err := h.CatalogService.Tags(r.Context(), limit)
	if err != nil {
		respondServiceError(w, h.Logger, "Tags", err)
		return
	}
	respondOK(w, http.StatusOK, "", list)
}
