package handlers

import (
	"ScholarDesk/internal/audit"
	"ScholarDesk/internal/config"
	"ScholarDesk/internal/metrics"
	"ScholarDesk/internal/middleware"
	"ScholarDesk/internal/ratelimit"
	"ScholarDesk/internal/service"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Services зависимости HTTP-слоя.
type Services struct {
	Users      *service.UserService
	Resources  *service.ResourceService
	Folders    *service.FolderService
	Categories *service.CategoryService
	Catalog    *service.CatalogService
}

type Handler struct {
	Router  chi.Router
	limiter *ratelimit.KeyedRateLimiter
}

// Close останавливает фоновые задачи хендлера.
func (h *Handler) Close() {
	h.limiter.Stop()
}

// NewHandler разводящий для хендлеров
func NewHandler(
	svc Services,
	auditLog *audit.Logger,
	logger *zap.SugaredLogger,
	config *config.Config,
	version string,
) *Handler {
	r := chi.NewRouter()

	// адрес клиента из заголовков берём только за своим прокси
	if config.TrustedProxy {
		r.Use(chimw.RealIP)
	}
	if len(config.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   config.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Encoding"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAudit(auditLog))
	if config.Metrics() {
		metrics.Register()
		r.Use(middleware.WithMetrics)
	}
	r.Use(middleware.WithAuth(config.AuthSecret, svc.Users))

	limiter := ratelimit.New(config.LoginRPS, config.LoginBurst)

	// Handlers
	userHandler := NewUserHandler(svc.Users, logger, config)
	adminHandler := NewAdminHandler(svc.Users, logger)
	systemHandler := NewSystemHandler(auditLog, logger, version, time.Now())
	resourceHandler := NewResourceHandler(svc.Resources, logger, config)
	folderHandler := NewFolderHandler(svc.Folders, logger)
	categoryHandler := NewCategoryHandler(svc.Categories, logger)
	catalogHandler := NewCatalogHandler(svc.Catalog, logger)

	// User routes
	r.Post("/register", userHandler.Register)
	r.With(middleware.RateLimit(limiter)).Post("/login", userHandler.Login)
	r.Post("/logout", userHandler.Logout)
	r.With(middleware.RequireAuth).Get("/me", userHandler.Me)
	r.Get("/version", systemHandler.Version)
	if config.Metrics() {
		r.Handle("/metrics", metrics.Handler())
	}

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/admin/grant", adminHandler.Grant)
		r.Post("/admin/grant", adminHandler.Grant)
		r.Get("/admin/revoke", adminHandler.Revoke)
		r.Post("/admin/revoke", adminHandler.Revoke)
		r.Get("/admin/list", adminHandler.List)

		r.Get("/logs/admin", systemHandler.AdminLog)
		r.Get("/logs/debug", systemHandler.DebugLog)
		r.Get("/status", systemHandler.Status)
	})

	// Academic library routes
	r.Route("/academic/api", func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/resources", resourceHandler.List)
		r.Post("/resources", resourceHandler.Create)
		r.Get("/resources/{id}", resourceHandler.Get)
		r.Put("/resources/{id}", resourceHandler.Update)
		r.Delete("/resources/{id}", resourceHandler.Delete)
		r.Get("/download/{id}", resourceHandler.Download)
		r.Get("/preview/{id}", resourceHandler.Preview)
		r.Post("/upload", resourceHandler.Upload)

		r.Get("/folders", folderHandler.List)
		r.Post("/folders", folderHandler.Create)
		r.Get("/folders/tree", folderHandler.Tree)
		r.Put("/folders/{id}", folderHandler.Update)
		r.Delete("/folders/{id}", folderHandler.Delete)

		r.Get("/categories", categoryHandler.List)
		r.Post("/categories", categoryHandler.Create)
		r.Put("/categories/{id}", categoryHandler.Update)
		r.Delete("/categories/{id}", categoryHandler.Delete)

		r.Get("/subjects", catalogHandler.Subjects)
		r.Get("/tags", catalogHandler.Tags)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return &Handler{Router: r, limiter: limiter}
}
