package handlers

import (
	"ScholarDesk/internal/config"
	"ScholarDesk/internal/middleware"
	"ScholarDesk/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// UserHandler регистрация, вход и выход.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

// NewUserHandler создаёт хендлер пользователей
func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	IsAdmin bool   `json:"is_admin"`
}

type userDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// Register регистрация пользователя
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.Logger.Warnw("Register: invalid request", "error", err)
		respondServiceError(w, h.Logger, "Register", err)
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, h.Logger, "Register", err)
		return
	}

	h.Logger.Infow("user registered", "user_id", user.ID, "username", user.Username)
	respondOK(w, http.StatusCreated, "User registered successfully",
		userDTO{ID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin})
}

// Login вход по логину и паролю, открывает серверную сессию и ставит cookie.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, h.Logger, "Login", err)
		return
	}

	meta := service.SessionMeta{IP: middleware.ClientIP(r), UserAgent: r.UserAgent()}
	user, sess, err := h.UserService.Login(r.Context(), req.Username, req.Password, meta)
	if err != nil {
		respondServiceError(w, h.Logger, "Login", err)
		return
	}

	if err := middleware.SetLoginCookie(w, sess, h.Config.AuthSecret, h.Config.SecureCookies); err != nil {
		// сессия без cookie бесполезна
		_ = h.UserService.Logout(r.Context(), sess.ID)
		respondServiceError(w, h.Logger, "Login", err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "Login successful",
		IsAdmin: user.IsAdmin,
	})
}

// Logout удаляет сессию и просрочивает cookie. Для анонима тоже успешен.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sid, ok := middleware.GetSessionIDFromContext(r.Context()); ok {
		if err := h.UserService.Logout(r.Context(), sid); err != nil {
			h.Logger.Warnw("Logout: delete session", "error", err)
		}
	}
	middleware.ClearLoginCookie(w, h.Config.SecureCookies)
	respondOK(w, http.StatusOK, "Logged out", nil)
}

// Me текущий пользователь.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUserFromContext(r.Context())
	respondOK(w, http.StatusOK, "", userDTO{ID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin})
}
