package handlers

import (
	"ScholarDesk/internal/service"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// AdminHandler управление правами администратора.
type AdminHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
}

func NewAdminHandler(userService *service.UserService, logger *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{UserService: userService, Logger: logger}
}

// Grant выдаёт права администратора.
func (h *AdminHandler) Grant(w http.ResponseWriter, r *http.Request) {
	h.setAdmin(w, r, true)
}

// Revoke снимает права администратора.
func (h *AdminHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	h.setAdmin(w, r, false)
}

func (h *AdminHandler) setAdmin(w http.ResponseWriter, r *http.Request, isAdmin bool) {
	username := usernameParam(r)
	if username == "" {
		respondError(w, http.StatusBadRequest, "username is required")
		return
	}
	if err := h.UserService.SetAdmin(r.Context(), username, isAdmin); err != nil {
		respondServiceError(w, h.Logger, "SetAdmin", err)
		return
	}

	action := "granted to"
	if !isAdmin {
		action = "revoked from"
	}
	h.Logger.Infow("admin rights changed", "username", username, "is_admin", isAdmin)
	respondOK(w, http.StatusOK, fmt.Sprintf("Admin rights %s %s", action, username), nil)
}

// usernameParam username из JSON-тела, формы или query.
func usernameParam(r *http.Request) string {
	if r.Method == http.MethodPost {
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			var body struct {
				Username string `json:"username"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Username != "" {
				return strings.TrimSpace(body.Username)
			}
		} else if v := r.PostFormValue("username"); v != "" {
			return strings.TrimSpace(v)
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("username"))
}

// List список пользователей с флагом администратора.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		respondServiceError(w, h.Logger, "ListUsers", err)
		return
	}
	out := make([]userDTO, 0, len(users))
	for _, u := range users {
		out = append(out, userDTO{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin})
	}
	respondOK(w, http.StatusOK, "", out)
}
