package handlers

import (
	"ScholarDesk/internal/service"
	"ScholarDesk/internal/validation"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var validate = validation.New()

// envelope общий формат JSON-ответа.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// respondServiceError переводит ошибку сервиса в HTTP-статус. Причина 500 пишется только в лог.
func respondServiceError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Error())
	case isTooLarge(err):
		respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrUnsupportedFileType),
		errors.Is(err, service.ErrFolderCycle):
		respondError(w, http.StatusBadRequest, clientMessage(err))
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionInvalid):
		respondError(w, http.StatusUnauthorized, clientMessage(err))
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, service.ErrForbidden.Error())
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, clientMessage(err))
	case errors.Is(err, service.ErrUsernameTaken):
		respondError(w, http.StatusConflict, service.ErrUsernameTaken.Error())
	case errors.Is(err, service.ErrFileConflict):
		respondError(w, http.StatusConflict, service.ErrFileConflict.Error())
	default:
		logger.Errorw(op+": internal error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// isTooLarge true, если тело запроса упёрлось в http.MaxBytesReader.
func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

// clientMessage убирает служебный префикс "validation failed: ".
func clientMessage(err error) string {
	msg := err.Error()
	prefix := service.ErrValidation.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}

// decodeJSON читает тело запроса в dst и прогоняет валидацию.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", service.ErrValidation)
		}
		if isTooLarge(err) {
			return err
		}
		return fmt.Errorf("%w: invalid JSON body", service.ErrValidation)
	}
	return validate.Validate(dst)
}

// idParam числовой параметр пути {id}.
func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", service.ErrValidation, raw)
	}
	return id, nil
}

// optionalID необязательный числовой query/form параметр.
func optionalID(raw, name string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", service.ErrValidation, name)
	}
	return &id, nil
}

// optionalInt необязательное целое.
func optionalInt(raw, name string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", service.ErrValidation, name)
	}
	return &n, nil
}

// splitCSV разбивает "a, b,,c" в [a b c].
func splitCSV(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
