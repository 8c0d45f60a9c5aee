package handlers

import (
	"ScholarDesk/internal/audit"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const serverName = "ScholarDesk"

// SystemHandler журналы и состояние сервера.
type SystemHandler struct {
	Audit     *audit.Logger
	Logger    *zap.SugaredLogger
	version   string
	startTime time.Time
}

func NewSystemHandler(auditLog *audit.Logger, logger *zap.SugaredLogger, version string, started time.Time) *SystemHandler {
	if version == "" {
		version = "dev"
	}
	return &SystemHandler{Audit: auditLog, Logger: logger, version: version, startTime: started}
}

// AdminLog строки журнала администратора текущего запуска.
func (h *SystemHandler) AdminLog(w http.ResponseWriter, r *http.Request) {
	h.logLines(w, "AdminLog", func() ([]string, error) { return h.Audit.AdminLines() })
}

// DebugLog строки JSON-журнала аудита.
func (h *SystemHandler) DebugLog(w http.ResponseWriter, r *http.Request) {
	h.logLines(w, "DebugLog", func() ([]string, error) { return h.Audit.AuditLines() })
}

func (h *SystemHandler) logLines(w http.ResponseWriter, op string, read func() ([]string, error)) {
	if h.Audit == nil {
		respondOK(w, http.StatusOK, "", []string{})
		return
	}
	lines, err := read()
	if err != nil {
		respondServiceError(w, h.Logger, op, err)
		return
	}
	respondOK(w, http.StatusOK, "", lines)
}

type statusDTO struct {
	Server        string `json:"server"`
	Status        string `json:"status"`
	Version       string `json:"version"`
	StartTime     string `json:"start_time"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Status состояние сервера.
func (h *SystemHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondOK(w, http.StatusOK, "", statusDTO{
		Server:        serverName,
		Status:        "running",
		Version:       h.version,
		StartTime:     h.startTime.Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

// Version версия сборки.
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	respondOK(w, http.StatusOK, "", map[string]string{"server": serverName, "version": h.version})
}
