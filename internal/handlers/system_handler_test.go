package handlers_test

import (
	"ScholarDesk/internal/config"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystem_LogsAndStatus(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "root")
	app.makeAdmin(t, "root")
	admin := app.login(t, "root", "secret-pw")

	rr := app.doJSON(t, http.MethodGet, "/status", "", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = app.doJSON(t, http.MethodGet, "/status", "", admin)
	require.Equal(t, http.StatusOK, rr.Code)
	var status struct {
		Server        string `json:"server"`
		Status        string `json:"status"`
		Version       string `json:"version"`
		StartTime     string `json:"start_time"`
		UptimeSeconds int64  `json:"uptime_seconds"`
	}
	decodeData(t, rr, &status)
	assert.Equal(t, "ScholarDesk", status.Server)
	assert.Equal(t, "running", status.Status)
	assert.Equal(t, "test", status.Version)
	assert.NotEmpty(t, status.StartTime)

	rr = app.doJSON(t, http.MethodGet, "/logs/admin", "", admin)
	require.Equal(t, http.StatusOK, rr.Code)
	var lines []string
	decodeData(t, rr, &lines)
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "POST /register -> 201")
	assert.Contains(t, joined, "GET /status -> 403")

	rr = app.doJSON(t, http.MethodGet, "/logs/debug", "", admin)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &lines)
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], `"method":"POST"`)
}

func TestSystem_VersionAndNotFound(t *testing.T) {
	app := newTestApp(t)

	rr := app.doJSON(t, http.MethodGet, "/version", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var v map[string]string
	decodeData(t, rr, &v)
	assert.Equal(t, "test", v["version"])

	rr = app.doJSON(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.False(t, decode(t, rr).Success)
}

func TestSystem_MetricsEndpoint(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.MetricsEnabled = "true" })

	app.doJSON(t, http.MethodGet, "/version", "", nil)
	rr := app.doJSON(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "scholardesk_http_requests_total")
}
