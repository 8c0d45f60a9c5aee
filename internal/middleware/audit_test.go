package middleware

import (
	"ScholarDesk/internal/audit"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithAudit_RecordsStatus(t *testing.T) {
	dir := t.TempDir()
	l, err := audit.Open(filepath.Join(dir, "audit.log"), filepath.Join(dir, "admin.log"))
	require.NoError(t, err)
	defer l.Close()

	h := WithAudit(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	req := httptest.NewRequest(http.MethodDelete, "/academic/api/resources/9", nil)
	req.Header.Set("User-Agent", "curl/8.0")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	lines, err := l.AuditLines()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"method":"DELETE"`)
	assert.Contains(t, lines[0], `"status":404`)
	assert.Contains(t, lines[0], `"user_agent":"curl/8.0"`)

	admin, err := l.AdminLines()
	require.NoError(t, err)
	require.Len(t, admin, 1)
	assert.True(t, strings.Contains(admin[0], "DELETE /academic/api/resources/9 -> 404"), admin[0])
}
