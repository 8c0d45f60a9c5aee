package handlers_test

import (
	"ScholarDesk/internal/audit"
	"ScholarDesk/internal/config"
	"ScholarDesk/internal/handlers"
	"ScholarDesk/internal/repo"
	"ScholarDesk/internal/service"
	"ScholarDesk/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testApp роутер поверх in-memory SQLite и временного каталога файлов.
type testApp struct {
	router http.Handler
	db     *gorm.DB
	users  *service.UserService
	audit  *audit.Logger
	cfg    *config.Config
	root   string
}

type testOption func(*config.Config)

func newTestApp(t *testing.T, opts ...testOption) *testApp {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := repo.OpenDB("sqlite", "file:h_"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	root := t.TempDir()
	cfg := &config.Config{
		AuthSecret:     "test-secret",
		UploadDir:      filepath.Join(root, "uploads"),
		LoginRPS:       100,
		LoginBurst:     100,
		MaxUploadMB:    1,
		MetricsEnabled: "false",
	}
	for _, o := range opts {
		o(cfg)
	}
	cfg.ApplyDefaults()

	auditLog, err := audit.Open(filepath.Join(root, "logs", "audit.log"), filepath.Join(root, "logs", "admin.log"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = auditLog.Close() })

	logger := zap.NewNop().Sugar()
	users := service.NewUserService(repo.NewUserRepository(db), repo.NewSessionRepository(db), cfg.SessionTTL())
	svc := handlers.Services{
		Users: users,
		Resources: service.NewResourceService(
			repo.NewResourceRepository(db),
			repo.NewFolderRepository(db),
			repo.NewCategoryRepository(db),
			storage.NewLocalStorage(cfg.UploadDir),
			logger,
		),
		Folders:    service.NewFolderService(repo.NewFolderRepository(db)),
		Categories: service.NewCategoryService(repo.NewCategoryRepository(db)),
		Catalog:    service.NewCatalogService(repo.NewSubjectRepository(db), repo.NewTagRepository(db)),
	}
	h := handlers.NewHandler(svc, auditLog, logger, cfg, "test")
	t.Cleanup(h.Close)

	return &testApp{router: h.Router, db: db, users: users, audit: auditLog, cfg: cfg, root: root}
}

// envelope ответ API в общем конверте.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	IsAdmin bool            `json:"is_admin"`
	Data    json.RawMessage `json:"data"`
}

func (a *testApp) do(t *testing.T, method, path string, body io.Reader, contentType string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) doJSON(t *testing.T, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return a.do(t, method, path, r, "application/json", cookies)
}

// signup регистрирует пользователя и возвращает cookie сессии.
func (a *testApp) signup(t *testing.T, username string) []*http.Cookie {
	t.Helper()
	body := `{"username":"` + username + `","password":"secret-pw"}`
	rr := a.doJSON(t, http.MethodPost, "/register", body, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return a.login(t, username, "secret-pw")
}

func (a *testApp) login(t *testing.T, username, password string) []*http.Cookie {
	t.Helper()
	rr := a.doJSON(t, http.MethodPost, "/login", `{"username":"`+username+`","password":"`+password+`"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return rr.Result().Cookies()
}

func (a *testApp) makeAdmin(t *testing.T, username string) {
	t.Helper()
	require.NoError(t, a.users.SetAdmin(context.Background(), username, true))
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dst any) envelope {
	t.Helper()
	env := decode(t, rr)
	require.NoError(t, json.Unmarshal(env.Data, dst), string(env.Data))
	return env
}

// multipartBody форма с полями и необязательным файлом.
func multipartBody(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

