package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_GrantRevoke(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "root")
	app.makeAdmin(t, "root")
	admin := app.login(t, "root", "secret-pw")
	user := app.signup(t, "frank")

	// обычный пользователь и аноним получают 403
	rr := app.doJSON(t, http.MethodGet, "/admin/list", "", user)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = app.doJSON(t, http.MethodGet, "/admin/list", "", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = app.doJSON(t, http.MethodPost, "/admin/grant", `{"username":"frank"}`, admin)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, decode(t, rr).Success)

	// права применяются к уже открытой сессии без перелогина
	rr = app.doJSON(t, http.MethodGet, "/admin/list", "", user)
	require.Equal(t, http.StatusOK, rr.Code)
	var users []struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		IsAdmin  bool   `json:"is_admin"`
	}
	decodeData(t, rr, &users)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.True(t, u.IsAdmin, u.Username)
	}

	rr = app.doJSON(t, http.MethodGet, "/admin/revoke?username=frank", "", admin)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = app.doJSON(t, http.MethodGet, "/admin/list", "", user)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// логин администратора отдаёт is_admin
	rr = app.doJSON(t, http.MethodPost, "/login", `{"username":"root","password":"secret-pw"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode(t, rr).IsAdmin)
}

func TestAdmin_GrantErrors(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "root")
	app.makeAdmin(t, "root")
	admin := app.login(t, "root", "secret-pw")

	rr := app.doJSON(t, http.MethodPost, "/admin/grant", `{}`, admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "username is required", decode(t, rr).Message)

	rr = app.doJSON(t, http.MethodGet, "/admin/grant?username=ghost", "", admin)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.False(t, decode(t, rr).Success)

	// форма тоже принимается
	form := url.Values{"username": {"root"}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/admin/revoke", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range admin {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
