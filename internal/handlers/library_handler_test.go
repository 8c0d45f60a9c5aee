package handlers_test

import (
	"ScholarDesk/internal/model"
	"ScholarDesk/internal/repo"
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type folderDTO struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	ParentID *int64      `json:"parent_id"`
	Color    string      `json:"color"`
	Children []folderDTO `json:"children"`
}

func (a *testApp) mkFolder(t *testing.T, cookies []*http.Cookie, body string) folderDTO {
	t.Helper()
	rr := a.doJSON(t, http.MethodPost, "/academic/api/folders", body, cookies)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var f folderDTO
	decodeData(t, rr, &f)
	return f
}

func TestFolder_DeleteReparents(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")

	root := app.mkFolder(t, alice, `{"name":"Root"}`)
	assert.Equal(t, model.DefaultFolderColor, root.Color)
	mid := app.mkFolder(t, alice, fmt.Sprintf(`{"name":"Mid","parent_id":%d}`, root.ID))
	leaf := app.mkFolder(t, alice, fmt.Sprintf(`{"name":"Leaf","parent_id":%d}`, mid.ID))
	res := app.createJSON(t, alice, fmt.Sprintf(`{"title":"In mid","folder_id":%d}`, mid.ID))

	rr := app.doJSON(t, http.MethodDelete, fmt.Sprintf("/academic/api/folders/%d", mid.ID), "", alice)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var gotLeaf model.Folder
	require.NoError(t, app.db.First(&gotLeaf, leaf.ID).Error)
	require.NotNil(t, gotLeaf.ParentID)
	assert.Equal(t, root.ID, *gotLeaf.ParentID)

	var gotRes model.AcademicResource
	require.NoError(t, app.db.First(&gotRes, res.ID).Error)
	require.NotNil(t, gotRes.FolderID)
	assert.Equal(t, root.ID, *gotRes.FolderID)

	rr = app.doJSON(t, http.MethodGet, fmt.Sprintf("/academic/api/folders?parent_id=%d", root.ID), "", alice)
	require.Equal(t, http.StatusOK, rr.Code)
	var children []folderDTO
	decodeData(t, rr, &children)
	require.Len(t, children, 1)
	assert.Equal(t, "Leaf", children[0].Name)
}

func TestFolder_TreeAndCycle(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")
	bob := app.signup(t, "bob")

	a := app.mkFolder(t, alice, `{"name":"A"}`)
	b := app.mkFolder(t, alice, fmt.Sprintf(`{"name":"B","parent_id":%d}`, a.ID))
	c := app.mkFolder(t, alice, fmt.Sprintf(`{"name":"C","parent_id":%d}`, b.ID))
	app.mkFolder(t, alice, `{"name":"Z"}`)

	rr := app.doJSON(t, http.MethodGet, "/academic/api/folders/tree", "", alice)
	require.Equal(t, http.StatusOK, rr.Code)
	var tree []folderDTO
	decodeData(t, rr, &tree)
	require.Len(t, tree, 2)
	assert.Equal(t, "A", tree[0].Name)
	require.Len(t, tree[0].Children, 1)
	require.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, "C", tree[0].Children[0].Children[0].Name)
	assert.NotNil(t, tree[1].Children)
	assert.Empty(t, tree[1].Children)

	// A под C образует цикл
	rr = app.doJSON(t, http.MethodPut, fmt.Sprintf("/academic/api/folders/%d", a.ID), fmt.Sprintf(`{"parent_id":%d}`, c.ID), alice)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode(t, rr).Message, "descendant")

	rr = app.doJSON(t, http.MethodPut, fmt.Sprintf("/academic/api/folders/%d", a.ID), fmt.Sprintf(`{"parent_id":%d}`, a.ID), alice)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// перенос C в корень и переименование
	rr = app.doJSON(t, http.MethodPut, fmt.Sprintf("/academic/api/folders/%d", c.ID), `{"parent_id":null,"name":"C2","color":"#ff0000"}`, alice)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var moved folderDTO
	decodeData(t, rr, &moved)
	assert.Nil(t, moved.ParentID)
	assert.Equal(t, "C2", moved.Name)

	rr = app.doJSON(t, http.MethodPut, fmt.Sprintf("/academic/api/folders/%d", c.ID), `{"color":"red"}`, alice)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	// #RRGGBBAA не помещается в колонку цвета
	rr = app.doJSON(t, http.MethodPost, "/academic/api/folders", `{"name":"Alpha","color":"#007bffaa"}`, alice)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "color must be a hex color like #007bff", decode(t, rr).Message)

	// чужая папка
	rr = app.doJSON(t, http.MethodDelete, fmt.Sprintf("/academic/api/folders/%d", a.ID), "", bob)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = app.doJSON(t, http.MethodPost, "/academic/api/folders", fmt.Sprintf(`{"name":"x","parent_id":%d}`, a.ID), bob)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = app.doJSON(t, http.MethodPost, "/academic/api/folders", `{"name":""}`, alice)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCategory_CRUD(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")
	bob := app.signup(t, "bob")

	rr := app.doJSON(t, http.MethodPost, "/academic/api/categories", `{"name":"Reading list","description":"later"}`, alice)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var cat struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	decodeData(t, rr, &cat)
	assert.Equal(t, model.DefaultCategoryColor, cat.Color)

	rr = app.doJSON(t, http.MethodPut, fmt.Sprintf("/academic/api/categories/%d", cat.ID), `{"color":"#6c757dff"}`, alice)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	res := app.createJSON(t, alice, fmt.Sprintf(`{"title":"Tagged","user_category_id":%d}`, cat.ID))

	rr = app.doJSON(t, http.MethodGet, fmt.Sprintf("/academic/api/resources?category_id=%d", cat.ID), "", alice)
	var page pageDTO
	decodeData(t, rr, &page)
	assert.Equal(t, int64(1), page.Total)

	rr = app.doJSON(t, http.MethodPut, fmt.Sprintf("/academic/api/categories/%d", cat.ID), `{"name":"Must read"}`, alice)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &cat)
	assert.Equal(t, "Must read", cat.Name)

	rr = app.doJSON(t, http.MethodGet, "/academic/api/categories", "", bob)
	var none []any
	decodeData(t, rr, &none)
	assert.Empty(t, none)

	rr = app.doJSON(t, http.MethodDelete, fmt.Sprintf("/academic/api/categories/%d", cat.ID), "", bob)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = app.doJSON(t, http.MethodDelete, fmt.Sprintf("/academic/api/categories/%d", cat.ID), "", alice)
	require.Equal(t, http.StatusOK, rr.Code)

	var got model.AcademicResource
	require.NoError(t, app.db.First(&got, res.ID).Error)
	assert.Nil(t, got.UserCategoryID)

	rr = app.doJSON(t, http.MethodDelete, fmt.Sprintf("/academic/api/categories/%d", cat.ID), "", alice)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCatalog_SubjectsAndTags(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")
	_, err := repo.NewSubjectRepository(app.db).Seed(context.Background(), repo.DefaultSubjects())
	require.NoError(t, err)

	rr := app.doJSON(t, http.MethodGet, "/academic/api/subjects", "", alice)
	require.Equal(t, http.StatusOK, rr.Code)
	var subjects []struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	decodeData(t, rr, &subjects)
	require.Len(t, subjects, 13)
	assert.Equal(t, "Computer Science", subjects[0].Name)
	assert.Equal(t, "computer-science", subjects[0].Slug)
	assert.Equal(t, "Other", subjects[12].Name)

	app.createJSON(t, alice, `{"title":"one","tags":["ml","nlp"]}`)
	app.createJSON(t, alice, `{"title":"two","tags":["ml"]}`)

	rr = app.doJSON(t, http.MethodGet, "/academic/api/tags?limit=1", "", alice)
	require.Equal(t, http.StatusOK, rr.Code)
	var tags []struct {
		Name       string `json:"name"`
		UsageCount int    `json:"usage_count"`
	}
	decodeData(t, rr, &tags)
	require.Len(t, tags, 1)
	assert.Equal(t, "ml", tags[0].Name)
	assert.Equal(t, 2, tags[0].UsageCount)
}
