package service

import (
	"ScholarDesk/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderService_CreateAndTree(t *testing.T) {
	lib := newLibrary(t)
	ctx := context.Background()

	_, err := lib.folders.Create(ctx, lib.alice, FolderInput{Name: " "})
	assert.ErrorIs(t, err, ErrValidation)

	root, err := lib.folders.Create(ctx, lib.alice, FolderInput{Name: "Thesis"})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultFolderColor, root.Color)
	child, err := lib.folders.Create(ctx, lib.alice, FolderInput{Name: "Chapter 1", ParentID: &root.ID})
	require.NoError(t, err)
	_, err = lib.folders.Create(ctx, lib.alice, FolderInput{Name: "Drafts", ParentID: &child.ID})
	require.NoError(t, err)
	_, err = lib.folders.Create(ctx, lib.alice, FolderInput{Name: "Misc"})
	require.NoError(t, err)

	// родитель чужого пользователя
	_, err = lib.folders.Create(ctx, lib.bob, FolderInput{Name: "x", ParentID: &root.ID})
	assert.ErrorIs(t, err, ErrValidation)

	tree, err := lib.folders.Tree(ctx, lib.alice)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "Misc", tree[0].Name)
	assert.NotNil(t, tree[0].Children)
	assert.Empty(t, tree[0].Children)
	thesis := tree[1]
	require.Len(t, thesis.Children, 1)
	require.Len(t, thesis.Children[0].Children, 1)
	assert.Equal(t, "Drafts", thesis.Children[0].Children[0].Name)

	roots, err := lib.folders.List(ctx, lib.alice, nil)
	require.NoError(t, err)
	assert.Len(t, roots, 2)

	empty, err := lib.folders.Tree(ctx, lib.bob)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestBuildTree_IgnoresCycles(t *testing.T) {
	a, b := int64(1), int64(2)
	folders := []model.Folder{
		{ID: 1, Name: "a", ParentID: &b},
		{ID: 2, Name: "b", ParentID: &a},
		{ID: 3, Name: "root"},
	}
	tree := BuildTree(folders)
	require.Len(t, tree, 1)
	assert.Equal(t, "root", tree[0].Name)
	assert.Empty(t, tree[0].Children)
}

func TestFolderService_Update_RejectsCycles(t *testing.T) {
	lib := newLibrary(t)
	ctx := context.Background()

	top, _ := lib.folders.Create(ctx, lib.alice, FolderInput{Name: "top"})
	mid, _ := lib.folders.Create(ctx, lib.alice, FolderInput{Name: "mid", ParentID: &top.ID})
	leaf, _ := lib.folders.Create(ctx, lib.alice, FolderInput{Name: "leaf", ParentID: &mid.ID})
	other, _ := lib.folders.Create(ctx, lib.alice, FolderInput{Name: "other"})

	_, err := lib.folders.Update(ctx, lib.alice, top.ID, FolderUpdate{ParentID: Some(top.ID)})
	assert.ErrorIs(t, err, ErrFolderCycle)
	_, err = lib.folders.Update(ctx, lib.alice, top.ID, FolderUpdate{ParentID: Some(leaf.ID)})
	assert.ErrorIs(t, err, ErrFolderCycle)

	// структура не изменилась
	got, err := lib.folders.repo.GetByID(ctx, top.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)

	// допустимые переносы
	moved, err := lib.folders.Update(ctx, lib.alice, leaf.ID, FolderUpdate{ParentID: Some(other.ID), Name: ptrStr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, other.ID, *moved.ParentID)
	assert.Equal(t, "renamed", moved.Name)

	moved, err = lib.folders.Update(ctx, lib.alice, mid.ID, FolderUpdate{ParentID: Null[int64]()})
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)

	// теперь top можно положить в mid
	_, err = lib.folders.Update(ctx, lib.alice, top.ID, FolderUpdate{ParentID: Some(mid.ID)})
	assert.NoError(t, err)

	// чужие папки
	bobs, _ := lib.folders.Create(ctx, lib.bob, FolderInput{Name: "bob"})
	_, err = lib.folders.Update(ctx, lib.alice, other.ID, FolderUpdate{ParentID: Some(bobs.ID)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = lib.folders.Update(ctx, lib.bob, other.ID, FolderUpdate{Name: ptrStr("x")})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = lib.folders.Update(ctx, lib.alice, 4242, FolderUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFolderService_Delete_Reparents(t *testing.T) {
	lib := newLibrary(t)
	ctx := context.Background()

	parent, _ := lib.folders.Create(ctx, lib.alice, FolderInput{Name: "parent"})
	doomed, _ := lib.folders.Create(ctx, lib.alice, FolderInput{Name: "doomed", ParentID: &parent.ID})
	sub, _ := lib.folders.Create(ctx, lib.alice, FolderInput{Name: "sub", ParentID: &doomed.ID})
	res, err := lib.resources.Create(ctx, lib.alice, ResourceInput{Title: "paper", FolderID: &doomed.ID}, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, lib.folders.Delete(ctx, lib.bob, doomed.ID), ErrForbidden)
	require.NoError(t, lib.folders.Delete(ctx, lib.alice, doomed.ID))

	gotSub, err := lib.folders.repo.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, *gotSub.ParentID)

	gotRes, err := lib.resources.Get(ctx, lib.alice, res.ID)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, *gotRes.FolderID)

	assert.ErrorIs(t, lib.folders.Delete(ctx, lib.alice, doomed.ID), ErrNotFound)
}
