package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional_UnmarshalJSON(t *testing.T) {
	var body struct {
		Folder   Optional[int64] `json:"folder_id"`
		Category Optional[int64] `json:"category_id"`
		Year     Optional[int]   `json:"publication_year"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"folder_id": 7, "category_id": null}`), &body))

	assert.True(t, body.Folder.Set)
	assert.Equal(t, int64(7), *body.Folder.Value)
	assert.True(t, body.Category.Set)
	assert.Nil(t, body.Category.Value)
	assert.False(t, body.Year.Set)

	assert.Equal(t, int64(7), body.Folder.orNil())
	assert.Nil(t, body.Category.orNil())

	assert.Error(t, json.Unmarshal([]byte(`{"folder_id": "x"}`), &body))
}
