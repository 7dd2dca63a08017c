package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional_AbsentNullValue(t *testing.T) {
	var patch PromptPatch
	payload := `{"title": "New Title", "description": null}`
	require.NoError(t, json.Unmarshal([]byte(payload), &patch))

	// Present with a value.
	assert.True(t, patch.Title.Set)
	assert.True(t, patch.Title.Valid)
	assert.Equal(t, "New Title", patch.Title.Value)

	// Present as explicit null.
	assert.True(t, patch.Description.Set)
	assert.False(t, patch.Description.Valid)

	// Absent from the payload entirely.
	assert.False(t, patch.Content.Set)
	assert.False(t, patch.CollectionID.Set)
}

func TestOptional_SliceValue(t *testing.T) {
	var patch PromptPatch
	require.NoError(t, json.Unmarshal([]byte(`{"tag_ids": ["a", "b"]}`), &patch))
	assert.True(t, patch.TagIDs.Set)
	assert.True(t, patch.TagIDs.Valid)
	assert.Equal(t, []string{"a", "b"}, patch.TagIDs.Value)

	var cleared PromptPatch
	require.NoError(t, json.Unmarshal([]byte(`{"tag_ids": null}`), &cleared))
	assert.True(t, cleared.TagIDs.Set)
	assert.False(t, cleared.TagIDs.Valid)
}

func TestOptional_Marshal(t *testing.T) {
	data, err := json.Marshal(Some("hello"))
	require.NoError(t, err)
	assert.Equal(t, `"hello"`, string(data))

	data, err = json.Marshal(Null[string]())
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestOptional_TypeMismatch(t *testing.T) {
	var o Optional[string]
	err := json.Unmarshal([]byte(`42`), &o)
	assert.Error(t, err)
}
