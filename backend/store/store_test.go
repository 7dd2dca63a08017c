package store

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/promptlab/backend/models"
)

func setupTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := New()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return s
}

func mustCreateCollection(t *testing.T, s *MemoryStore, name string) models.Collection {
	t.Helper()
	col, err := s.CreateCollection(models.CreateCollectionInput{Name: name})
	require.NoError(t, err)
	return col
}

func mustCreatePrompt(t *testing.T, s *MemoryStore, input models.CreatePromptInput) models.Prompt {
	t.Helper()
	p, err := s.CreatePrompt(input)
	require.NoError(t, err)
	return p
}

func mustCreateTag(t *testing.T, s *MemoryStore, name string) models.Tag {
	t.Helper()
	tag, err := s.CreateTag(models.CreateTagInput{Name: name})
	require.NoError(t, err)
	return tag
}

// Test CreateCollection
func TestCreateCollection_Success(t *testing.T) {
	s := setupTestStore(t)

	col, err := s.CreateCollection(models.CreateCollectionInput{
		Name:        "Marketing",
		Description: "Campaign prompts",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, col.ID)
	assert.Equal(t, "Marketing", col.Name)
	assert.Equal(t, "Campaign prompts", col.Description)
	assert.False(t, col.CreatedAt.IsZero())
}

func TestCreateCollection_TrimsName(t *testing.T) {
	s := setupTestStore(t)

	col, err := s.CreateCollection(models.CreateCollectionInput{Name: "  Spaced  "})
	require.NoError(t, err)
	assert.Equal(t, "Spaced", col.Name)
}

func TestCreateCollection_EmptyName(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.CreateCollection(models.CreateCollectionInput{Name: "   "})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetCollection_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetCollection("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListCollections_InsertionOrder(t *testing.T) {
	s := setupTestStore(t)

	a := mustCreateCollection(t, s, "A")
	b := mustCreateCollection(t, s, "B")
	c := mustCreateCollection(t, s, "C")

	cols := s.ListCollections()
	require.Len(t, cols, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{cols[0].ID, cols[1].ID, cols[2].ID})
}

// Test DeleteCollection cascade
func TestDeleteCollection_CascadesToPromptsAndVersions(t *testing.T) {
	s := setupTestStore(t)

	col := mustCreateCollection(t, s, "Doomed")
	other := mustCreateCollection(t, s, "Safe")

	inside := mustCreatePrompt(t, s, models.CreatePromptInput{
		Title: "Inside", Content: "body", CollectionID: &col.ID,
	})
	outside := mustCreatePrompt(t, s, models.CreatePromptInput{
		Title: "Outside", Content: "body", CollectionID: &other.ID,
	})
	loose := mustCreatePrompt(t, s, models.CreatePromptInput{
		Title: "Loose", Content: "body",
	})

	v, err := s.CreateVersion(inside.ID, models.CreateVersionInput{})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCollection(col.ID))

	_, err = s.GetCollection(col.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetPrompt(inside.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetVersion(inside.ID, v.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Prompts in other collections or none at all are untouched.
	_, err = s.GetPrompt(outside.ID)
	assert.NoError(t, err)
	_, err = s.GetPrompt(loose.ID)
	assert.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 1, stats.TotalCollections)
	assert.Equal(t, 2, stats.TotalPrompts)
	assert.Equal(t, 0, stats.TotalPromptVersions)
}

func TestDeleteCollection_NotFound(t *testing.T) {
	s := setupTestStore(t)
	require.ErrorIs(t, s.DeleteCollection("missing"), ErrNotFound)
}

func TestPromptsByCollection(t *testing.T) {
	s := setupTestStore(t)

	col := mustCreateCollection(t, s, "Col")
	p1 := mustCreatePrompt(t, s, models.CreatePromptInput{Title: "One", Content: "x", CollectionID: &col.ID})
	mustCreatePrompt(t, s, models.CreatePromptInput{Title: "Two", Content: "x"})
	p3 := mustCreatePrompt(t, s, models.CreatePromptInput{Title: "Three", Content: "x", CollectionID: &col.ID})

	prompts, err := s.PromptsByCollection(col.ID)
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	assert.Equal(t, p1.ID, prompts[0].ID)
	assert.Equal(t, p3.ID, prompts[1].ID)

	_, err = s.PromptsByCollection("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// Test CreatePrompt
func TestCreatePrompt_Success(t *testing.T) {
	s := setupTestStore(t)

	p, err := s.CreatePrompt(models.CreatePromptInput{
		Title:       "Greeting",
		Content:     "Hello {{name}}, welcome to {{place}}!",
		Description: "A greeting template",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Greeting", p.Title)
	assert.Nil(t, p.CollectionID)
	assert.Equal(t, []string{"name", "place"}, p.Variables)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestCreatePrompt_InvalidCollectionRef(t *testing.T) {
	s := setupTestStore(t)

	bad := "missing"
	_, err := s.CreatePrompt(models.CreatePromptInput{
		Title: "X", Content: "x", CollectionID: &bad,
	})
	require.ErrorIs(t, err, ErrInvalidReference)
	assert.Equal(t, 0, s.Stats().TotalPrompts)
}

func TestCreatePrompt_InvalidTagRef(t *testing.T) {
	s := setupTestStore(t)

	tag := mustCreateTag(t, s, "real")
	_, err := s.CreatePrompt(models.CreatePromptInput{
		Title: "X", Content: "x", TagIDs: []string{tag.ID, "ghost"},
	})
	require.ErrorIs(t, err, ErrInvalidReference)
	assert.Equal(t, 0, s.Stats().TotalPrompts)
}

func TestCreatePrompt_DedupesTagIDs(t *testing.T) {
	s := setupTestStore(t)

	tag := mustCreateTag(t, s, "dup")
	p := mustCreatePrompt(t, s, models.CreatePromptInput{
		Title: "X", Content: "x", TagIDs: []string{tag.ID, tag.ID},
	})
	assert.Equal(t, []string{tag.ID}, p.TagIDs)
}

// Test ReplacePrompt
func TestReplacePrompt_Success(t *testing.T) {
	s := setupTestStore(t)

	p := mustCreatePrompt(t, s, models.CreatePromptInput{Title: "Old", Content: "old {{a}}"})
	time.Sleep(5 * time.Millisecond)

	updated, err := s.ReplacePrompt(p.ID, models.UpdatePromptInput{
		Title:   "New",
		Content: "new {{b}}",
	})
	require.NoError(t, err)

	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, []string{"b"}, updated.Variables)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(p.UpdatedAt))
}

func TestReplacePrompt_SnapshotsPreUpdateState(t *testing.T) {
	s := setupTestStore(t)

	p := mustCreatePrompt(t, s, models.CreatePromptInput{Title: "Original", Content: "v1"})

	_, err := s.ReplacePrompt(p.ID, models.UpdatePromptInput{
		Title: "Changed", Content: "v2", CreateVersion: true,
	})
	require.NoError(t, err)

	versions, total, err := s.ListVersions(p.ID, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, "Original", versions[0].Title)
	assert.Equal(t, "v1", versions[0].Content)
}

func TestReplacePrompt_InvalidRefLeavesPromptUntouched(t *testing.T) {
	s := setupTestStore(t)

	p := mustCreatePrompt(t, s, models.CreatePromptInput{Title: "Keep", Content: "keep"})

	bad := "missing"
	_, err := s.ReplacePrompt(p.ID, models.UpdatePromptInput{
		Title: "Gone", Content: "gone", CollectionID: &bad,
	})
	require.ErrorIs(t, err, ErrInvalidReference)

	got, err := s.GetPrompt(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keep", got.Title)
}

// Test PatchPrompt
func TestPatchPrompt_PartialUpdate(t *testing.T) {
	s := setupTestStore(t)

	p := mustCreatePrompt(t, s, models.CreatePromptInput{
		Title: "Title", Content: "content", Description: "desc",
	})

	got, err := s.PatchPrompt(p.ID, models.PromptPatch{
		Title: models.Some("Patched"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Patched", got.Title)
	assert.Equal(t, "content", got.Content)
	assert.Equal(t, "desc", got.Description)
}

func TestPatchPrompt_NullClearsNullableFields(t *testing.T) {
	s := setupTestStore(t)

	col := mustCreateCollection(t, s, "Col")
	tag := mustCreateTag(t, s, "t")
	p := mustCreatePrompt(t, s, models.CreatePromptInput{
		Title: "X", Content: "x", Description: "d",
		CollectionID: &col.ID, TagIDs: []string{tag.ID},
	})

	got, err := s.PatchPrompt(p.ID, models.PromptPatch{
		Description:  models.Null[string](),
		CollectionID: models.Null[string](),
		TagIDs:       models.Null[[]string](),
	})
	require.NoError(t, err)

	assert.Empty(t, got.Description)
	assert.Nil(t, got.CollectionID)
	assert.Equal(t, []string{}, got.TagIDs)
}

func TestPatchPrompt_NullTitleRejected(t *testing.T) {
	s := setupTestStore(t)

	p := mustCreatePrompt(t, s, models.CreatePromptInput{Title: "X", Content: "x"})

	_, err := s.PatchPrompt(p.ID, models.PromptPatch{Title: models.Null[string]()})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.PatchPrompt(p.ID, models.PromptPatch{Content: models.Null[string]()})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestPatchPrompt_ContentRefreshesVariables(t *testing.T) {
	s := setupTestStore(t)

	p := mustCreatePrompt(t, s, models.CreatePromptInput{Title: "X", Content: "{{old}}"})

	got, err := s.PatchPrompt(p.ID, models.PromptPatch{Content: models.Some("{{fresh}} {{vars}}")})
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh", "vars"}, got.Variables)
}

func TestPatchPrompt_InvalidRefRejectedBeforeMutation(t *testing.T) {
	s := setupTestStore(t)

	p := mustCreatePrompt(t, s, models.CreatePromptInput{Title: "Keep", Content: "keep"})

	_, err := s.PatchPrompt(p.ID, models.PromptPatch{
		Title:        models.Some("Changed"),
		CollectionID: models.Some("missing"),
	})
	require.ErrorIs(t, err, ErrInvalidReference)

	got, err := s.GetPrompt(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keep", got.Title)
}

// Test DeletePrompt
func TestDeletePrompt_RemovesVersions(t *testing.T) {
	s := setupTestStore(t)

	p := mustCreatePrompt(t, s, models.CreatePromptInput{Title: "X", Content: "x"})
	_, err := s.CreateVersion(p.ID, models.CreateVersionInput{})
	require.NoError(t, err)
	_, err = s.CreateVersion(p.ID, models.CreateVersionInput{})
	require.NoError(t, err)

	require.NoError(t, s.DeletePrompt(p.ID))

	assert.Equal(t, 0, s.Stats().TotalPrompts)
	assert.Equal(t, 0, s.Stats().TotalPromptVersions)

	require.ErrorIs(t, s.DeletePrompt(p.ID), ErrNotFound)
}

// Returned values must not alias store state.
func TestGetPrompt_ReturnsDeepCopy(t *testing.T) {
	s := setupTestStore(t)

	tag := mustCreateTag(t, s, "t")
	p := mustCreatePrompt(t, s, models.CreatePromptInput{
		Title: "X", Content: "x", TagIDs: []string{tag.ID},
	})

	got, err := s.GetPrompt(p.ID)
	require.NoError(t, err)
	got.TagIDs[0] = "mutated"

	again, err := s.GetPrompt(p.ID)
	require.NoError(t, err)
	assert.Equal(t, tag.ID, again.TagIDs[0])
}

func TestReset(t *testing.T) {
	s := setupTestStore(t)

	mustCreateCollection(t, s, "C")
	mustCreatePrompt(t, s, models.CreatePromptInput{Title: "X", Content: "x"})
	mustCreateTag(t, s, "t")

	s.Reset()

	stats := s.Stats()
	assert.Zero(t, stats.TotalCollections)
	assert.Zero(t, stats.TotalPrompts)
	assert.Zero(t, stats.TotalTags)
	assert.Zero(t, stats.TotalPromptVersions)
}
