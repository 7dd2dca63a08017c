package models

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a globally unique identifier for a new entity.
func NewID() string {
	return uuid.NewString()
}

// Now returns the timestamp used for entity bookkeeping.
func Now() time.Time {
	return time.Now().UTC()
}

// Collection groups related prompts. Deleting a collection cascades to the
// prompts it owns.
type Collection struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Prompt is a reusable prompt template. CollectionID is nil for prompts that
// belong to no collection; TagIDs only ever reference live tags.
type Prompt struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Description  string    `json:"description,omitempty"`
	CollectionID *string   `json:"collection_id"`
	TagIDs       []string  `json:"tag_ids"`
	Variables    []string  `json:"variables,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Tag labels prompts. Names are unique (case-sensitive) among live tags.
type Tag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PromptVersion is an immutable snapshot of a prompt's fields. Label is a
// free-form marker like "v1.0" and has nothing to do with the Tag entity.
type PromptVersion struct {
	ID            string    `json:"id"`
	PromptID      string    `json:"prompt_id"`
	VersionNumber int       `json:"version_number"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Description   string    `json:"description,omitempty"`
	CollectionID  *string   `json:"collection_id"`
	Message       string    `json:"message,omitempty"`
	Label         string    `json:"tag,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ============== Request Inputs ==============

// CreateCollectionInput carries the fields for creating a collection.
type CreateCollectionInput struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// CreatePromptInput carries the fields for creating a prompt.
type CreatePromptInput struct {
	Title        string   `json:"title" binding:"required,min=1,max=200"`
	Content      string   `json:"content" binding:"required,min=1"`
	Description  string   `json:"description" binding:"max=500"`
	CollectionID *string  `json:"collection_id"`
	TagIDs       []string `json:"tag_ids"`
}

// UpdatePromptInput is a full replacement of a prompt's mutable fields.
// CreateVersion requests a snapshot of the pre-update state.
type UpdatePromptInput struct {
	Title         string   `json:"title" binding:"required,min=1,max=200"`
	Content       string   `json:"content" binding:"required,min=1"`
	Description   string   `json:"description" binding:"max=500"`
	CollectionID  *string  `json:"collection_id"`
	TagIDs        []string `json:"tag_ids"`
	CreateVersion bool     `json:"create_version"`
}

// PromptPatch is a partial update. Each field is tri-state: absent fields are
// left untouched, explicit nulls clear nullable fields, values replace.
type PromptPatch struct {
	Title         Optional[string]   `json:"title"`
	Content       Optional[string]   `json:"content"`
	Description   Optional[string]   `json:"description"`
	CollectionID  Optional[string]   `json:"collection_id"`
	TagIDs        Optional[[]string] `json:"tag_ids"`
	CreateVersion bool               `json:"create_version"`
}

// CreateTagInput carries the fields for creating a tag. Slug is derived from
// the name when empty.
type CreateTagInput struct {
	Name        string `json:"name" binding:"required,min=1,max=50"`
	Slug        string `json:"slug"`
	Description string `json:"description" binding:"max=200"`
	Color       string `json:"color"`
}

// TagPatch is a partial update of a tag.
type TagPatch struct {
	Name        Optional[string] `json:"name"`
	Slug        Optional[string] `json:"slug"`
	Description Optional[string] `json:"description"`
	Color       Optional[string] `json:"color"`
}

// SetPromptTagsInput replaces a prompt's full tag set. An empty list clears
// every association.
type SetPromptTagsInput struct {
	TagIDs []string `json:"tag_ids"`
}

// CreateVersionInput carries the optional metadata for a manual snapshot.
type CreateVersionInput struct {
	Message string `json:"message" binding:"max=500"`
	Label   string `json:"tag" binding:"max=50"`
}

// RestoreVersionInput controls whether restoring records a pre-restore
// snapshot first. Defaults to true when omitted.
type RestoreVersionInput struct {
	CreateVersion *bool `json:"create_version"`
}

// ListPromptsQuery is the combined filter applied by the list endpoint.
// Limit <= 0 means unbounded.
type ListPromptsQuery struct {
	CollectionID string
	Search       string
	TagIDs       []string
	MatchAll     bool
	Limit        int
	Offset       int
}

// ============== Response Models ==============

// PromptList wraps a list of prompts with the total count after filtering.
type PromptList struct {
	Prompts []Prompt `json:"prompts"`
	Total   int      `json:"total"`
}

// CollectionList wraps a list of collections.
type CollectionList struct {
	Collections []Collection `json:"collections"`
	Total       int          `json:"total"`
}

// TagList wraps a list of tags.
type TagList struct {
	Tags  []Tag `json:"tags"`
	Total int   `json:"total"`
}

// VersionList wraps a page of versions. Total is the full version count for
// the prompt, before limit/offset.
type VersionList struct {
	Versions []PromptVersion `json:"versions"`
	Total    int             `json:"total"`
}

// Stats represents system-wide totals.
type Stats struct {
	TotalCollections    int `json:"total_collections"`
	TotalPrompts        int `json:"total_prompts"`
	TotalPromptVersions int `json:"total_prompt_versions"`
	TotalTags           int `json:"total_tags"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ============== Version Diff ==============

// DiffLineType classifies a line in a version comparison.
type DiffLineType string

const (
	DiffAdd    DiffLineType = "add"
	DiffDelete DiffLineType = "delete"
	DiffEqual  DiffLineType = "equal"
)

// DiffLine is one line of a version content comparison. OldLine/NewLine are
// 1-based positions in the respective contents; zero when not applicable.
type DiffLine struct {
	Type    DiffLineType `json:"type"`
	Content string       `json:"content"`
	OldLine int          `json:"old_line,omitempty"`
	NewLine int          `json:"new_line,omitempty"`
}

// DiffSummary counts the changed lines of a comparison.
type DiffSummary struct {
	Added   int `json:"added"`
	Deleted int `json:"deleted"`
	Total   int `json:"total"`
}

// VersionDiff is the result of comparing two versions of the same prompt.
type VersionDiff struct {
	From    PromptVersion `json:"from"`
	To      PromptVersion `json:"to"`
	Lines   []DiffLine    `json:"lines"`
	Summary DiffSummary   `json:"summary"`
}
