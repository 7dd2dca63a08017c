package store

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/promptlab/promptlab/backend/models"
)

// Store defines the operations exposed to the HTTP layer.
type Store interface {
	// Collections
	CreateCollection(input models.CreateCollectionInput) (models.Collection, error)
	GetCollection(id string) (models.Collection, error)
	ListCollections() []models.Collection
	DeleteCollection(id string) error
	PromptsByCollection(id string) ([]models.Prompt, error)

	// Prompts
	CreatePrompt(input models.CreatePromptInput) (models.Prompt, error)
	GetPrompt(id string) (models.Prompt, error)
	ListPrompts(q models.ListPromptsQuery) ([]models.Prompt, int)
	ReplacePrompt(id string, input models.UpdatePromptInput) (models.Prompt, error)
	PatchPrompt(id string, patch models.PromptPatch) (models.Prompt, error)
	DeletePrompt(id string) error

	// Versions
	CreateVersion(promptID string, input models.CreateVersionInput) (models.PromptVersion, error)
	ListVersions(promptID string, limit, offset int) ([]models.PromptVersion, int, error)
	GetVersion(promptID, versionID string) (models.PromptVersion, error)
	RestoreVersion(promptID, versionID string, createVersion bool) (models.Prompt, error)
	DeleteVersion(promptID, versionID string) error
	CompareVersions(promptID, fromID, toID string) (models.VersionDiff, error)

	// Tags
	CreateTag(input models.CreateTagInput) (models.Tag, error)
	GetTag(id string) (models.Tag, error)
	ListTags() []models.Tag
	PatchTag(id string, patch models.TagPatch) (models.Tag, error)
	DeleteTag(id string) error
	SetPromptTags(promptID string, tagIDs []string) (models.Prompt, error)
	AddPromptTag(promptID, tagID string) (models.Prompt, error)
	RemovePromptTag(promptID, tagID string) (models.Prompt, bool, error)
	PromptsByTag(tagID string) ([]models.Prompt, error)

	Stats() models.Stats
	Reset()
}

// MemoryStore is the in-memory implementation of Store. A single RWMutex
// guards every table so each public operation, including multi-table
// cascades, executes as one critical section and no reader ever observes a
// partially applied cascade.
type MemoryStore struct {
	mu     sync.RWMutex
	logger *slog.Logger

	collections map[string]*models.Collection
	prompts     map[string]*models.Prompt
	tags        map[string]*models.Tag
	versions    map[string]*models.PromptVersion

	// Insertion-ordered id lists. They make listings deterministic and give
	// the stable sort its tiebreak order.
	collectionOrder []string
	promptOrder     []string
	tagOrder        []string

	// versionsByPrompt holds version ids per prompt in creation order.
	// versionSeq holds the highest version number ever issued per prompt, so
	// numbers are never reused after a delete.
	versionsByPrompt map[string][]string
	versionSeq       map[string]int

	// tagsByName maps live tag names to ids for the uniqueness check.
	tagsByName map[string]string
}

// New creates an empty MemoryStore.
func New() *MemoryStore {
	s := &MemoryStore{logger: slog.Default()}
	s.resetLocked()
	return s
}

func (s *MemoryStore) resetLocked() {
	s.collections = make(map[string]*models.Collection)
	s.prompts = make(map[string]*models.Prompt)
	s.tags = make(map[string]*models.Tag)
	s.versions = make(map[string]*models.PromptVersion)
	s.collectionOrder = nil
	s.promptOrder = nil
	s.tagOrder = nil
	s.versionsByPrompt = make(map[string][]string)
	s.versionSeq = make(map[string]int)
	s.tagsByName = make(map[string]string)
}

// Reset clears every table. Used for test isolation.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.logger.Info("store operation", "operation", "Reset")
}

// Stats returns system-wide totals.
func (s *MemoryStore) Stats() models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Stats{
		TotalCollections:    len(s.collections),
		TotalPrompts:        len(s.prompts),
		TotalPromptVersions: len(s.versions),
		TotalTags:           len(s.tags),
	}
}

// logOp emits the per-operation log line in the same shape for every store
// method.
func (s *MemoryStore) logOp(op string, start time.Time, args ...any) {
	kv := append([]any{"operation", op, "duration_ms", time.Since(start).Milliseconds()}, args...)
	s.logger.Info("store operation", kv...)
}

// ============== Collection Operations ==============

// CreateCollection validates the input and inserts a new collection.
func (s *MemoryStore) CreateCollection(input models.CreateCollectionInput) (models.Collection, error) {
	start := time.Now()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Collection{}, fmt.Errorf("%w: collection name cannot be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > 100 {
		return models.Collection{}, fmt.Errorf("%w: collection name exceeds 100 characters", ErrInvalidInput)
	}
	if utf8.RuneCountInString(input.Description) > 500 {
		return models.Collection{}, fmt.Errorf("%w: collection description exceeds 500 characters", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col := &models.Collection{
		ID:          models.NewID(),
		Name:        name,
		Description: input.Description,
		CreatedAt:   models.Now(),
	}
	s.collections[col.ID] = col
	s.collectionOrder = append(s.collectionOrder, col.ID)

	s.logOp("CreateCollection", start, "collection_id", col.ID)
	return *col, nil
}

// GetCollection retrieves a collection by id.
func (s *MemoryStore) GetCollection(id string) (models.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[id]
	if !ok {
		return models.Collection{}, fmt.Errorf("collection %q %w", id, ErrNotFound)
	}
	return *col, nil
}

// ListCollections returns all collections in insertion order.
func (s *MemoryStore) ListCollections() []models.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]models.Collection, 0, len(s.collectionOrder))
	for _, id := range s.collectionOrder {
		results = append(results, *s.collections[id])
	}
	return results
}

// DeleteCollection removes a collection and cascades to every prompt that
// references it, including their versions. The whole cascade runs under one
// lock so no partial state is ever visible.
func (s *MemoryStore) DeleteCollection(id string) error {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[id]; !ok {
		return fmt.Errorf("collection %q %w", id, ErrNotFound)
	}

	removed := 0
	for _, pid := range slices.Clone(s.promptOrder) {
		p := s.prompts[pid]
		if p.CollectionID != nil && *p.CollectionID == id {
			s.removePromptLocked(pid)
			removed++
		}
	}

	delete(s.collections, id)
	s.collectionOrder = removeID(s.collectionOrder, id)

	s.logOp("DeleteCollection", start, "collection_id", id, "prompts_removed", removed)
	return nil
}

// PromptsByCollection returns all prompts owned by the collection.
func (s *MemoryStore) PromptsByCollection(id string) ([]models.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.collections[id]; !ok {
		return nil, fmt.Errorf("collection %q %w", id, ErrNotFound)
	}

	results := []models.Prompt{}
	for _, pid := range s.promptOrder {
		p := s.prompts[pid]
		if p.CollectionID != nil && *p.CollectionID == id {
			results = append(results, clonePrompt(p))
		}
	}
	return results, nil
}

// ============== Shared Helpers ==============

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// clonePrompt returns a deep copy so callers never alias store-owned state.
func clonePrompt(p *models.Prompt) models.Prompt {
	out := *p
	out.CollectionID = cloneStringPtr(p.CollectionID)
	out.TagIDs = slices.Clone(p.TagIDs)
	out.Variables = slices.Clone(p.Variables)
	return out
}

func cloneVersion(v *models.PromptVersion) models.PromptVersion {
	out := *v
	out.CollectionID = cloneStringPtr(v.CollectionID)
	return out
}

// dedupe drops duplicate ids while preserving first-seen order. The result
// is never nil so tag sets serialize as [] rather than null.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
