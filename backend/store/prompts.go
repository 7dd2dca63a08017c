package store

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/promptlab/promptlab/backend/models"
)

// variablePattern matches {{variable}} placeholders in prompt content.
var variablePattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// extractVariables returns the distinct template variable names used in the
// content, in first-appearance order.
func extractVariables(content string) []string {
	matches := variablePattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return dedupe(names)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > 200 {
		return fmt.Errorf("%w: title exceeds 200 characters", ErrInvalidInput)
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content cannot be empty", ErrInvalidInput)
	}
	return nil
}

func validateDescription(description string, max int) error {
	if utf8.RuneCountInString(description) > max {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidInput, max)
	}
	return nil
}

// checkPromptRefsLocked verifies that a collection reference and every tag
// reference resolve to live entities. Must be called with the lock held.
func (s *MemoryStore) checkPromptRefsLocked(collectionID *string, tagIDs []string) error {
	if collectionID != nil {
		if _, ok := s.collections[*collectionID]; !ok {
			return fmt.Errorf("%w: collection %q not found", ErrInvalidReference, *collectionID)
		}
	}
	for _, tid := range tagIDs {
		if _, ok := s.tags[tid]; !ok {
			return fmt.Errorf("%w: tag %q not found", ErrInvalidReference, tid)
		}
	}
	return nil
}

// removePromptLocked deletes a prompt together with all of its versions.
// Tag associations are discarded with the prompt record itself.
func (s *MemoryStore) removePromptLocked(id string) {
	s.deleteVersionsForPromptLocked(id)
	delete(s.prompts, id)
	s.promptOrder = removeID(s.promptOrder, id)
}

// CreatePrompt validates references and inserts a new prompt. On any invalid
// reference nothing is stored.
func (s *MemoryStore) CreatePrompt(input models.CreatePromptInput) (models.Prompt, error) {
	start := time.Now()

	if err := validateTitle(input.Title); err != nil {
		return models.Prompt{}, err
	}
	if err := validateContent(input.Content); err != nil {
		return models.Prompt{}, err
	}
	if err := validateDescription(input.Description, 500); err != nil {
		return models.Prompt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPromptRefsLocked(input.CollectionID, input.TagIDs); err != nil {
		return models.Prompt{}, err
	}

	now := models.Now()
	p := &models.Prompt{
		ID:           models.NewID(),
		Title:        input.Title,
		Content:      input.Content,
		Description:  input.Description,
		CollectionID: cloneStringPtr(input.CollectionID),
		TagIDs:       dedupe(input.TagIDs),
		Variables:    extractVariables(input.Content),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.prompts[p.ID] = p
	s.promptOrder = append(s.promptOrder, p.ID)

	s.logOp("CreatePrompt", start, "prompt_id", p.ID)
	return clonePrompt(p), nil
}

// GetPrompt retrieves a prompt by id.
func (s *MemoryStore) GetPrompt(id string) (models.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prompts[id]
	if !ok {
		return models.Prompt{}, fmt.Errorf("prompt %q %w", id, ErrNotFound)
	}
	return clonePrompt(p), nil
}

// ListPrompts runs the filter pipeline over a snapshot of the prompt table:
// collection filter, tag filter, substring search, then a stable sort by
// created_at descending. The returned total is the filtered count before
// limit/offset.
func (s *MemoryStore) ListPrompts(q models.ListPromptsQuery) ([]models.Prompt, int) {
	start := time.Now()

	s.mu.RLock()
	snapshot := make([]models.Prompt, 0, len(s.promptOrder))
	for _, id := range s.promptOrder {
		snapshot = append(snapshot, clonePrompt(s.prompts[id]))
	}
	s.mu.RUnlock()

	results := snapshot
	if q.CollectionID != "" {
		results = filterByCollection(results, q.CollectionID)
	}
	if len(q.TagIDs) > 0 {
		results = filterByTags(results, q.TagIDs, q.MatchAll)
	}
	if q.Search != "" {
		results = searchPrompts(results, q.Search)
	}
	sortByCreatedAtDesc(results)

	total := len(results)
	results = paginate(results, q.Limit, q.Offset)

	s.logOp("ListPrompts", start, "rows_returned", len(results), "total", total)
	return results, total
}

// ReplacePrompt overwrites every mutable field. References are re-validated
// before anything changes; when input.CreateVersion is set, a snapshot of the
// pre-update state is recorded in the same critical section.
func (s *MemoryStore) ReplacePrompt(id string, input models.UpdatePromptInput) (models.Prompt, error) {
	start := time.Now()

	if err := validateTitle(input.Title); err != nil {
		return models.Prompt{}, err
	}
	if err := validateContent(input.Content); err != nil {
		return models.Prompt{}, err
	}
	if err := validateDescription(input.Description, 500); err != nil {
		return models.Prompt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.prompts[id]
	if !ok {
		return models.Prompt{}, fmt.Errorf("prompt %q %w", id, ErrNotFound)
	}
	if err := s.checkPromptRefsLocked(input.CollectionID, input.TagIDs); err != nil {
		return models.Prompt{}, err
	}

	if input.CreateVersion {
		s.snapshotLocked(p, "", "")
	}

	p.Title = input.Title
	p.Content = input.Content
	p.Description = input.Description
	p.CollectionID = cloneStringPtr(input.CollectionID)
	p.TagIDs = dedupe(input.TagIDs)
	p.Variables = extractVariables(input.Content)
	p.UpdatedAt = models.Now()

	s.logOp("ReplacePrompt", start, "prompt_id", id, "version_created", input.CreateVersion)
	return clonePrompt(p), nil
}

// PatchPrompt applies a partial update. Only fields present in the patch are
// validated and applied; explicit nulls clear the nullable fields
// (description, collection_id, tag_ids). UpdatedAt is refreshed even when no
// value actually changed.
func (s *MemoryStore) PatchPrompt(id string, patch models.PromptPatch) (models.Prompt, error) {
	start := time.Now()

	if patch.Title.Set {
		if !patch.Title.Valid {
			return models.Prompt{}, fmt.Errorf("%w: title cannot be null", ErrInvalidInput)
		}
		if err := validateTitle(patch.Title.Value); err != nil {
			return models.Prompt{}, err
		}
	}
	if patch.Content.Set {
		if !patch.Content.Valid {
			return models.Prompt{}, fmt.Errorf("%w: content cannot be null", ErrInvalidInput)
		}
		if err := validateContent(patch.Content.Value); err != nil {
			return models.Prompt{}, err
		}
	}
	if patch.Description.Set && patch.Description.Valid {
		if err := validateDescription(patch.Description.Value, 500); err != nil {
			return models.Prompt{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.prompts[id]
	if !ok {
		return models.Prompt{}, fmt.Errorf("prompt %q %w", id, ErrNotFound)
	}

	// Validate all supplied references before mutating anything.
	if patch.CollectionID.Set && patch.CollectionID.Valid {
		if _, ok := s.collections[patch.CollectionID.Value]; !ok {
			return models.Prompt{}, fmt.Errorf("%w: collection %q not found", ErrInvalidReference, patch.CollectionID.Value)
		}
	}
	if patch.TagIDs.Set && patch.TagIDs.Valid {
		for _, tid := range patch.TagIDs.Value {
			if _, ok := s.tags[tid]; !ok {
				return models.Prompt{}, fmt.Errorf("%w: tag %q not found", ErrInvalidReference, tid)
			}
		}
	}

	if patch.CreateVersion {
		s.snapshotLocked(p, "", "")
	}

	if patch.Title.Set {
		p.Title = patch.Title.Value
	}
	if patch.Content.Set {
		p.Content = patch.Content.Value
		p.Variables = extractVariables(p.Content)
	}
	if patch.Description.Set {
		p.Description = patch.Description.Value
	}
	if patch.CollectionID.Set {
		if patch.CollectionID.Valid {
			cid := patch.CollectionID.Value
			p.CollectionID = &cid
		} else {
			p.CollectionID = nil
		}
	}
	if patch.TagIDs.Set {
		if patch.TagIDs.Valid {
			p.TagIDs = dedupe(patch.TagIDs.Value)
		} else {
			p.TagIDs = []string{}
		}
	}
	p.UpdatedAt = models.Now()

	s.logOp("PatchPrompt", start, "prompt_id", id, "version_created", patch.CreateVersion)
	return clonePrompt(p), nil
}

// DeletePrompt removes a prompt and all of its versions in one critical
// section.
func (s *MemoryStore) DeletePrompt(id string) error {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prompts[id]; !ok {
		return fmt.Errorf("prompt %q %w", id, ErrNotFound)
	}
	s.removePromptLocked(id)

	s.logOp("DeletePrompt", start, "prompt_id", id)
	return nil
}
