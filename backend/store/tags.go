package store

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/promptlab/promptlab/backend/models"
)

// slugify derives a URL-friendly slug from a tag name: lowercase, spaces
// replaced with hyphens.
func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

func validateTagName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: tag name cannot be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > 50 {
		return fmt.Errorf("%w: tag name exceeds 50 characters", ErrInvalidInput)
	}
	return nil
}

// CreateTag inserts a new tag. Names are unique case-sensitively among live
// tags; the check and the insert share one critical section.
func (s *MemoryStore) CreateTag(input models.CreateTagInput) (models.Tag, error) {
	start := time.Now()

	name := strings.TrimSpace(input.Name)
	if err := validateTagName(name); err != nil {
		return models.Tag{}, err
	}
	if err := validateDescription(input.Description, 200); err != nil {
		return models.Tag{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.tagsByName[name]; taken {
		return models.Tag{}, fmt.Errorf("tag %q %w", name, ErrConflict)
	}

	slug := input.Slug
	if slug == "" {
		slug = slugify(name)
	}

	tag := &models.Tag{
		ID:          models.NewID(),
		Name:        name,
		Slug:        slug,
		Description: input.Description,
		Color:       input.Color,
		CreatedAt:   models.Now(),
	}
	s.tags[tag.ID] = tag
	s.tagOrder = append(s.tagOrder, tag.ID)
	s.tagsByName[name] = tag.ID

	s.logOp("CreateTag", start, "tag_id", tag.ID, "name", name)
	return *tag, nil
}

// GetTag retrieves a tag by id.
func (s *MemoryStore) GetTag(id string) (models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tag, ok := s.tags[id]
	if !ok {
		return models.Tag{}, fmt.Errorf("tag %q %w", id, ErrNotFound)
	}
	return *tag, nil
}

// ListTags returns all tags in insertion order.
func (s *MemoryStore) ListTags() []models.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]models.Tag, 0, len(s.tagOrder))
	for _, id := range s.tagOrder {
		results = append(results, *s.tags[id])
	}
	return results
}

// PatchTag applies a partial update. Renaming re-checks name uniqueness; an
// explicit null or empty slug re-derives it from the (possibly new) name.
func (s *MemoryStore) PatchTag(id string, patch models.TagPatch) (models.Tag, error) {
	start := time.Now()

	if patch.Name.Set {
		if !patch.Name.Valid {
			return models.Tag{}, fmt.Errorf("%w: tag name cannot be null", ErrInvalidInput)
		}
		if err := validateTagName(strings.TrimSpace(patch.Name.Value)); err != nil {
			return models.Tag{}, err
		}
	}
	if patch.Description.Set && patch.Description.Valid {
		if err := validateDescription(patch.Description.Value, 200); err != nil {
			return models.Tag{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tag, ok := s.tags[id]
	if !ok {
		return models.Tag{}, fmt.Errorf("tag %q %w", id, ErrNotFound)
	}

	if patch.Name.Set {
		name := strings.TrimSpace(patch.Name.Value)
		if name != tag.Name {
			if _, taken := s.tagsByName[name]; taken {
				return models.Tag{}, fmt.Errorf("tag %q %w", name, ErrConflict)
			}
			delete(s.tagsByName, tag.Name)
			s.tagsByName[name] = id
			tag.Name = name
		}
	}
	if patch.Slug.Set {
		if patch.Slug.Valid && patch.Slug.Value != "" {
			tag.Slug = patch.Slug.Value
		} else {
			tag.Slug = slugify(tag.Name)
		}
	}
	if patch.Description.Set {
		tag.Description = patch.Description.Value
	}
	if patch.Color.Set {
		tag.Color = patch.Color.Value
	}

	s.logOp("PatchTag", start, "tag_id", id)
	return *tag, nil
}

// DeleteTag detaches the tag from every prompt, then destroys the record.
// Runs as one critical section so no reader sees the tag gone while a prompt
// still lists it, or the reverse.
func (s *MemoryStore) DeleteTag(id string) error {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	tag, ok := s.tags[id]
	if !ok {
		return fmt.Errorf("tag %q %w", id, ErrNotFound)
	}

	detached := 0
	for _, pid := range s.promptOrder {
		p := s.prompts[pid]
		if slices.Contains(p.TagIDs, id) {
			p.TagIDs = removeID(p.TagIDs, id)
			detached++
		}
	}

	delete(s.tagsByName, tag.Name)
	delete(s.tags, id)
	s.tagOrder = removeID(s.tagOrder, id)

	s.logOp("DeleteTag", start, "tag_id", id, "prompts_detached", detached)
	return nil
}

// SetPromptTags replaces a prompt's whole tag set. Every id must resolve;
// otherwise nothing is assigned.
func (s *MemoryStore) SetPromptTags(promptID string, tagIDs []string) (models.Prompt, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.prompts[promptID]
	if !ok {
		return models.Prompt{}, fmt.Errorf("prompt %q %w", promptID, ErrNotFound)
	}
	for _, tid := range tagIDs {
		if _, ok := s.tags[tid]; !ok {
			return models.Prompt{}, fmt.Errorf("%w: tag %q not found", ErrInvalidReference, tid)
		}
	}

	p.TagIDs = dedupe(tagIDs)
	p.UpdatedAt = models.Now()

	s.logOp("SetPromptTags", start, "prompt_id", promptID, "tags", len(p.TagIDs))
	return clonePrompt(p), nil
}

// AddPromptTag attaches one tag. Adding a tag the prompt already has is a
// no-op success and leaves UpdatedAt untouched.
func (s *MemoryStore) AddPromptTag(promptID, tagID string) (models.Prompt, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.prompts[promptID]
	if !ok {
		return models.Prompt{}, fmt.Errorf("prompt %q %w", promptID, ErrNotFound)
	}
	if _, ok := s.tags[tagID]; !ok {
		return models.Prompt{}, fmt.Errorf("%w: tag %q not found", ErrInvalidReference, tagID)
	}

	if !slices.Contains(p.TagIDs, tagID) {
		p.TagIDs = append(p.TagIDs, tagID)
		p.UpdatedAt = models.Now()
	}

	s.logOp("AddPromptTag", start, "prompt_id", promptID, "tag_id", tagID)
	return clonePrompt(p), nil
}

// RemovePromptTag detaches one tag and reports whether anything was removed.
// Removing a tag the prompt does not carry is a success, not an error.
func (s *MemoryStore) RemovePromptTag(promptID, tagID string) (models.Prompt, bool, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.prompts[promptID]
	if !ok {
		return models.Prompt{}, false, fmt.Errorf("prompt %q %w", promptID, ErrNotFound)
	}

	removed := slices.Contains(p.TagIDs, tagID)
	if removed {
		p.TagIDs = removeID(p.TagIDs, tagID)
		p.UpdatedAt = models.Now()
	}

	s.logOp("RemovePromptTag", start, "prompt_id", promptID, "tag_id", tagID, "removed", removed)
	return clonePrompt(p), removed, nil
}

// PromptsByTag returns every prompt carrying the tag, in insertion order.
func (s *MemoryStore) PromptsByTag(tagID string) ([]models.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.tags[tagID]; !ok {
		return nil, fmt.Errorf("tag %q %w", tagID, ErrNotFound)
	}

	results := []models.Prompt{}
	for _, pid := range s.promptOrder {
		p := s.prompts[pid]
		if slices.Contains(p.TagIDs, tagID) {
			results = append(results, clonePrompt(p))
		}
	}
	return results, nil
}
