package store

import (
	"fmt"
	"time"

	"github.com/promptlab/promptlab/backend/models"
)

// nextVersionNumberLocked issues the next version number for a prompt.
// Numbers come from a per-prompt high-water mark rather than a count, so a
// number freed by DeleteVersion is never handed out again.
func (s *MemoryStore) nextVersionNumberLocked(promptID string) int {
	return s.versionSeq[promptID] + 1
}

// snapshotLocked records an immutable copy of the prompt's current fields.
// Must be called with the write lock held.
func (s *MemoryStore) snapshotLocked(p *models.Prompt, message, label string) *models.PromptVersion {
	v := &models.PromptVersion{
		ID:            models.NewID(),
		PromptID:      p.ID,
		VersionNumber: s.nextVersionNumberLocked(p.ID),
		Title:         p.Title,
		Content:       p.Content,
		Description:   p.Description,
		CollectionID:  cloneStringPtr(p.CollectionID),
		Message:       message,
		Label:         label,
		CreatedAt:     models.Now(),
	}
	s.versions[v.ID] = v
	s.versionsByPrompt[p.ID] = append(s.versionsByPrompt[p.ID], v.ID)
	s.versionSeq[p.ID] = v.VersionNumber
	return v
}

// getVersionLocked resolves a version under the cross-parent rule: a version
// id that exists but belongs to another prompt reads the same as a missing
// id.
func (s *MemoryStore) getVersionLocked(promptID, versionID string) (*models.PromptVersion, error) {
	v, ok := s.versions[versionID]
	if !ok || v.PromptID != promptID {
		return nil, fmt.Errorf("version %q %w", versionID, ErrNotFound)
	}
	return v, nil
}

// deleteVersionsForPromptLocked drops every version of a prompt. Idempotent;
// used by the prompt delete cascade.
func (s *MemoryStore) deleteVersionsForPromptLocked(promptID string) {
	for _, vid := range s.versionsByPrompt[promptID] {
		delete(s.versions, vid)
	}
	delete(s.versionsByPrompt, promptID)
	delete(s.versionSeq, promptID)
}

// CreateVersion snapshots the prompt's current state ("save as version").
func (s *MemoryStore) CreateVersion(promptID string, input models.CreateVersionInput) (models.PromptVersion, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.prompts[promptID]
	if !ok {
		return models.PromptVersion{}, fmt.Errorf("prompt %q %w", promptID, ErrNotFound)
	}
	v := s.snapshotLocked(p, input.Message, input.Label)

	s.logOp("CreateVersion", start, "prompt_id", promptID, "version", v.VersionNumber)
	return cloneVersion(v), nil
}

// ListVersions returns the prompt's versions newest first. Total is the full
// count before limit/offset; limit <= 0 means unbounded.
func (s *MemoryStore) ListVersions(promptID string, limit, offset int) ([]models.PromptVersion, int, error) {
	start := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.prompts[promptID]; !ok {
		return nil, 0, fmt.Errorf("prompt %q %w", promptID, ErrNotFound)
	}

	ids := s.versionsByPrompt[promptID]
	results := make([]models.PromptVersion, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		results = append(results, cloneVersion(s.versions[ids[i]]))
	}
	total := len(results)
	results = paginate(results, limit, offset)

	s.logOp("ListVersions", start, "prompt_id", promptID, "rows_returned", len(results))
	return results, total, nil
}

// GetVersion retrieves one version under the cross-parent rule.
func (s *MemoryStore) GetVersion(promptID, versionID string) (models.PromptVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, err := s.getVersionLocked(promptID, versionID)
	if err != nil {
		return models.PromptVersion{}, err
	}
	return cloneVersion(v), nil
}

// RestoreVersion copies a snapshot's fields back onto the live prompt. When
// createVersion is set, the pre-restore state is snapshotted first so the
// restore itself can be undone. A snapshot collection reference whose
// collection has since been deleted is dropped rather than restored, keeping
// the referential integrity invariant intact.
func (s *MemoryStore) RestoreVersion(promptID, versionID string, createVersion bool) (models.Prompt, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.prompts[promptID]
	if !ok {
		return models.Prompt{}, fmt.Errorf("prompt %q %w", promptID, ErrNotFound)
	}
	v, err := s.getVersionLocked(promptID, versionID)
	if err != nil {
		return models.Prompt{}, err
	}

	if createVersion {
		s.snapshotLocked(p, fmt.Sprintf("Before restore to version %d", v.VersionNumber), "")
	}

	p.Title = v.Title
	p.Content = v.Content
	p.Description = v.Description
	p.CollectionID = cloneStringPtr(v.CollectionID)
	if p.CollectionID != nil {
		if _, ok := s.collections[*p.CollectionID]; !ok {
			p.CollectionID = nil
		}
	}
	p.Variables = extractVariables(p.Content)
	p.UpdatedAt = models.Now()

	s.logOp("RestoreVersion", start, "prompt_id", promptID, "version", v.VersionNumber)
	return clonePrompt(p), nil
}

// DeleteVersion removes one version. Remaining versions keep their numbers;
// the resulting gap is permanent.
func (s *MemoryStore) DeleteVersion(promptID, versionID string) error {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.getVersionLocked(promptID, versionID)
	if err != nil {
		return err
	}
	delete(s.versions, versionID)
	s.versionsByPrompt[promptID] = removeID(s.versionsByPrompt[promptID], versionID)

	s.logOp("DeleteVersion", start, "prompt_id", promptID, "version", v.VersionNumber)
	return nil
}

// CompareVersions returns both snapshots plus a line diff of their contents.
func (s *MemoryStore) CompareVersions(promptID, fromID, toID string) (models.VersionDiff, error) {
	start := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	from, err := s.getVersionLocked(promptID, fromID)
	if err != nil {
		return models.VersionDiff{}, err
	}
	to, err := s.getVersionLocked(promptID, toID)
	if err != nil {
		return models.VersionDiff{}, err
	}

	lines := diffLines(from.Content, to.Content)
	diff := models.VersionDiff{
		From:    cloneVersion(from),
		To:      cloneVersion(to),
		Lines:   lines,
		Summary: diffSummary(lines),
	}

	s.logOp("CompareVersions", start, "prompt_id", promptID,
		"from_version", from.VersionNumber, "to_version", to.VersionNumber)
	return diff, nil
}
