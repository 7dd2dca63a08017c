package store

import (
	"slices"
	"sort"
	"strings"

	"github.com/promptlab/promptlab/backend/models"
)

// The filter pipeline below operates on snapshots, never on store-owned
// state. Each stage is optional; an empty result is valid, not an error.

// filterByCollection keeps prompts owned by exactly the given collection.
func filterByCollection(prompts []models.Prompt, collectionID string) []models.Prompt {
	results := prompts[:0:0]
	for _, p := range prompts {
		if p.CollectionID != nil && *p.CollectionID == collectionID {
			results = append(results, p)
		}
	}
	return results
}

// filterByTags keeps prompts matching the tag set: with matchAll, a prompt
// must carry every requested tag (AND); otherwise at least one (OR).
func filterByTags(prompts []models.Prompt, tagIDs []string, matchAll bool) []models.Prompt {
	results := prompts[:0:0]
	for _, p := range prompts {
		if matchesTags(p.TagIDs, tagIDs, matchAll) {
			results = append(results, p)
		}
	}
	return results
}

func matchesTags(have, want []string, matchAll bool) bool {
	if matchAll {
		for _, id := range want {
			if !slices.Contains(have, id) {
				return false
			}
		}
		return true
	}
	for _, id := range want {
		if slices.Contains(have, id) {
			return true
		}
	}
	return false
}

// searchPrompts keeps prompts whose title or description contains the query,
// case-insensitively. A prompt without a description never matches on it.
func searchPrompts(prompts []models.Prompt, query string) []models.Prompt {
	q := strings.ToLower(query)
	results := prompts[:0:0]
	for _, p := range prompts {
		if strings.Contains(strings.ToLower(p.Title), q) ||
			(p.Description != "" && strings.Contains(strings.ToLower(p.Description), q)) {
			results = append(results, p)
		}
	}
	return results
}

// sortByCreatedAtDesc orders newest first. The sort is stable so prompts
// with equal timestamps keep their insertion order.
func sortByCreatedAtDesc(prompts []models.Prompt) {
	sort.SliceStable(prompts, func(i, j int) bool {
		return prompts[i].CreatedAt.After(prompts[j].CreatedAt)
	})
}

// paginate applies offset then limit. limit <= 0 means unbounded.
func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
