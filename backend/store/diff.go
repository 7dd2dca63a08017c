package store

import (
	"strings"

	"github.com/promptlab/promptlab/backend/models"
)

// diffLines computes a line-level diff between two content strings using a
// longest-common-subsequence walk. A replaced line appears as a delete
// followed by an add, like git's line diff.
func diffLines(oldText, newText string) []models.DiffLine {
	oldLines := strings.Split(oldText, "\n")
	newLines := strings.Split(newText, "\n")
	m, n := len(oldLines), len(newLines)

	// lcs[i][j] is the LCS length of oldLines[i:] and newLines[j:].
	lcs := make([][]int, m+1)
	for i := range lcs {
		lcs[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if oldLines[i] == newLines[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	result := make([]models.DiffLine, 0, max(m, n))
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case oldLines[i] == newLines[j]:
			result = append(result, models.DiffLine{
				Type:    models.DiffEqual,
				Content: oldLines[i],
				OldLine: i + 1,
				NewLine: j + 1,
			})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			result = append(result, models.DiffLine{
				Type:    models.DiffDelete,
				Content: oldLines[i],
				OldLine: i + 1,
			})
			i++
		default:
			result = append(result, models.DiffLine{
				Type:    models.DiffAdd,
				Content: newLines[j],
				NewLine: j + 1,
			})
			j++
		}
	}
	for ; i < m; i++ {
		result = append(result, models.DiffLine{
			Type:    models.DiffDelete,
			Content: oldLines[i],
			OldLine: i + 1,
		})
	}
	for ; j < n; j++ {
		result = append(result, models.DiffLine{
			Type:    models.DiffAdd,
			Content: newLines[j],
			NewLine: j + 1,
		})
	}
	return result
}

func diffSummary(lines []models.DiffLine) models.DiffSummary {
	var summary models.DiffSummary
	for _, line := range lines {
		switch line.Type {
		case models.DiffAdd:
			summary.Added++
		case models.DiffDelete:
			summary.Deleted++
		}
	}
	summary.Total = summary.Added + summary.Deleted
	return summary
}
