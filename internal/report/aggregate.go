package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rpattn/logreport/internal/domain"
)

const (
	maxSummaryWords  = 300
	maxReasonRunes   = 60
	recentRowLimit   = 5
	datasetLineLimit = 5
	ellipsisMarker   = "..."

	summaryTitle     = "Failed Query Log Report"
	mostRecentFormat = "2006-01-02 15:04:05"
)

// Summarize aggregates the row set into the report summary. Deterministic
// for a given input; an empty row set yields zero counts and no most-recent
// timestamp rather than an error.
func Summarize(rows []domain.LogRow) domain.Summary {
	summary := domain.Summary{
		Total:            len(rows),
		ByDataset:        countByDataset(rows),
		MostCommonReason: mostCommonReason(rows),
	}

	for _, row := range rows {
		if !row.HasDate() {
			continue
		}
		if summary.MostRecent == nil || row.Date.After(*summary.MostRecent) {
			ts := row.Date
			summary.MostRecent = &ts
		}
	}

	// First five rows in ingestion order, not re-sorted by date.
	limit := recentRowLimit
	if len(rows) < limit {
		limit = len(rows)
	}
	summary.Recent = append([]domain.LogRow(nil), rows[:limit]...)

	return summary
}

// countByDataset groups rows by dataset, ordered by count descending with
// ties broken by first appearance.
func countByDataset(rows []domain.LogRow) []domain.DatasetCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0
	for _, row := range rows {
		if _, seen := counts[row.Dataset]; !seen {
			firstSeen[row.Dataset] = order
			order++
		}
		counts[row.Dataset]++
	}

	grouped := make([]domain.DatasetCount, 0, len(counts))
	for dataset, count := range counts {
		grouped = append(grouped, domain.DatasetCount{Dataset: dataset, Count: count})
	}
	sort.SliceStable(grouped, func(i, j int) bool {
		if grouped[i].Count != grouped[j].Count {
			return grouped[i].Count > grouped[j].Count
		}
		return firstSeen[grouped[i].Dataset] < firstSeen[grouped[j].Dataset]
	})
	return grouped
}

// mostCommonReason returns the non-missing reason with the highest count,
// ties broken by first appearance, or the sentinel when every reason is
// missing.
func mostCommonReason(rows []domain.LogRow) string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0
	for _, row := range rows {
		if !row.HasReason() {
			continue
		}
		if _, seen := counts[row.Reason]; !seen {
			firstSeen[row.Reason] = order
			order++
		}
		counts[row.Reason]++
	}
	if len(counts) == 0 {
		return domain.MissingReasonSentinel
	}

	best := ""
	bestCount := -1
	for reason, count := range counts {
		if count > bestCount || (count == bestCount && firstSeen[reason] < firstSeen[best]) {
			best = reason
			bestCount = count
		}
	}
	return best
}

// BuildSummaryText assembles the report body from the summary and caps it at
// 300 whitespace-delimited words.
func BuildSummaryText(summary domain.Summary) string {
	mostRecent := domain.MissingReasonSentinel
	if summary.MostRecent != nil {
		mostRecent = summary.MostRecent.Format(mostRecentFormat)
	}

	lines := []string{
		summaryTitle,
		fmt.Sprintf("Total failed queries: %d", summary.Total),
		fmt.Sprintf("Most recent failure: %s", mostRecent),
		"",
		"Failures by dataset (top 5):",
	}
	for idx, entry := range summary.ByDataset {
		if idx >= datasetLineLimit {
			break
		}
		lines = append(lines, fmt.Sprintf("  - %s: %d", entry.Dataset, entry.Count))
	}
	lines = append(lines, "", fmt.Sprintf("Most common error: %s", summary.MostCommonReason), "", "Recent failures (top 5):")
	for _, row := range summary.Recent {
		lines = append(lines, fmt.Sprintf("  - Date: %s, Dataset: %s, Reason: %s",
			row.RawDate, row.Dataset, truncateReason(row.Reason)))
	}

	return capWords(strings.Join(lines, "\n"), maxSummaryWords)
}

// truncateReason keeps at most 60 runes and always appends the marker, even
// for short values.
func truncateReason(reason string) string {
	runes := []rune(reason)
	if len(runes) > maxReasonRunes {
		runes = runes[:maxReasonRunes]
	}
	return string(runes) + ellipsisMarker
}

// capWords truncates text to the first limit whitespace-delimited tokens and
// appends the marker when anything was dropped.
func capWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return text
	}
	return strings.Join(words[:limit], " ") + ellipsisMarker
}
