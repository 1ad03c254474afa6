// file: internal/downloads/filter.go
// version: 1.0.0
// guid: 6d2893c6-b178-4dfd-a239-32aa7a170908

package downloads

import (
	"strings"

	"github.com/jdfalk/readora/internal/models"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Filter returns the records whose title, subtitle or authors fuzzily
// contain query, ignoring case. A blank query returns records unchanged.
func Filter(records []models.DownloadRecord, query string) []models.DownloadRecord {
	query = strings.TrimSpace(query)
	if query == "" {
		return records
	}

	matched := make([]models.DownloadRecord, 0, len(records))
	for _, r := range records {
		if fuzzy.MatchFold(query, r.Title) ||
			fuzzy.MatchFold(query, r.Subtitle) ||
			fuzzy.MatchFold(query, r.Authors) {
			matched = append(matched, r)
		}
	}
	return matched
}
