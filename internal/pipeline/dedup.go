package pipeline

import (
	"strings"

	"github.com/helixir/citation-contact-service/internal/domain"
)

// dedupKey identifies a row for deduplication purposes.
type dedupKey struct {
	name  string
	email string
}

// Dedup collapses duplicate (author, email) rows from a previously
// produced report. Rows are scanned in original order and the first row
// per distinct key is kept: this is a stable order-preserving filter, not
// a resort.
func Dedup(rows []domain.ResultRow) ([]domain.ResultRow, domain.DedupStats) {
	stats := domain.DedupStats{OriginalRows: len(rows)}

	seen := make(map[dedupKey]struct{}, len(rows))
	kept := make([]domain.ResultRow, 0, len(rows))
	for _, row := range rows {
		key := dedupKey{
			name:  strings.ToLower(strings.TrimSpace(row.AuthorName)),
			email: strings.ToLower(strings.TrimSpace(row.Email)),
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)

		if strings.Contains(row.Email, "@") {
			stats.UniqueEmails++
		}
	}

	stats.KeptRows = len(kept)
	stats.RemovedRows = stats.OriginalRows - stats.KeptRows
	return kept, stats
}
