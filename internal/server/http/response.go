package httpserver

import (
	"github.com/helixir/citation-contact-service/internal/domain"
)

// Response types for JSON serialization.

type uploadResponse struct {
	Success        bool              `json:"success"`
	Filename       string            `json:"filename"`
	Preview        []rowResponse     `json:"preview"`
	TotalProcessed int               `json:"total_processed"`
	Summary        summaryResponse   `json:"summary"`
}

type summaryResponse struct {
	TotalRows     int              `json:"total_rows"`
	UniqueAuthors int              `json:"unique_authors"`
	EmailsFound   int              `json:"emails_found"`
	UniqueEmails  int              `json:"unique_emails"`
	TopDomains    []domainResponse `json:"top_email_domains"`
}

type domainResponse struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

type rowResponse struct {
	Citation            string `json:"citation"`
	DOI                 string `json:"doi"`
	CorrespondingAuthor string `json:"corresponding_author"`
	Email               string `json:"email"`
	Affiliation         string `json:"affiliation"`
	Status              string `json:"status"`
}

type dedupeResponse struct {
	Success  bool                `json:"success"`
	Filename string              `json:"filename"`
	Stats    dedupeStatsResponse `json:"stats"`
	Preview  []rowResponse       `json:"preview"`
}

type dedupeStatsResponse struct {
	OriginalRows      int `json:"original_rows"`
	DeduplicatedRows  int `json:"deduplicated_rows"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	UniqueEmails      int `json:"unique_emails"`
}

// Converter functions

func rowsToResponses(rows []domain.ResultRow, limit int) []rowResponse {
	if len(rows) < limit {
		limit = len(rows)
	}
	out := make([]rowResponse, 0, limit)
	for _, row := range rows[:limit] {
		out = append(out, rowResponse{
			Citation:            string(row.Citation),
			DOI:                 row.Identifier,
			CorrespondingAuthor: row.AuthorName,
			Email:               row.Email,
			Affiliation:         row.Affiliation,
			Status:              string(row.Status),
		})
	}
	return out
}

func domainsToResponses(domains []domain.DomainCount) []domainResponse {
	out := make([]domainResponse, 0, len(domains))
	for _, dc := range domains {
		out = append(out, domainResponse{Domain: dc.Domain, Count: dc.Count})
	}
	return out
}
