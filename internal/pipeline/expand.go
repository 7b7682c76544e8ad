package pipeline

import (
	"context"

	"github.com/helixir/citation-contact-service/internal/domain"
)

// EmailFinder discovers an email for an author when the metadata source
// did not provide one. An empty result means no email was found.
type EmailFinder interface {
	Discover(ctx context.Context, name, affiliation string) string
}

// expandRows turns an author list into one result row per author, invoking
// the email finder for authors whose metadata carries no email. An empty
// author list yields exactly one placeholder row with status NoAuthorData.
func expandRows(ctx context.Context, finder EmailFinder, cit domain.Citation, id domain.Identifier, authors []domain.AuthorRecord) []domain.ResultRow {
	if len(authors) == 0 {
		return []domain.ResultRow{{
			Citation:   cit,
			Identifier: id.String(),
			Status:     domain.StatusNoAuthorData,
		}}
	}

	rows := make([]domain.ResultRow, 0, len(authors))
	for _, author := range authors {
		name := author.Name()
		affiliation := author.JoinedAffiliation()

		email := author.Email
		if email == "" {
			email = finder.Discover(ctx, name, affiliation)
		}

		status := domain.StatusSuccess
		if name == "" {
			status = domain.StatusNoAuthorData
		}

		rows = append(rows, domain.ResultRow{
			Citation:    cit,
			Identifier:  id.String(),
			AuthorName:  name,
			Email:       email,
			Affiliation: affiliation,
			Status:      status,
		})
	}

	return rows
}
