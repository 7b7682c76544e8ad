// Package metasources provides clients for bibliographic metadata sources.
//
// Each metadata source (Crossref, PubMed) implements the AuthorSource
// interface. The Resolver tries the sources in a fixed order until one
// yields authors, so adding or reordering sources is a wiring change in
// main rather than new conditional logic.
package metasources

import (
	"context"

	"github.com/helixir/citation-contact-service/internal/domain"
)

// AuthorSource is a bibliographic metadata source that can resolve a
// document identifier to an author list.
type AuthorSource interface {
	// Lookup resolves the identifier to an ordered author list.
	// An empty slice with a nil error means the source had no data.
	// Implementations must respect context cancellation and apply
	// their own rate limiting.
	Lookup(ctx context.Context, id domain.Identifier) ([]domain.AuthorRecord, error)

	// CanResolve reports whether the source understands this identifier kind.
	CanResolve(id domain.Identifier) bool

	// Name returns a human-readable source name for logging.
	Name() string
}
