package metasources

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/citation-contact-service/internal/domain"
	"github.com/helixir/citation-contact-service/internal/observability"
)

type stubSource struct {
	name       string
	canResolve bool
	authors    []domain.AuthorRecord
	err        error
	calls      int
}

func (s *stubSource) Lookup(context.Context, domain.Identifier) ([]domain.AuthorRecord, error) {
	s.calls++
	return s.authors, s.err
}

func (s *stubSource) CanResolve(domain.Identifier) bool { return s.canResolve }

func (s *stubSource) Name() string { return s.name }

func newTestResolver(sources ...AuthorSource) *Resolver {
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	return NewResolver(zerolog.Nop(), metrics, sources...)
}

func doi(value string) domain.Identifier {
	return domain.Identifier{Kind: domain.IdentifierDOI, Value: value}
}

func TestResolveFirstSourceWins(t *testing.T) {
	first := &stubSource{name: "first", canResolve: true, authors: []domain.AuthorRecord{{Given: "Jane", Family: "Doe"}}}
	second := &stubSource{name: "second", canResolve: true, authors: []domain.AuthorRecord{{Given: "John", Family: "Roe"}}}

	authors := newTestResolver(first, second).Resolve(context.Background(), doi("10.1/x"))
	require.Len(t, authors, 1)
	assert.Equal(t, "Jane Doe", authors[0].Name())
	assert.Equal(t, 0, second.calls)
}

func TestResolveFallsThroughOnEmpty(t *testing.T) {
	first := &stubSource{name: "first", canResolve: true}
	second := &stubSource{name: "second", canResolve: true, authors: []domain.AuthorRecord{{Given: "John", Family: "Roe"}}}

	authors := newTestResolver(first, second).Resolve(context.Background(), doi("10.1/x"))
	require.Len(t, authors, 1)
	assert.Equal(t, "John Roe", authors[0].Name())
	assert.Equal(t, 1, first.calls)
}

func TestResolveFallsThroughOnError(t *testing.T) {
	first := &stubSource{name: "first", canResolve: true, err: errors.New("boom")}
	second := &stubSource{name: "second", canResolve: true, authors: []domain.AuthorRecord{{Given: "John", Family: "Roe"}}}

	authors := newTestResolver(first, second).Resolve(context.Background(), doi("10.1/x"))
	require.Len(t, authors, 1)
	assert.Equal(t, "John Roe", authors[0].Name())
}

func TestResolveSkipsIncapableSources(t *testing.T) {
	incapable := &stubSource{name: "incapable", canResolve: false, authors: []domain.AuthorRecord{{Given: "X"}}}

	authors := newTestResolver(incapable).Resolve(context.Background(), doi("10.1/x"))
	assert.Empty(t, authors)
	assert.Equal(t, 0, incapable.calls)
}

func TestResolveZeroIdentifier(t *testing.T) {
	source := &stubSource{name: "any", canResolve: true}

	authors := newTestResolver(source).Resolve(context.Background(), domain.Identifier{})
	assert.Empty(t, authors)
	assert.Equal(t, 0, source.calls)
}

func TestResolveAllSourcesExhausted(t *testing.T) {
	first := &stubSource{name: "first", canResolve: true, err: errors.New("down")}
	second := &stubSource{name: "second", canResolve: true}

	authors := newTestResolver(first, second).Resolve(context.Background(), doi("10.1/x"))
	assert.Empty(t, authors)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}
