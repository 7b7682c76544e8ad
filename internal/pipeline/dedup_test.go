package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/citation-contact-service/internal/domain"
)

func TestDedup(t *testing.T) {
	rows := []domain.ResultRow{
		{Citation: "c1", AuthorName: "Jane Doe", Email: "jane@mit.edu"},
		{Citation: "c2", AuthorName: "Jane Doe", Email: "jane@mit.edu"},
		{Citation: "c3", AuthorName: "John Roe", Email: "john@stanford.edu"},
	}

	kept, stats := Dedup(rows)

	require.Len(t, kept, 2)
	// First occurrence wins; input order is preserved.
	assert.Equal(t, domain.Citation("c1"), kept[0].Citation)
	assert.Equal(t, domain.Citation("c3"), kept[1].Citation)

	assert.Equal(t, 3, stats.OriginalRows)
	assert.Equal(t, 2, stats.KeptRows)
	assert.Equal(t, 1, stats.RemovedRows)
	assert.Equal(t, 2, stats.UniqueEmails)
}

func TestDedupCaseInsensitiveKey(t *testing.T) {
	rows := []domain.ResultRow{
		{AuthorName: "Jane Doe", Email: "jane@mit.edu"},
		{AuthorName: "JANE DOE", Email: "JANE@MIT.EDU"},
	}

	kept, stats := Dedup(rows)
	assert.Len(t, kept, 1)
	assert.Equal(t, 1, stats.RemovedRows)
}

func TestDedupDistinctEmailsSameAuthor(t *testing.T) {
	rows := []domain.ResultRow{
		{AuthorName: "Jane Doe", Email: "jane@mit.edu"},
		{AuthorName: "Jane Doe", Email: "jdoe@alum.mit.edu"},
	}

	kept, _ := Dedup(rows)
	assert.Len(t, kept, 2)
}

func TestDedupRowsWithoutEmails(t *testing.T) {
	rows := []domain.ResultRow{
		{AuthorName: "Jane Doe"},
		{AuthorName: "Jane Doe"},
		{AuthorName: "John Roe"},
	}

	kept, stats := Dedup(rows)
	assert.Len(t, kept, 2)
	assert.Equal(t, 0, stats.UniqueEmails)
}

func TestDedupEmpty(t *testing.T) {
	kept, stats := Dedup(nil)
	assert.Empty(t, kept)
	assert.Equal(t, domain.DedupStats{}, stats)
}
