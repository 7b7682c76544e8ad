package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifierString(t *testing.T) {
	assert.Equal(t, "10.1234/example", Identifier{Kind: IdentifierDOI, Value: "10.1234/example"}.String())
	assert.Equal(t, "PMID:12345678", Identifier{Kind: IdentifierPMID, Value: "12345678"}.String())
	assert.Equal(t, "", Identifier{}.String())
}

func TestIdentifierIsZero(t *testing.T) {
	assert.True(t, Identifier{}.IsZero())
	assert.False(t, Identifier{Kind: IdentifierDOI, Value: "10.1/x"}.IsZero())
}

func TestCitationIsBlank(t *testing.T) {
	assert.True(t, Citation("").IsBlank())
	assert.True(t, Citation("   \t ").IsBlank())
	assert.False(t, Citation("Doe J. Example.").IsBlank())
}

func TestAuthorRecordName(t *testing.T) {
	assert.Equal(t, "Jane Doe", AuthorRecord{Given: "Jane", Family: "Doe"}.Name())
	assert.Equal(t, "Jane", AuthorRecord{Given: "Jane"}.Name())
	assert.Equal(t, "Doe", AuthorRecord{Family: "Doe"}.Name())
	assert.Equal(t, "", AuthorRecord{}.Name())
}

func TestAuthorRecordJoinedAffiliation(t *testing.T) {
	assert.Equal(t, "", AuthorRecord{}.JoinedAffiliation())
	assert.Equal(t, "MIT", AuthorRecord{Affiliations: []string{"MIT"}}.JoinedAffiliation())
	assert.Equal(t, "MIT; Broad Institute", AuthorRecord{Affiliations: []string{"MIT", "Broad Institute"}}.JoinedAffiliation())
}
