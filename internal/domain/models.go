// Package domain contains the core types shared across the citation contact service.
package domain

import "strings"

// IdentifierKind distinguishes the supported document identifier types.
type IdentifierKind string

const (
	// IdentifierDOI is a Digital Object Identifier.
	IdentifierDOI IdentifierKind = "doi"

	// IdentifierPMID is a PubMed identifier.
	IdentifierPMID IdentifierKind = "pmid"
)

// Identifier is a document identifier extracted from citation text.
// The zero value represents "no identifier".
type Identifier struct {
	// Kind is the identifier type (DOI or PMID).
	Kind IdentifierKind

	// Value is the identifier value: the bare DOI for DOIs,
	// the digit string for PMIDs.
	Value string
}

// IsZero reports whether no identifier is present.
func (id Identifier) IsZero() bool {
	return id.Value == ""
}

// String returns the report representation of the identifier:
// the DOI itself, or "PMID:<digits>" for PubMed identifiers.
func (id Identifier) String() string {
	if id.IsZero() {
		return ""
	}
	if id.Kind == IdentifierPMID {
		return "PMID:" + id.Value
	}
	return id.Value
}

// Citation is one raw citation line from an input record source.
type Citation string

// IsBlank reports whether the citation contains no non-whitespace text.
func (c Citation) IsBlank() bool {
	return strings.TrimSpace(string(c)) == ""
}

// AuthorRecord is one author as reported by a metadata source.
type AuthorRecord struct {
	// Given is the author's given name.
	Given string

	// Family is the author's family name.
	Family string

	// Affiliations is the ordered affiliation list from the source.
	Affiliations []string

	// Email is the author's email when the metadata source provides one.
	Email string
}

// Name returns the display name for the author.
func (a AuthorRecord) Name() string {
	return strings.TrimSpace(strings.TrimSpace(a.Given) + " " + strings.TrimSpace(a.Family))
}

// JoinedAffiliation returns the affiliation list joined with "; ",
// or the empty string when the author has none.
func (a AuthorRecord) JoinedAffiliation() string {
	if len(a.Affiliations) == 0 {
		return ""
	}
	return strings.Join(a.Affiliations, "; ")
}

// RowStatus is the processing outcome recorded on a result row.
type RowStatus string

const (
	// StatusSuccess indicates author data was found for the citation.
	StatusSuccess RowStatus = "Success"

	// StatusNoIdentifier indicates no DOI or PMID could be extracted.
	StatusNoIdentifier RowStatus = "No DOI/PMID found"

	// StatusNoAuthorData indicates the metadata sources yielded no usable author.
	StatusNoAuthorData RowStatus = "No author data found"
)

// ResultRow is one row of the batch report: one per author record,
// or a single placeholder row when identifier or author data is absent.
type ResultRow struct {
	// Citation is the raw citation text the row was derived from.
	Citation Citation

	// Identifier is the report form of the extracted DOI/PMID, empty if none.
	Identifier string

	// AuthorName is the author display name, empty if unknown.
	AuthorName string

	// Email is the author email from metadata or discovery, empty if none.
	Email string

	// Affiliation is the semicolon-joined affiliation, empty if none.
	Affiliation string

	// Status is the processing outcome for this row.
	Status RowStatus
}

// DomainCount is one (email domain, occurrence count) pair.
type DomainCount struct {
	Domain string
	Count  int
}

// SummaryStats aggregates a batch's result rows.
type SummaryStats struct {
	// TotalRows is the number of result rows in the batch.
	TotalRows int

	// UniqueAuthors is the number of distinct (lowercased) author names.
	UniqueAuthors int

	// EmailsFound counts rows whose email contains "@".
	EmailsFound int

	// UniqueEmails is the number of distinct (lowercased) emails.
	UniqueEmails int

	// TopDomains holds up to ten email domains ordered by count descending,
	// ties broken by first-seen order.
	TopDomains []DomainCount
}

// DedupStats summarizes a deduplication pass over a prior report.
type DedupStats struct {
	// OriginalRows is the input row count.
	OriginalRows int

	// KeptRows is the row count after deduplication.
	KeptRows int

	// RemovedRows is the number of duplicate rows dropped.
	RemovedRows int

	// UniqueEmails counts kept rows whose email contains "@".
	UniqueEmails int
}
