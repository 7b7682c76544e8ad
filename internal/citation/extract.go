// Package citation extracts document identifiers from free-text citations.
package citation

import (
	"regexp"
	"strings"

	"github.com/helixir/citation-contact-service/internal/domain"
)

// DOI patterns in priority order. The first match wins, so a "doi:" prefix
// beats a bare "doi" token, which in turn beats doi.org URL forms.
var doiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)doi:\s*(\S+)`),
	regexp.MustCompile(`(?i)doi\s*(\S+)`),
	regexp.MustCompile(`https?://doi\.org/(\S+)`),
	regexp.MustCompile(`https?://dx\.doi\.org/(\S+)`),
}

// PMID patterns, tried only when no DOI pattern matches.
var pmidPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)PMID:\s*(\d+)`),
	regexp.MustCompile(`(?i)PMID\s*(\d+)`),
}

// Extract pulls a DOI or PMID out of raw citation text. DOI detection always
// takes priority over PMID detection regardless of position in the text.
// It returns the zero Identifier and false when neither is present; callers
// treat that as a degradation, not an error.
func Extract(text string) (domain.Identifier, bool) {
	for _, re := range doiPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			doi := strings.TrimRight(m[1], ".,;:")
			if doi == "" {
				continue
			}
			return domain.Identifier{Kind: domain.IdentifierDOI, Value: doi}, true
		}
	}

	for _, re := range pmidPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return domain.Identifier{Kind: domain.IdentifierPMID, Value: m[1]}, true
		}
	}

	return domain.Identifier{}, false
}
