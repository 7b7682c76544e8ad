package pipeline

import (
	"sort"
	"strings"

	"github.com/helixir/citation-contact-service/internal/domain"
)

// maxTopDomains caps the top_email_domains section of the batch report.
const maxTopDomains = 10

// Summarize computes summary statistics over a batch's result rows.
// Top domains are ordered by count descending; ties keep first-seen order.
func Summarize(rows []domain.ResultRow) domain.SummaryStats {
	stats := domain.SummaryStats{TotalRows: len(rows)}

	authors := make(map[string]struct{})
	emailSet := make(map[string]struct{})
	domainCounts := make(map[string]int)
	var domainOrder []string

	for _, row := range rows {
		if name := strings.ToLower(strings.TrimSpace(row.AuthorName)); name != "" {
			authors[name] = struct{}{}
		}

		email := strings.TrimSpace(row.Email)
		if email == "" || !strings.Contains(email, "@") {
			continue
		}
		email = strings.ToLower(email)
		stats.EmailsFound++
		emailSet[email] = struct{}{}

		dom := email[strings.LastIndex(email, "@")+1:]
		if _, seen := domainCounts[dom]; !seen {
			domainOrder = append(domainOrder, dom)
		}
		domainCounts[dom]++
	}

	stats.UniqueAuthors = len(authors)
	stats.UniqueEmails = len(emailSet)

	sort.SliceStable(domainOrder, func(i, j int) bool {
		return domainCounts[domainOrder[i]] > domainCounts[domainOrder[j]]
	})
	for _, dom := range domainOrder {
		if len(stats.TopDomains) == maxTopDomains {
			break
		}
		stats.TopDomains = append(stats.TopDomains, domain.DomainCount{
			Domain: dom,
			Count:  domainCounts[dom],
		})
	}

	return stats
}
