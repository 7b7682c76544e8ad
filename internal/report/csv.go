// Package report implements the CSV record source and sinks for batch and
// dedup reports.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/helixir/citation-contact-service/internal/domain"
)

// Columns of the batch report, in order.
var reportHeader = []string{"citation", "doi", "corresponding_author", "email", "affiliation", "status"}

// Input column names recognized as the citation column, in priority order.
// When neither is present the first column is used.
var citationColumns = []string{"Footnote", "Reference"}

// ReadCitations reads the citation column from an uploaded CSV. The first
// row must be a header; the citation column is "Footnote" if present, else
// "Reference", else the first column. Rows are returned in input order,
// blanks included (the pipeline skips them).
func ReadCitations(r io.Reader) ([]domain.Citation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, domain.NewValidationError("file", "CSV file is empty or has no headers")
		}
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	if len(header) == 0 {
		return nil, domain.NewValidationError("file", "CSV file is empty or has no headers")
	}

	column := 0
	for _, want := range citationColumns {
		if idx := indexOf(header, want); idx >= 0 {
			column = idx
			break
		}
	}

	var citations []domain.Citation
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}
		value := ""
		if column < len(record) {
			value = record[column]
		}
		citations = append(citations, domain.Citation(value))
	}

	return citations, nil
}

// WriteBatchReport writes the batch report: the result rows, a blank
// separator row, a SUMMARY marker, the (label, count) stat rows, and the
// top email domain rows.
func WriteBatchReport(w io.Writer, rows []domain.ResultRow, stats domain.SummaryStats) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(reportHeader); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(rowRecord(row)); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}

	summary := [][2]string{
		{"", ""},
		{"SUMMARY", ""},
		{"total_rows", strconv.Itoa(stats.TotalRows)},
		{"unique_authors", strconv.Itoa(stats.UniqueAuthors)},
		{"emails_found", strconv.Itoa(stats.EmailsFound)},
		{"unique_emails", strconv.Itoa(stats.UniqueEmails)},
		{"top_email_domains (domain=count)", ""},
	}
	for _, dc := range stats.TopDomains {
		summary = append(summary, [2]string{dc.Domain, strconv.Itoa(dc.Count)})
	}
	for _, entry := range summary {
		// Summary rows use the citation column for the label and the
		// status column for the count, matching the report layout.
		if err := cw.Write([]string{entry[0], "", "", "", "", entry[1]}); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadReportRows reads the data rows of a previously produced report for
// deduplication. Reading stops at the blank separator row so a report with
// its summary block can be fed back in. Columns are located by header name
// and missing columns degrade to empty fields.
func ReadReportRows(r io.Reader) ([]domain.ResultRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, domain.NewValidationError("file", "CSV file is empty or has no headers")
		}
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	citIdx := indexOf(header, "citation")
	doiIdx := indexOf(header, "doi")
	nameIdx := indexOf(header, "corresponding_author")
	emailIdx := indexOf(header, "email")
	affIdx := indexOf(header, "affiliation")
	statusIdx := indexOf(header, "status")

	var rows []domain.ResultRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}
		// The batch summary block is preceded by an all-empty record;
		// the dedup summary block starts with a "---" marker line.
		if isBlankRecord(record) || strings.HasPrefix(record[0], "---") {
			break
		}
		rows = append(rows, domain.ResultRow{
			Citation:    domain.Citation(field(record, citIdx)),
			Identifier:  field(record, doiIdx),
			AuthorName:  field(record, nameIdx),
			Email:       field(record, emailIdx),
			Affiliation: field(record, affIdx),
			Status:      domain.RowStatus(field(record, statusIdx)),
		})
	}

	return rows, nil
}

// WriteDedupReport writes the deduplicated rows followed by the trailing
// plain-text summary block.
func WriteDedupReport(w io.Writer, rows []domain.ResultRow, stats domain.DedupStats) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(reportHeader); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(rowRecord(row)); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w,
		"\n\n--- DEDUPLICATION SUMMARY ---\nOriginal rows,%d\nDeduplicated rows,%d\nDuplicates removed,%d\nUnique emails found,%d\n",
		stats.OriginalRows, stats.KeptRows, stats.RemovedRows, stats.UniqueEmails)
	if err != nil {
		return fmt.Errorf("write dedup summary: %w", err)
	}

	return nil
}

func rowRecord(row domain.ResultRow) []string {
	return []string{
		string(row.Citation),
		row.Identifier,
		row.AuthorName,
		row.Email,
		row.Affiliation,
		string(row.Status),
	}
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func isBlankRecord(record []string) bool {
	for _, f := range record {
		if f != "" {
			return false
		}
	}
	return true
}
