package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/citation-contact-service/internal/domain"
	"github.com/helixir/citation-contact-service/internal/observability"
	"github.com/helixir/citation-contact-service/internal/storage"
)

type fakeBatch struct {
	rows  []domain.ResultRow
	stats domain.SummaryStats
	err   error
	got   []domain.Citation
}

func (f *fakeBatch) Process(_ context.Context, citations []domain.Citation) ([]domain.ResultRow, domain.SummaryStats, error) {
	f.got = citations
	return f.rows, f.stats, f.err
}

func newTestServer(t *testing.T, batch BatchRunner) *Server {
	t.Helper()

	files, err := storage.NewFileStore(filepath.Join(t.TempDir(), "outputs"), zerolog.Nop())
	require.NoError(t, err)

	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	return NewServer(Config{
		Address:        "127.0.0.1:0",
		MaxUploadBytes: 1 << 20,
	}, batch, files, metrics, nil, zerolog.Nop())
}

func csvUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestIndexPage(t *testing.T) {
	srv := newTestServer(t, &fakeBatch{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Citation Contact Service")
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeBatch{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUploadNoFile(t *testing.T) {
	srv := newTestServer(t, &fakeBatch{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRejectsNonCSV(t *testing.T) {
	srv := newTestServer(t, &fakeBatch{})

	body, contentType := csvUpload(t, "file", "notes.txt", "Footnote\nsome citation\n")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "only CSV files")
}

func TestUploadProcessesAndSaves(t *testing.T) {
	batch := &fakeBatch{
		rows: []domain.ResultRow{
			{
				Citation:    "Doe J. Example. doi:10.1/x",
				Identifier:  "10.1/x",
				AuthorName:  "Jane Doe",
				Email:       "jane@mit.edu",
				Affiliation: "MIT",
				Status:      domain.StatusSuccess,
			},
		},
		stats: domain.SummaryStats{
			TotalRows:     1,
			UniqueAuthors: 1,
			EmailsFound:   1,
			UniqueEmails:  1,
			TopDomains:    []domain.DomainCount{{Domain: "mit.edu", Count: 1}},
		},
	}
	srv := newTestServer(t, batch)

	body, contentType := csvUpload(t, "file", "citations.csv", "Footnote\nDoe J. Example. doi:10.1/x\n")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []domain.Citation{"Doe J. Example. doi:10.1/x"}, batch.got)

	var resp struct {
		Success        bool   `json:"success"`
		Filename       string `json:"filename"`
		TotalProcessed int    `json:"total_processed"`
		Preview        []struct {
			CorrespondingAuthor string `json:"corresponding_author"`
			Email               string `json:"email"`
		} `json:"preview"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.Filename, "processed_footnotes_"))
	assert.Equal(t, 1, resp.TotalProcessed)
	require.Len(t, resp.Preview, 1)
	assert.Equal(t, "Jane Doe", resp.Preview[0].CorrespondingAuthor)

	// The saved report is downloadable.
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/"+resp.Filename, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "jane@mit.edu")
	assert.Contains(t, rec.Body.String(), "SUMMARY")
}

func TestUploadStream(t *testing.T) {
	batch := &fakeBatch{
		rows:  []domain.ResultRow{{Citation: "c", Status: domain.StatusNoIdentifier}},
		stats: domain.SummaryStats{TotalRows: 1},
	}
	srv := newTestServer(t, batch)

	body, contentType := csvUpload(t, "file", "citations.csv", "Footnote\nc\n")
	req := httptest.NewRequest(http.MethodPost, "/upload?stream=1", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "processed_footnotes.csv")
	assert.Contains(t, rec.Body.String(), "citation,doi,corresponding_author,email,affiliation,status")
	assert.Contains(t, rec.Body.String(), "SUMMARY")
}

func TestUploadBatchFailure(t *testing.T) {
	srv := newTestServer(t, &fakeBatch{err: errors.New("context canceled")})

	body, contentType := csvUpload(t, "file", "citations.csv", "Footnote\nc\n")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUploadMalformedCSV(t *testing.T) {
	srv := newTestServer(t, &fakeBatch{})

	body, contentType := csvUpload(t, "file", "citations.csv", "")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDedupe(t *testing.T) {
	srv := newTestServer(t, &fakeBatch{})

	reportCSV := strings.Join([]string{
		"citation,doi,corresponding_author,email,affiliation,status",
		"c1,10.1/x,Jane Doe,jane@mit.edu,MIT,Success",
		"c2,10.1/y,Jane Doe,jane@mit.edu,MIT,Success",
		"c3,10.1/z,John Roe,john@stanford.edu,Stanford,Success",
	}, "\n")

	body, contentType := csvUpload(t, "file", "report.csv", reportCSV)
	req := httptest.NewRequest(http.MethodPost, "/dedupe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success  bool   `json:"success"`
		Filename string `json:"filename"`
		Stats    struct {
			OriginalRows      int `json:"original_rows"`
			DeduplicatedRows  int `json:"deduplicated_rows"`
			DuplicatesRemoved int `json:"duplicates_removed"`
			UniqueEmails      int `json:"unique_emails"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.Filename, "deduped_"))
	assert.Equal(t, 3, resp.Stats.OriginalRows)
	assert.Equal(t, 2, resp.Stats.DeduplicatedRows)
	assert.Equal(t, 1, resp.Stats.DuplicatesRemoved)
	assert.Equal(t, 2, resp.Stats.UniqueEmails)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/"+resp.Filename, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "--- DEDUPLICATION SUMMARY ---")
}

func TestDownloadMissing(t *testing.T) {
	srv := newTestServer(t, &fakeBatch{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/missing.csv", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"file not found"}`, rec.Body.String())
}

func TestCorrelationIDHeader(t *testing.T) {
	srv := newTestServer(t, &fakeBatch{})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Correlation-ID", "fixed-id")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Correlation-ID"))
}
