package httpserver

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/helixir/citation-contact-service/internal/domain"
	"github.com/helixir/citation-contact-service/internal/observability"
	"github.com/helixir/citation-contact-service/internal/pipeline"
	"github.com/helixir/citation-contact-service/internal/report"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// previewRows is how many result rows upload and dedupe responses echo back.
const previewRows = 5

// indexHandler serves the upload form.
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, nil); err != nil {
		s.logger.Error().Err(err).Msg("render index template")
	}
}

// uploadHandler accepts a citation CSV, runs the batch pipeline, and either
// streams the report back (?stream=1) or saves it and returns a JSON summary.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	file, _, ok := s.formCSV(w, r)
	if !ok {
		return
	}
	defer file.Close()

	citations, err := report.ReadCitations(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger := observability.WithBatchContext(s.logger, middleware.GetReqID(r.Context()), len(citations))
	logger.Info().Msg("processing uploaded citations")

	rows, stats, err := s.batch.Process(r.Context(), citations)
	if err != nil {
		logger.Error().Err(err).Msg("batch processing failed")
		writeError(w, http.StatusInternalServerError, "batch processing failed")
		return
	}

	if r.URL.Query().Get("stream") == "1" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="processed_footnotes.csv"`)
		if err := report.WriteBatchReport(w, rows, stats); err != nil {
			s.logger.Error().Err(err).Msg("stream batch report")
		}
		return
	}

	var buf bytes.Buffer
	if err := report.WriteBatchReport(&buf, rows, stats); err != nil {
		s.logger.Error().Err(err).Msg("render batch report")
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	filename := fmt.Sprintf("processed_footnotes_%d.csv", time.Now().Unix())
	if _, err := s.files.Save(filename, &buf); err != nil {
		s.logger.Error().Err(err).Str("file", filename).Msg("save batch report")
		writeError(w, http.StatusInternalServerError, "failed to save report")
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Success:        true,
		Filename:       filename,
		Preview:        rowsToResponses(rows, previewRows),
		TotalProcessed: stats.TotalRows,
		Summary: summaryResponse{
			TotalRows:     stats.TotalRows,
			UniqueAuthors: stats.UniqueAuthors,
			EmailsFound:   stats.EmailsFound,
			UniqueEmails:  stats.UniqueEmails,
			TopDomains:    domainsToResponses(stats.TopDomains),
		},
	})
}

// dedupeHandler accepts a previously produced report CSV and returns a
// deduplicated copy.
func (s *Server) dedupeHandler(w http.ResponseWriter, r *http.Request) {
	file, _, ok := s.formCSV(w, r)
	if !ok {
		return
	}
	defer file.Close()

	rows, err := report.ReadReportRows(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	kept, stats := pipeline.Dedup(rows)
	s.metrics.DedupRuns.Inc()
	s.metrics.DedupRowsRemoved.Add(float64(stats.RemovedRows))

	var buf bytes.Buffer
	if err := report.WriteDedupReport(&buf, kept, stats); err != nil {
		s.logger.Error().Err(err).Msg("render dedup report")
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	filename := fmt.Sprintf("deduped_%d.csv", time.Now().Unix())
	if _, err := s.files.Save(filename, &buf); err != nil {
		s.logger.Error().Err(err).Str("file", filename).Msg("save dedup report")
		writeError(w, http.StatusInternalServerError, "failed to save report")
		return
	}

	writeJSON(w, http.StatusOK, dedupeResponse{
		Success:  true,
		Filename: filename,
		Stats: dedupeStatsResponse{
			OriginalRows:      stats.OriginalRows,
			DeduplicatedRows:  stats.KeptRows,
			DuplicatesRemoved: stats.RemovedRows,
			UniqueEmails:      stats.UniqueEmails,
		},
		Preview: rowsToResponses(kept, previewRows),
	})
}

// downloadHandler serves a previously generated report file.
func (s *Server) downloadHandler(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	f, err := s.files.Open(filename)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		var invalid *domain.ValidationError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, invalid.Error())
			return
		}
		s.logger.Error().Err(err).Str("file", filename).Msg("open report file")
		writeError(w, http.StatusInternalServerError, "failed to open file")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(filename)))
	if _, err := io.Copy(w, f); err != nil {
		s.logger.Error().Err(err).Str("file", filename).Msg("stream report file")
	}
}

// formCSV extracts the uploaded CSV from a multipart form. On failure it
// writes a 400 response and returns ok=false.
func (s *Server) formCSV(w http.ResponseWriter, r *http.Request) (multipart.File, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid or oversized multipart form")
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return nil, "", false
	}

	name := header.Filename
	if name == "" || !strings.EqualFold(filepath.Ext(name), ".csv") {
		file.Close()
		writeError(w, http.StatusBadRequest, "only CSV files are supported")
		return nil, "", false
	}

	return file, name, true
}
