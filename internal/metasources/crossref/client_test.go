package crossref

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/citation-contact-service/internal/domain"
)

const worksPayload = `{
	"status": "ok",
	"message": {
		"DOI": "10.1234/example",
		"author": [
			{
				"given": "Jane",
				"family": "Doe",
				"email": "jane.doe@mit.edu",
				"affiliation": [{"name": "MIT"}, {"name": "Broad Institute"}]
			},
			{
				"given": "John",
				"family": "Roe",
				"affiliation": []
			}
		]
	}
}`

func TestLookupParsesAuthors(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(worksPayload))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	authors, err := client.Lookup(context.Background(), domain.Identifier{
		Kind:  domain.IdentifierDOI,
		Value: "10.1234/example",
	})
	require.NoError(t, err)
	require.Len(t, authors, 2)

	assert.Equal(t, "/works/10.1234/example", gotPath)

	assert.Equal(t, "Jane Doe", authors[0].Name())
	assert.Equal(t, "jane.doe@mit.edu", authors[0].Email)
	assert.Equal(t, "MIT; Broad Institute", authors[0].JoinedAffiliation())

	assert.Equal(t, "John Roe", authors[1].Name())
	assert.Empty(t, authors[1].Email)
	assert.Empty(t, authors[1].JoinedAffiliation())
}

func TestLookupNoAuthorField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ok", "message": {"DOI": "10.1234/noauthors"}}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	authors, err := client.Lookup(context.Background(), domain.Identifier{
		Kind:  domain.IdentifierDOI,
		Value: "10.1234/noauthors",
	})
	require.NoError(t, err)
	assert.Empty(t, authors)
}

func TestLookupPMIDKeyedForm(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	_, err := client.Lookup(context.Background(), domain.Identifier{
		Kind:  domain.IdentifierPMID,
		Value: "12345678",
	})
	require.Error(t, err)
	assert.Equal(t, "/works/PMID:12345678", gotPath)
}

func TestLookupNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "resource not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	_, err := client.Lookup(context.Background(), domain.Identifier{
		Kind:  domain.IdentifierDOI,
		Value: "10.1234/missing",
	})
	require.Error(t, err)

	var apiErr *domain.ExternalAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Crossref", apiErr.Source)
}

func TestCanResolve(t *testing.T) {
	client := New(Config{})
	assert.True(t, client.CanResolve(domain.Identifier{Kind: domain.IdentifierDOI, Value: "10.1/x"}))
	assert.True(t, client.CanResolve(domain.Identifier{Kind: domain.IdentifierPMID, Value: "123"}))
}

func TestPoliteUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"message": {}}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Email: "admin@helixir.io"})
	_, err := client.Lookup(context.Background(), domain.Identifier{
		Kind:  domain.IdentifierDOI,
		Value: "10.1/x",
	})
	require.NoError(t, err)
	assert.Contains(t, gotUA, "mailto:admin@helixir.io")
}
