package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const foundResponse = `{
	"kind": "books#volumes",
	"totalItems": 1,
	"items": [
		{
			"id": "abc",
			"volumeInfo": {
				"title": "Clean Code",
				"authors": ["Robert C. Martin"],
				"publishedDate": "2008-08-01",
				"averageRating": 4.5,
				"ratingsCount": 12,
				"imageLinks": {"thumbnail": "http://example.com/cover.jpg"}
			}
		}
	]
}`

func TestLookup_Found(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		assert.Equal(t, "isbn:9780132350884", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(foundResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	meta, err := client.Lookup(context.Background(), "978-0-13-235088-4")
	require.NoError(t, err)

	assert.Equal(t, "9780132350884", meta.ISBN)
	assert.Equal(t, "Clean Code", meta.Title)
	assert.Equal(t, []string{"Robert C. Martin"}, meta.Authors)
	require.NotNil(t, meta.Year)
	assert.Equal(t, 2008, *meta.Year)
	require.NotNil(t, meta.CoverURL)
	assert.Equal(t, "http://example.com/cover.jpg", *meta.CoverURL)
	require.NotNil(t, meta.AverageRating)
	assert.Equal(t, 4.5, *meta.AverageRating)
	require.NotNil(t, meta.RatingsCount)
	assert.Equal(t, 12, *meta.RatingsCount)
}

func TestLookup_MissingFieldsFallBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalItems": 1, "items": [{"volumeInfo": {}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	meta, err := client.Lookup(context.Background(), "9780132350884")
	require.NoError(t, err)

	assert.Equal(t, "Unknown", meta.Title)
	assert.Equal(t, []string{"Unknown"}, meta.Authors)
	assert.Nil(t, meta.Year)
	assert.Nil(t, meta.CoverURL)
	assert.Nil(t, meta.AverageRating)
	assert.Nil(t, meta.RatingsCount)
}

func TestLookup_NoMatchIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kind": "books#volumes", "totalItems": 0}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	meta, err := client.Lookup(context.Background(), "9780132350884")

	assert.Nil(t, meta)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestLookup_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.Lookup(context.Background(), "9780132350884")

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLookup_RateLimitedIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.Lookup(context.Background(), "9780132350884")

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLookup_TimeoutIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(foundResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL, 50*time.Millisecond)
	_, err := client.Lookup(context.Background(), "9780132350884")

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLookup_ConnectionRefusedIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // closed on purpose

	client := NewClient(server.URL, time.Second)
	_, err := client.Lookup(context.Background(), "9780132350884")

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLookup_InvalidISBNRejectedBeforeRequest(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.Lookup(context.Background(), "not-an-isbn")

	assert.ErrorIs(t, err, ErrInvalidISBN)
	assert.Zero(t, requests)
}
