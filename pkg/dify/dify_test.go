package dify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yfmeii/media-scraper-web/pkg/tmdb"
)

type fakeResolver struct {
	result *tmdb.SearchResult
	imdbID string
}

func (f *fakeResolver) FindByIMDBID(_ context.Context, imdbID, _, _ string) (*tmdb.SearchResult, error) {
	f.imdbID = imdbID
	return f.result, nil
}

func streamingBody(fragments ...string) string {
	var lines []string
	lines = append(lines, `data: {"event":"workflow_started"}`)
	for _, f := range fragments {
		lines = append(lines, `data: {"event":"message","answer":"`+f+`"}`)
	}
	lines = append(lines, "", `data: {"event":"message_end"}`, "not a data line")
	return strings.Join(lines, "\n")
}

func TestExtractStreamingAnswer(t *testing.T) {
	answer := extractStreamingAnswer(streamingBody("hello ", "world"))
	assert.Equal(t, "hello world", answer)

	assert.Empty(t, extractStreamingAnswer("no sse here"))
	assert.Empty(t, extractStreamingAnswer("data: not json"))
}

func TestParseAnswerToleratesProse(t *testing.T) {
	raw, ok := parseAnswer(`Here you go: {"title":"Some Show"} hope that helps`)
	require.True(t, ok)
	assert.Equal(t, "Some Show", raw["title"])

	_, ok = parseAnswer("no json at all")
	assert.False(t, ok)
}

func TestRecognizePath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(streamingBody(
			`{\"title\":\"Some Show\",\"media_type\":\"tv\",`,
			`\"year\":2020,\"season\":1,\"episode\":3,\"confidence\":0.9}`,
		)))
	}))
	defer server.Close()

	c := New(server.URL, "test-key", nil)
	result, err := c.RecognizePath(context.Background(), "/inbox/some.show.s01e03.mkv")
	require.NoError(t, err)

	assert.Equal(t, "Some Show", result.Title)
	assert.Equal(t, tmdb.MediaTypeTV, result.MediaType)
	assert.Equal(t, 2020, result.Year)
	assert.Equal(t, 1, result.Season)
	assert.Equal(t, 3, result.Episode)
	assert.InDelta(t, 0.9, result.Confidence, 1e-9)
	assert.Equal(t, "/inbox/some.show.s01e03.mkv", result.Path)
}

func TestRecognizePathResolvesIMDBID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(streamingBody(`{\"title\":\"Some Movie\",\"media_type\":\"movie\",\"imdb_id\":\"tt1375666\",\"tmdb_id\":1}`)))
	}))
	defer server.Close()

	resolver := &fakeResolver{result: &tmdb.SearchResult{ID: 27205, Title: "Inception"}}
	c := New(server.URL, "test-key", resolver)

	result, err := c.RecognizePath(context.Background(), "/inbox/inception.mkv")
	require.NoError(t, err)

	assert.Equal(t, "tt1375666", resolver.imdbID)
	assert.Equal(t, 27205, result.TMDBID)
	assert.Equal(t, "Inception", result.TMDBName)
	assert.Equal(t, tmdb.MediaTypeMovie, result.MediaType)
}

func TestRecognizePathAliasKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(streamingBody(`{\"name\":\"Aliased\",\"mediaType\":\"movie\",\"tmdbId\":42}`)))
	}))
	defer server.Close()

	c := New(server.URL, "test-key", nil)
	result, err := c.RecognizePath(context.Background(), "/inbox/aliased.mkv")
	require.NoError(t, err)

	assert.Equal(t, "Aliased", result.Title)
	assert.Equal(t, 42, result.TMDBID)
}

func TestRecognizePathErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := New(server.URL, "test-key", nil)
	_, err := c.RecognizePath(context.Background(), "/inbox/x.mkv")
	assert.Error(t, err)

	unconfigured := New("", "", nil)
	assert.False(t, unconfigured.Enabled())
	_, err = unconfigured.RecognizePath(context.Background(), "/inbox/x.mkv")
	assert.Error(t, err)
}
