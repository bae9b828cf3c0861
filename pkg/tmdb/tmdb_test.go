package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, New(srv.URL, "test-key")
}

func TestSearchTV(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/tv", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "breaking bad", r.URL.Query().Get("query"))
		assert.Equal(t, "2008", r.URL.Query().Get("first_air_date_year"))
		assert.Equal(t, "zh-CN", r.URL.Query().Get("language"))
		json.NewEncoder(w).Encode(searchResponse{Results: []SearchResult{
			{ID: 1396, Name: "Breaking Bad", FirstAirDate: "2008-01-20", VoteAverage: 8.9},
		}})
	})

	results, err := client.SearchTV(context.Background(), "breaking bad", 2008, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, MediaTypeTV, results[0].MediaType)
	assert.Equal(t, 2008, results[0].Year())
}

func TestSearchMultiFiltersByYear(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{Results: []SearchResult{
			{ID: 1, MediaType: "tv", Name: "Near", FirstAirDate: "2019-05-01"},
			{ID: 2, MediaType: "movie", Title: "Far", ReleaseDate: "2010-05-01"},
			{ID: 3, MediaType: "person", Name: "Nobody"},
			{ID: 4, MediaType: "movie", Title: "Undated"},
		}})
	})

	results, err := client.SearchMulti(context.Background(), "whatever", 2020, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].ID)
	assert.Equal(t, 4, results[1].ID)
}

func TestGetShowDetailsNotFound(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	details, err := client.GetShowDetails(context.Background(), 42, "")
	require.NoError(t, err)
	assert.Nil(t, details)
}

func TestGetSeasonDetails(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tv/123/season/2", r.URL.Path)
		json.NewEncoder(w).Encode(SeasonDetails{
			ID:           77,
			SeasonNumber: 2,
			Episodes: []EpisodeDetails{
				{EpisodeNumber: 1, Name: "One"},
				{EpisodeNumber: 2, Name: "Two"},
			},
		})
	})

	details, err := client.GetSeasonDetails(context.Background(), 123, 2, "")
	require.NoError(t, err)
	require.NotNil(t, details)
	require.NotNil(t, details.Episode(2))
	assert.Equal(t, "Two", details.Episode(2).Name)
	assert.Nil(t, details.Episode(3))
}

func TestImageURLs(t *testing.T) {
	client := New("", "key")
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", client.PosterURL("/abc.jpg", PosterSizeDetail))
	assert.Equal(t, "https://image.tmdb.org/t/p/w1280/bg.jpg", client.BackdropURL("/bg.jpg"))
	assert.Equal(t, "", client.PosterURL("", PosterSizeDetail))
}
