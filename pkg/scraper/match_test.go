package scraper

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yfmeii/media-scraper-web/pkg/tmdb"
)

func TestAutoMatchPicksClearWinner(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchResults = []tmdb.SearchResult{
		{ID: 2, Title: "Inception: The Cobol Job", ReleaseDate: "2010-12-07", VoteAverage: 6, MediaType: "movie"},
		{ID: 1, Title: "Inception", ReleaseDate: "2010-07-15", VoteAverage: 8.3, MediaType: "movie", PosterPath: "/p.jpg"},
	}

	s := newTestScraper(newTestFS(), catalog)
	result, err := s.AutoMatch(context.Background(), "/media/inbox/Inception.2010.1080p.mkv", tmdb.MediaTypeMovie, "", 0)
	require.NoError(t, err)

	assert.Equal(t, "Inception", result.Title)
	assert.Equal(t, 2010, result.Year)
	assert.True(t, result.Matched)
	assert.False(t, result.Ambiguous)
	require.NotNil(t, result.Best)
	assert.Equal(t, 1, result.Best.ID)
	assert.Equal(t, "https://img.test/w185/p.jpg", result.Best.PosterPath)
	assert.Greater(t, result.Best.Score, result.Candidates[1].Score)
}

func TestAutoMatchAmbiguousOnCloseScores(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchResults = []tmdb.SearchResult{
		{ID: 1, Title: "The Thing", ReleaseDate: "1982-06-25", VoteAverage: 8},
		{ID: 2, Title: "The Thing", ReleaseDate: "1982-10-01", VoteAverage: 8},
	}

	s := newTestScraper(newTestFS(), catalog)
	result, err := s.AutoMatch(context.Background(), "/media/inbox/The.Thing.1982.mkv", tmdb.MediaTypeMovie, "", 0)
	require.NoError(t, err)

	assert.False(t, result.Matched)
	assert.True(t, result.Ambiguous)
	require.NotNil(t, result.Best)
	assert.Len(t, result.Candidates, 2)
}

func TestAutoMatchAmbiguousOnWeakScore(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchResults = []tmdb.SearchResult{
		{ID: 7, Title: "Completely Different", VoteAverage: 5},
	}

	s := newTestScraper(newTestFS(), catalog)
	result, err := s.AutoMatch(context.Background(), "/media/inbox/Obscure.Film.2003.mkv", tmdb.MediaTypeMovie, "", 0)
	require.NoError(t, err)

	assert.False(t, result.Matched)
	assert.True(t, result.Ambiguous)
}

func TestAutoMatchNoResults(t *testing.T) {
	s := newTestScraper(newTestFS(), newFakeCatalog())
	result, err := s.AutoMatch(context.Background(), "/media/inbox/Nothing.2020.mkv", tmdb.MediaTypeMovie, "", 0)
	require.NoError(t, err)

	assert.False(t, result.Matched)
	assert.Nil(t, result.Best)
	assert.NotNil(t, result.Candidates)
	assert.Empty(t, result.Candidates)
}

func TestAutoMatchWithoutTitleFails(t *testing.T) {
	s := newTestScraper(newTestFS(), newFakeCatalog())
	_, err := s.AutoMatch(context.Background(), "/media/inbox/1080p.mkv", tmdb.MediaTypeMovie, "", 0)
	assert.Error(t, err)
}

func TestAutoMatchExplicitTitleOverridesParsing(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchResults = []tmdb.SearchResult{
		{ID: 3, Title: "Chosen Title", ReleaseDate: "2015-01-01", VoteAverage: 7},
	}

	s := newTestScraper(newTestFS(), catalog)
	result, err := s.AutoMatch(context.Background(), "/media/inbox/garbled.name.mkv", tmdb.MediaTypeMovie, "Chosen Title", 2015)
	require.NoError(t, err)

	assert.Equal(t, "Chosen Title", result.Title)
	assert.Equal(t, 2015, result.Year)
	assert.True(t, result.Matched)
}

func TestAutoMatchCapsCandidates(t *testing.T) {
	catalog := newFakeCatalog()
	for i := 0; i < 8; i++ {
		catalog.searchResults = append(catalog.searchResults, tmdb.SearchResult{
			ID: i + 1, Title: fmt.Sprintf("Sequel %d", i+1), VoteAverage: 5,
		})
	}

	s := newTestScraper(newTestFS(), catalog)
	result, err := s.AutoMatch(context.Background(), "/media/inbox/Sequel.2001.mkv", tmdb.MediaTypeMovie, "", 0)
	require.NoError(t, err)

	assert.Len(t, result.Candidates, maxCandidates)
}

func TestSearchMemoizesPerQuery(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.searchResults = []tmdb.SearchResult{{ID: 1, Title: "Cached"}}

	s := newTestScraper(newTestFS(), catalog)
	ctx := context.Background()

	_, err := s.Search(ctx, tmdb.MediaTypeMovie, "cached", 2020)
	require.NoError(t, err)
	_, err = s.Search(ctx, tmdb.MediaTypeMovie, "cached", 2020)
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.searchCalls)

	// A different year is a different query.
	_, err = s.Search(ctx, tmdb.MediaTypeMovie, "cached", 2021)
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.searchCalls)
}
