package scraper

import (
	"context"
	"fmt"
	"os"

	"github.com/yfmeii/media-scraper-web/config"
	mediaio "github.com/yfmeii/media-scraper-web/pkg/io"
	"github.com/yfmeii/media-scraper-web/pkg/tasks"
	"github.com/yfmeii/media-scraper-web/pkg/tmdb"
)

var testLibrary = config.Library{
	Inbox:  "/media/inbox",
	TV:     "/media/tv",
	Movies: "/media/movies",
}

// fakeCatalog is a scripted CatalogClient.
type fakeCatalog struct {
	shows   map[int]*tmdb.ShowDetails
	movies  map[int]*tmdb.MovieDetails
	seasons map[[2]int]*tmdb.SeasonDetails

	searchResults []tmdb.SearchResult
	searchErr     error
	searchCalls   int

	downloadCalls int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		shows:   map[int]*tmdb.ShowDetails{},
		movies:  map[int]*tmdb.MovieDetails{},
		seasons: map[[2]int]*tmdb.SeasonDetails{},
	}
}

func (f *fakeCatalog) SearchTV(context.Context, string, int, string) ([]tmdb.SearchResult, error) {
	f.searchCalls++
	return f.searchResults, f.searchErr
}

func (f *fakeCatalog) SearchMovie(context.Context, string, int, string) ([]tmdb.SearchResult, error) {
	f.searchCalls++
	return f.searchResults, f.searchErr
}

func (f *fakeCatalog) SearchMulti(context.Context, string, int, string) ([]tmdb.SearchResult, error) {
	f.searchCalls++
	return f.searchResults, f.searchErr
}

func (f *fakeCatalog) GetShowDetails(_ context.Context, id int, _ string) (*tmdb.ShowDetails, error) {
	return f.shows[id], nil
}

func (f *fakeCatalog) GetMovieDetails(_ context.Context, id int, _ string) (*tmdb.MovieDetails, error) {
	return f.movies[id], nil
}

func (f *fakeCatalog) GetSeasonDetails(_ context.Context, id, season int, _ string) (*tmdb.SeasonDetails, error) {
	return f.seasons[[2]int{id, season}], nil
}

func (f *fakeCatalog) PosterURL(path, size string) string {
	return fmt.Sprintf("https://img.test/%s%s", size, path)
}

func (f *fakeCatalog) DownloadImage(context.Context, string) ([]byte, error) {
	f.downloadCalls++
	return []byte("img"), nil
}

func newTestFS() *mediaio.MemFileSystem {
	return mediaio.NewMemFileSystem(testLibrary.Inbox, testLibrary.TV, testLibrary.Movies)
}

func newTestScraper(fs mediaio.FileIO, catalog CatalogClient) *Scraper {
	registry := tasks.NewRegistry(tasks.NewMemoryStore())
	return New(fs, catalog, testLibrary, registry, tasks.NewBus(), WithBatchDelay(0))
}

// countingFS records how many filesystem calls pass through.
type countingFS struct {
	mediaio.FileIO
	calls int
}

func (c *countingFS) Stat(name string) (os.FileInfo, error) {
	c.calls++
	return c.FileIO.Stat(name)
}

func (c *countingFS) ReadDir(name string) ([]os.DirEntry, error) {
	c.calls++
	return c.FileIO.ReadDir(name)
}

func (c *countingFS) ReadFile(name string) ([]byte, error) {
	c.calls++
	return c.FileIO.ReadFile(name)
}

func (c *countingFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	c.calls++
	return c.FileIO.WriteFile(name, data, perm)
}

func (c *countingFS) Rename(source, target string) error {
	c.calls++
	return c.FileIO.Rename(source, target)
}

func (c *countingFS) MkdirAll(path string, perm os.FileMode) error {
	c.calls++
	return c.FileIO.MkdirAll(path, perm)
}

func (c *countingFS) Remove(name string) error {
	c.calls++
	return c.FileIO.Remove(name)
}

func (c *countingFS) FileExists(name string) bool {
	c.calls++
	return c.FileIO.FileExists(name)
}

func testShowDetails(id int, name string) *tmdb.ShowDetails {
	return &tmdb.ShowDetails{
		ID:           id,
		Name:         name,
		OriginalName: name,
		Overview:     "Show overview",
		PosterPath:   "/show.jpg",
		FirstAirDate: "2020-01-01",
		VoteAverage:  8,
	}
}

func testSeasonDetails(season int) *tmdb.SeasonDetails {
	return &tmdb.SeasonDetails{
		ID:           456 + season,
		Name:         fmt.Sprintf("Season %d", season),
		SeasonNumber: season,
		Overview:     "Season overview",
		PosterPath:   "/season.jpg",
		AirDate:      "2020-01-01",
		Episodes: []tmdb.EpisodeDetails{
			{ID: 1, Name: "Ep 1", EpisodeNumber: 1, SeasonNumber: season, Overview: "Episode overview", AirDate: "2020-01-01", VoteAverage: 8},
			{ID: 2, Name: "Ep 2", EpisodeNumber: 2, SeasonNumber: season, Overview: "Second overview", AirDate: "2020-01-08", VoteAverage: 7},
		},
	}
}

func testMovieDetails(id int, title string) *tmdb.MovieDetails {
	return &tmdb.MovieDetails{
		ID:            id,
		Title:         title,
		OriginalTitle: title,
		Overview:      "Movie overview",
		PosterPath:    "/movie.jpg",
		ReleaseDate:   "2019-01-01",
		VoteAverage:   7,
		Runtime:       120,
	}
}
