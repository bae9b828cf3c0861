package scraper

import (
	"context"

	"github.com/yfmeii/media-scraper-web/pkg/tmdb"
)

// CatalogClient is the slice of the catalog service the pipeline consumes.
// Satisfied by *tmdb.Client; tests substitute a scripted fake.
type CatalogClient interface {
	SearchTV(ctx context.Context, query string, year int, language string) ([]tmdb.SearchResult, error)
	SearchMovie(ctx context.Context, query string, year int, language string) ([]tmdb.SearchResult, error)
	SearchMulti(ctx context.Context, query string, year int, language string) ([]tmdb.SearchResult, error)
	GetShowDetails(ctx context.Context, id int, language string) (*tmdb.ShowDetails, error)
	GetMovieDetails(ctx context.Context, id int, language string) (*tmdb.MovieDetails, error)
	GetSeasonDetails(ctx context.Context, id, season int, language string) (*tmdb.SeasonDetails, error)
	PosterURL(path, size string) string
	DownloadImage(ctx context.Context, imageURL string) ([]byte, error)
}

var _ CatalogClient = (*tmdb.Client)(nil)
