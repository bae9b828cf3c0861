// Package scraper is the reconciliation pipeline: given a confirmed catalog
// match it moves media into the curated library layout, writes sidecar
// metadata, downloads artwork, and cleans up emptied source directories. The
// same planning code backs both preview and execution so a preview is an
// exact prediction of what processing would do.
package scraper

import (
	"time"

	"github.com/yfmeii/media-scraper-web/config"
	"github.com/yfmeii/media-scraper-web/pkg/cache"
	"github.com/yfmeii/media-scraper-web/pkg/io"
	"github.com/yfmeii/media-scraper-web/pkg/scanner"
	"github.com/yfmeii/media-scraper-web/pkg/tasks"
	"github.com/yfmeii/media-scraper-web/pkg/tmdb"
)

// DefaultBatchDelay spaces batch items out to avoid bursting the catalog API.
const DefaultBatchDelay = 300 * time.Millisecond

// Result is the outcome of one pipeline operation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func failure(err error) Result {
	return Result{Success: false, Message: err.Error()}
}

// Scraper wires the pipeline's collaborators together.
type Scraper struct {
	fs         io.FileIO
	catalog    CatalogClient
	library    config.Library
	registry   *tasks.Registry
	bus        *tasks.Bus
	language   string
	batchDelay time.Duration

	scanner     *scanner.Scanner
	searchCache *cache.Cache[string, []tmdb.SearchResult]
}

type Option func(*Scraper)

func WithLanguage(language string) Option {
	return func(s *Scraper) {
		s.language = language
	}
}

func WithBatchDelay(d time.Duration) Option {
	return func(s *Scraper) {
		s.batchDelay = d
	}
}

func New(fs io.FileIO, catalog CatalogClient, library config.Library, registry *tasks.Registry, bus *tasks.Bus, opts ...Option) *Scraper {
	s := &Scraper{
		fs:          fs,
		catalog:     catalog,
		library:     library,
		registry:    registry,
		bus:         bus,
		language:    tmdb.DefaultLanguage,
		batchDelay:  DefaultBatchDelay,
		scanner:     scanner.New(fs, library),
		searchCache: cache.New[string, []tmdb.SearchResult](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Language returns the catalog language the pipeline fetches metadata in.
func (s *Scraper) Language() string {
	return s.language
}
