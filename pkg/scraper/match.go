package scraper

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/yfmeii/media-scraper-web/pkg/scanner"
	"github.com/yfmeii/media-scraper-web/pkg/tmdb"
)

const maxCandidates = 5

// Candidate is a catalog result shaped for clients.
type Candidate struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"originalName,omitempty"`
	Date         string  `json:"date,omitempty"`
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"posterPath,omitempty"`
	MediaType    string  `json:"mediaType,omitempty"`
	Score        float64 `json:"score,omitempty"`
}

// MatchResult is the outcome of auto-matching a file against the catalog.
// Ambiguous results carry the candidate list so the caller can disambiguate;
// they are never silently auto-selected.
type MatchResult struct {
	Matched    bool        `json:"matched"`
	Ambiguous  bool        `json:"ambiguous"`
	Title      string      `json:"title"`
	Year       int         `json:"year,omitempty"`
	Best       *Candidate  `json:"result,omitempty"`
	Candidates []Candidate `json:"candidates"`
}

// Search queries the catalog, memoizing results per query. kind may be
// "tv", "movie", or empty for a mixed search.
func (s *Scraper) Search(ctx context.Context, kind, query string, year int) ([]tmdb.SearchResult, error) {
	key := fmt.Sprintf("%s|%s|%d|%s", kind, query, year, s.language)
	if cached, ok := s.searchCache.Get(key); ok {
		return cached, nil
	}

	var (
		results []tmdb.SearchResult
		err     error
	)
	switch kind {
	case tmdb.MediaTypeTV:
		results, err = s.catalog.SearchTV(ctx, query, year, s.language)
	case tmdb.MediaTypeMovie:
		results, err = s.catalog.SearchMovie(ctx, query, year, s.language)
	default:
		results, err = s.catalog.SearchMulti(ctx, query, year, s.language)
	}
	if err != nil {
		return nil, err
	}

	s.searchCache.Set(key, results)
	return results, nil
}

// AutoMatch scores catalog candidates against evidence parsed from a path,
// optionally overridden by an explicit title and year. A match is ambiguous
// when the top score is under 0.5 or the top two candidates are within 0.1
// of each other.
func (s *Scraper) AutoMatch(ctx context.Context, path, kind, title string, year int) (MatchResult, error) {
	parsed := scanner.ParseFilename(filepath.Base(path))
	if title == "" {
		title = parsed.Title
	}
	if year == 0 {
		year = parsed.Year
	}
	if title == "" {
		return MatchResult{}, fmt.Errorf("couldn't determine a title for %s", path)
	}

	result := MatchResult{Title: title, Year: year, Candidates: []Candidate{}}

	results, err := s.Search(ctx, kind, title, year)
	if err != nil {
		return MatchResult{}, err
	}
	if len(results) == 0 {
		return result, nil
	}

	type scored struct {
		result tmdb.SearchResult
		score  float64
	}
	ranked := make([]scored, len(results))
	for i, r := range results {
		ranked[i] = scored{result: r, score: tmdb.Score(title, year, r)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	ambiguous := ranked[0].score < 0.5 ||
		(len(ranked) > 1 && ranked[0].score-ranked[1].score < 0.1)

	best := s.candidate(ranked[0].result)
	best.Score = ranked[0].score

	result.Matched = !ambiguous
	result.Ambiguous = ambiguous
	result.Best = &best
	for _, r := range ranked[:min(maxCandidates, len(ranked))] {
		c := s.candidate(r.result)
		c.Score = r.score
		result.Candidates = append(result.Candidates, c)
	}
	return result, nil
}

func (s *Scraper) candidate(r tmdb.SearchResult) Candidate {
	poster := ""
	if r.PosterPath != "" {
		poster = s.catalog.PosterURL(r.PosterPath, tmdb.PosterSizeThumb)
	}
	return Candidate{
		ID:           r.ID,
		Name:         r.DisplayName(),
		OriginalName: r.OriginalDisplayName(),
		Date:         r.Date(),
		Overview:     r.Overview,
		PosterPath:   poster,
		MediaType:    r.MediaType,
	}
}
