package scraper

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yfmeii/media-scraper-web/pkg/logger"
	"github.com/yfmeii/media-scraper-web/pkg/nfo"
	"github.com/yfmeii/media-scraper-web/pkg/scanner"
	"github.com/yfmeii/media-scraper-web/pkg/tmdb"
)

// EpisodeAssignment binds one source file to an episode number.
type EpisodeAssignment struct {
	Source  string `json:"source"`
	Episode int    `json:"episode"`
}

// Item is one unit of work for processing, previewing, or batching.
type Item struct {
	Kind       string              `json:"kind"`
	SourcePath string              `json:"sourcePath"`
	ShowName   string              `json:"showName,omitempty"`
	TMDBID     int                 `json:"tmdbId"`
	Season     int                 `json:"season,omitempty"`
	Episodes   []EpisodeAssignment `json:"episodes,omitempty"`
}

// ProcessTV moves a show's episode files into the library layout, writes
// show/season/episode sidecars, downloads artwork, and cleans up the emptied
// source directories.
func (s *Scraper) ProcessTV(ctx context.Context, item Item) Result {
	p := &plan{}
	sourceDirs, err := s.planTV(ctx, p, item)
	if err != nil {
		return failure(err)
	}
	if err := p.execute(ctx); err != nil {
		return failure(err)
	}
	s.cleanupSourceDirs(ctx, sourceDirs)
	return Result{Success: true, Message: fmt.Sprintf("processed %d episode(s) of %s", len(item.Episodes), item.ShowName)}
}

// ProcessMovie moves a movie into a `Title (Year)` directory with its sidecar
// and poster, then cleans up the source directory.
func (s *Scraper) ProcessMovie(ctx context.Context, item Item) Result {
	p := &plan{}
	sourceDirs, err := s.planMovie(ctx, p, item)
	if err != nil {
		return failure(err)
	}
	if err := p.execute(ctx); err != nil {
		return failure(err)
	}
	s.cleanupSourceDirs(ctx, sourceDirs)
	return Result{Success: true, Message: fmt.Sprintf("processed %s", filepath.Base(item.SourcePath))}
}

// PreviewPlan computes the exact actions processing would take for the given
// items without touching the filesystem.
func (s *Scraper) PreviewPlan(ctx context.Context, items []Item) (*Plan, error) {
	p := &plan{}
	for _, item := range items {
		var err error
		if item.Kind == tmdb.MediaTypeMovie {
			_, err = s.planMovie(ctx, p, item)
		} else {
			_, err = s.planTV(ctx, p, item)
		}
		if err != nil {
			return nil, fmt.Errorf("couldn't plan %s: %w", item.SourcePath, err)
		}
	}
	return p.Plan(), nil
}

func (s *Scraper) cleanupSourceDirs(ctx context.Context, dirs map[string]struct{}) {
	log := logger.FromCtx(ctx)
	sorted := make([]string, 0, len(dirs))
	for dir := range dirs {
		sorted = append(sorted, dir)
	}
	sort.Strings(sorted)

	for _, dir := range sorted {
		result := s.CleanupSourceDir(ctx, dir)
		log.Debugw("source cleanup", "dir", dir, "deleted", result.Deleted, "reason", result.Reason)
	}
}

func (s *Scraper) planTV(ctx context.Context, p *plan, item Item) (map[string]struct{}, error) {
	if item.TMDBID == 0 || len(item.Episodes) == 0 {
		return nil, fmt.Errorf("tv item needs a catalog id and at least one episode")
	}

	details, err := s.catalog.GetShowDetails(ctx, item.TMDBID, s.language)
	if err != nil {
		return nil, fmt.Errorf("couldn't fetch show details: %w", err)
	}
	if details == nil {
		return nil, fmt.Errorf("show %d not found in catalog", item.TMDBID)
	}

	season := item.Season
	if season == 0 {
		season = 1
	}
	seasonDetails, err := s.catalog.GetSeasonDetails(ctx, item.TMDBID, season, s.language)
	if err != nil {
		return nil, fmt.Errorf("couldn't fetch season details: %w", err)
	}
	if seasonDetails == nil {
		seasonDetails = &tmdb.SeasonDetails{SeasonNumber: season}
	}

	showName := item.ShowName
	if showName == "" {
		showName = details.Name
	}

	showDir := filepath.Join(s.library.TV, showName)
	seasonDir := filepath.Join(showDir, scanner.SeasonDirName(season))
	s.planDir(p, showDir)
	s.planDir(p, seasonDir)

	s.planNFO(p, filepath.Join(showDir, scanner.ShowNFOName), func() []byte {
		return nfo.GenerateShow(*details)
	})
	s.planPoster(p, filepath.Join(showDir, scanner.PosterName), details.PosterPath)

	s.planNFO(p, filepath.Join(seasonDir, scanner.SeasonNFOName), func() []byte {
		return nfo.GenerateSeason(details.ID, *seasonDetails)
	})
	seasonPoster := seasonDetails.PosterPath
	if seasonPoster == "" {
		seasonPoster = details.PosterPath
	}
	s.planPoster(p, filepath.Join(seasonDir, scanner.PosterName), seasonPoster)

	sourceDirs := map[string]struct{}{}
	for _, ep := range item.Episodes {
		ext := filepath.Ext(ep.Source)
		destName := fmt.Sprintf("%s - S%02dE%02d%s", showName, season, ep.Episode, ext)
		dest := filepath.Join(seasonDir, destName)

		s.planMove(p, ep.Source, dest)
		s.planSubtitleMoves(p, ep.Source, strings.TrimSuffix(dest, ext))

		episode := ep.Episode
		s.planNFO(p, scanner.NFOPathFor(dest), func() []byte {
			detail := seasonDetails.Episode(episode)
			if detail == nil {
				detail = &tmdb.EpisodeDetails{SeasonNumber: season, EpisodeNumber: episode}
			}
			return nfo.GenerateEpisode(*detail)
		})

		sourceDirs[filepath.Dir(ep.Source)] = struct{}{}
	}

	return sourceDirs, nil
}

func (s *Scraper) planMovie(ctx context.Context, p *plan, item Item) (map[string]struct{}, error) {
	if item.TMDBID == 0 || item.SourcePath == "" {
		return nil, fmt.Errorf("movie item needs a catalog id and a source path")
	}

	details, err := s.catalog.GetMovieDetails(ctx, item.TMDBID, s.language)
	if err != nil {
		return nil, fmt.Errorf("couldn't fetch movie details: %w", err)
	}
	if details == nil {
		return nil, fmt.Errorf("movie %d not found in catalog", item.TMDBID)
	}

	dirName := details.Title
	if year := details.Year(); year > 0 {
		dirName = fmt.Sprintf("%s (%d)", details.Title, year)
	}
	movieDir := filepath.Join(s.library.Movies, dirName)
	s.planDir(p, movieDir)

	ext := filepath.Ext(item.SourcePath)
	dest := filepath.Join(movieDir, dirName+ext)
	s.planMove(p, item.SourcePath, dest)
	s.planSubtitleMoves(p, item.SourcePath, filepath.Join(movieDir, dirName))

	s.planNFO(p, filepath.Join(movieDir, dirName+scanner.NFOExt), func() []byte {
		return nfo.GenerateMovie(*details)
	})
	s.planPoster(p, filepath.Join(movieDir, scanner.PosterName), details.PosterPath)

	return map[string]struct{}{filepath.Dir(item.SourcePath): {}}, nil
}

func (s *Scraper) planDir(p *plan, dir string) {
	if s.fs.FileExists(dir) {
		return
	}
	p.add(Action{Type: ActionCreateDir, Destination: dir}, func(context.Context) error {
		return s.fs.MkdirAll(dir, 0o755)
	})
}

func (s *Scraper) planMove(p *plan, source, dest string) {
	p.add(Action{
		Type:          ActionMove,
		Source:        source,
		Destination:   dest,
		WillOverwrite: s.fs.FileExists(dest),
	}, func(context.Context) error {
		if err := s.fs.Rename(source, dest); err != nil {
			return fmt.Errorf("couldn't move %s: %w", source, err)
		}
		return nil
	})
}

// planSubtitleMoves adds moves for subtitle files sharing the media file's
// base name, renamed to follow the destination base.
func (s *Scraper) planSubtitleMoves(p *plan, mediaSource, destBase string) {
	sourceDir := filepath.Dir(mediaSource)
	sourceBase := strings.TrimSuffix(filepath.Base(mediaSource), filepath.Ext(mediaSource))

	for _, subExt := range []string{".srt", ".ass", ".ssa", ".sub"} {
		subSource := filepath.Join(sourceDir, sourceBase+subExt)
		if !s.fs.FileExists(subSource) {
			continue
		}
		s.planMove(p, subSource, destBase+subExt)
	}
}

func (s *Scraper) planNFO(p *plan, dest string, generate func() []byte) {
	p.add(Action{
		Type:          ActionCreateNFO,
		Destination:   dest,
		WillOverwrite: s.fs.FileExists(dest),
	}, func(context.Context) error {
		if err := s.fs.WriteFile(dest, generate(), 0o644); err != nil {
			return fmt.Errorf("couldn't write %s: %w", dest, err)
		}
		return nil
	})
}

// planPoster schedules an artwork download unless the destination already has
// one; existing posters are never replaced by processing.
func (s *Scraper) planPoster(p *plan, dest, posterPath string) {
	if posterPath == "" || s.fs.FileExists(dest) {
		return
	}
	url := s.catalog.PosterURL(posterPath, tmdb.PosterSizeDetail)
	p.add(Action{
		Type:        ActionDownloadPoster,
		Source:      url,
		Destination: dest,
	}, func(ctx context.Context) error {
		data, err := s.catalog.DownloadImage(ctx, url)
		if err != nil {
			return fmt.Errorf("couldn't download poster: %w", err)
		}
		return s.fs.WriteFile(dest, data, 0o644)
	})
}
