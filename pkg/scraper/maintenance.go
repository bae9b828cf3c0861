package scraper

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yfmeii/media-scraper-web/config"
	"github.com/yfmeii/media-scraper-web/pkg/nfo"
	"github.com/yfmeii/media-scraper-web/pkg/scanner"
	"github.com/yfmeii/media-scraper-web/pkg/tmdb"
)

// canRegenerateNFO reports whether a sidecar may be rewritten: either it does
// not exist yet, or it carries our generator signature. Foreign metadata is
// never overwritten by maintenance operations.
func (s *Scraper) canRegenerateNFO(path string) bool {
	content, err := s.fs.ReadFile(path)
	if err != nil {
		return true
	}
	return nfo.IsGenerated(content)
}

func (s *Scraper) writeNFOIfOurs(path string, content []byte) (bool, error) {
	if !s.canRegenerateNFO(path) {
		return false, nil
	}
	if err := s.fs.WriteFile(path, content, 0o644); err != nil {
		return false, fmt.Errorf("couldn't write %s: %w", path, err)
	}
	return true, nil
}

// RefreshMetadata regenerates sidecar metadata in place without moving any
// media. For shows, season and episode narrow the refresh; zero values mean
// every season directory, every episode file. Sidecars not authored by this
// system are left alone.
func (s *Scraper) RefreshMetadata(ctx context.Context, kind, path string, tmdbID, season, episode int) Result {
	if kind == tmdb.MediaTypeMovie {
		return s.refreshMovie(ctx, path, tmdbID)
	}
	return s.refreshShow(ctx, path, tmdbID, season, episode)
}

func (s *Scraper) refreshMovie(ctx context.Context, moviePath string, tmdbID int) Result {
	details, err := s.catalog.GetMovieDetails(ctx, tmdbID, s.language)
	if err != nil {
		return failure(fmt.Errorf("couldn't fetch movie details: %w", err))
	}
	if details == nil {
		return failure(fmt.Errorf("movie %d not found in catalog", tmdbID))
	}

	movieFile := s.findMovieFile(moviePath)
	if movieFile == "" {
		return failure(fmt.Errorf("no video file found in %s", moviePath))
	}

	written, err := s.writeNFOIfOurs(scanner.NFOPathFor(movieFile), nfo.GenerateMovie(*details))
	if err != nil {
		return failure(err)
	}
	if !written {
		return Result{Success: false, Message: "existing metadata was not generated by this system"}
	}
	return Result{Success: true, Message: fmt.Sprintf("refreshed metadata for %s", details.Title)}
}

func (s *Scraper) refreshShow(ctx context.Context, showPath string, tmdbID, onlySeason, onlyEpisode int) Result {
	details, err := s.catalog.GetShowDetails(ctx, tmdbID, s.language)
	if err != nil {
		return failure(fmt.Errorf("couldn't fetch show details: %w", err))
	}
	if details == nil {
		return failure(fmt.Errorf("show %d not found in catalog", tmdbID))
	}

	if _, err := s.writeNFOIfOurs(filepath.Join(showPath, scanner.ShowNFOName), nfo.GenerateShow(*details)); err != nil {
		return failure(err)
	}

	seasons, err := s.seasonsToVisit(showPath, onlySeason)
	if err != nil {
		return failure(err)
	}

	refreshed := 0
	for _, season := range seasons {
		seasonDir := filepath.Join(showPath, scanner.SeasonDirName(season))
		if !s.fs.FileExists(seasonDir) {
			if err := s.fs.MkdirAll(seasonDir, 0o755); err != nil {
				return failure(fmt.Errorf("couldn't create %s: %w", seasonDir, err))
			}
		}

		seasonDetails, err := s.catalog.GetSeasonDetails(ctx, tmdbID, season, s.language)
		if err != nil {
			return failure(fmt.Errorf("couldn't fetch season %d details: %w", season, err))
		}
		if seasonDetails == nil {
			seasonDetails = &tmdb.SeasonDetails{SeasonNumber: season}
		}

		if _, err := s.writeNFOIfOurs(filepath.Join(seasonDir, scanner.SeasonNFOName), nfo.GenerateSeason(details.ID, *seasonDetails)); err != nil {
			return failure(err)
		}

		n, err := s.refreshSeasonEpisodes(seasonDir, season, onlyEpisode, seasonDetails)
		if err != nil {
			return failure(err)
		}
		refreshed += n
	}

	return Result{Success: true, Message: fmt.Sprintf("refreshed metadata for %s (%d episode sidecar(s))", details.Name, refreshed)}
}

// seasonsToVisit resolves which season numbers a show refresh covers.
func (s *Scraper) seasonsToVisit(showPath string, onlySeason int) ([]int, error) {
	if onlySeason > 0 {
		return []int{onlySeason}, nil
	}

	entries, err := s.fs.ReadDir(showPath)
	if err != nil {
		return nil, fmt.Errorf("couldn't read %s: %w", showPath, err)
	}

	var seasons []int
	for _, entry := range entries {
		if season, ok := scanner.SeasonDirNumber(entry.Name()); ok && entry.IsDir() {
			seasons = append(seasons, season)
		}
	}
	return seasons, nil
}

func (s *Scraper) refreshSeasonEpisodes(seasonDir string, season, onlyEpisode int, seasonDetails *tmdb.SeasonDetails) (int, error) {
	entries, err := s.fs.ReadDir(seasonDir)
	if err != nil {
		return 0, fmt.Errorf("couldn't read %s: %w", seasonDir, err)
	}

	refreshed := 0
	for _, entry := range entries {
		if entry.IsDir() || !scanner.IsVideoFile(entry.Name()) {
			continue
		}

		parsed := scanner.ParseRelativePath(entry.Name())
		if parsed.Episode == 0 {
			continue
		}
		if onlyEpisode > 0 && parsed.Episode != onlyEpisode {
			continue
		}

		detail := seasonDetails.Episode(parsed.Episode)
		if detail == nil {
			detail = &tmdb.EpisodeDetails{SeasonNumber: season, EpisodeNumber: parsed.Episode}
		}

		nfoPath := scanner.NFOPathFor(filepath.Join(seasonDir, entry.Name()))
		written, err := s.writeNFOIfOurs(nfoPath, nfo.GenerateEpisode(*detail))
		if err != nil {
			return refreshed, err
		}
		if written {
			refreshed++
		}
	}
	return refreshed, nil
}

// SupplementShow writes episode sidecars for video files that appeared in an
// already-scraped show after processing. The catalog id comes from the show
// sidecar; episodes that already have a sidecar are untouched.
func (s *Scraper) SupplementShow(ctx context.Context, showPath string) Result {
	content, err := s.fs.ReadFile(filepath.Join(showPath, scanner.ShowNFOName))
	if err != nil {
		return failure(fmt.Errorf("show has no metadata sidecar yet, process it first"))
	}
	tmdbID := nfo.ExtractTMDBID(content)
	if tmdbID == 0 {
		return failure(fmt.Errorf("show sidecar carries no catalog id"))
	}

	pending := s.scanner.DetectSupplementFiles(ctx, showPath)
	if len(pending) == 0 {
		return Result{Success: true, Message: "no pending episodes"}
	}

	seasonCache := map[int]*tmdb.SeasonDetails{}
	for _, file := range pending {
		season := file.Parsed.Season
		seasonDetails, ok := seasonCache[season]
		if !ok {
			seasonDetails, err = s.catalog.GetSeasonDetails(ctx, tmdbID, season, s.language)
			if err != nil {
				return failure(fmt.Errorf("couldn't fetch season %d details: %w", season, err))
			}
			if seasonDetails == nil {
				seasonDetails = &tmdb.SeasonDetails{SeasonNumber: season}
			}
			seasonCache[season] = seasonDetails
		}

		detail := seasonDetails.Episode(file.Parsed.Episode)
		if detail == nil {
			detail = &tmdb.EpisodeDetails{SeasonNumber: season, EpisodeNumber: file.Parsed.Episode}
		}
		if err := s.fs.WriteFile(scanner.NFOPathFor(file.Path), nfo.GenerateEpisode(*detail), 0o644); err != nil {
			return failure(fmt.Errorf("couldn't write sidecar for %s: %w", file.Name, err))
		}
	}

	return Result{Success: true, Message: fmt.Sprintf("supplemented %d episode(s)", len(pending))}
}

// FixMissingAssets regenerates only whichever of the show/movie sidecar,
// season sidecars, and posters are currently absent. Present assets are left
// exactly as they are.
func (s *Scraper) FixMissingAssets(ctx context.Context, kind, path string, tmdbID int) Result {
	if kind == tmdb.MediaTypeMovie {
		return s.fixMovieAssets(ctx, path, tmdbID)
	}
	return s.fixShowAssets(ctx, path, tmdbID)
}

func (s *Scraper) fixShowAssets(ctx context.Context, showPath string, tmdbID int) Result {
	details, err := s.catalog.GetShowDetails(ctx, tmdbID, s.language)
	if err != nil {
		return failure(fmt.Errorf("couldn't fetch show details: %w", err))
	}
	if details == nil {
		return failure(fmt.Errorf("show %d not found in catalog", tmdbID))
	}

	fixed := 0
	nfoPath := filepath.Join(showPath, scanner.ShowNFOName)
	if !s.fs.FileExists(nfoPath) {
		if err := s.fs.WriteFile(nfoPath, nfo.GenerateShow(*details), 0o644); err != nil {
			return failure(err)
		}
		fixed++
	}

	n, err := s.downloadPosterIfMissing(ctx, showPath, details.PosterPath)
	if err != nil {
		return failure(err)
	}
	fixed += n

	seasons, err := s.seasonsToVisit(showPath, 0)
	if err != nil {
		return failure(err)
	}
	for _, season := range seasons {
		seasonDir := filepath.Join(showPath, scanner.SeasonDirName(season))
		seasonDetails, err := s.catalog.GetSeasonDetails(ctx, tmdbID, season, s.language)
		if err != nil {
			return failure(fmt.Errorf("couldn't fetch season %d details: %w", season, err))
		}
		if seasonDetails == nil {
			seasonDetails = &tmdb.SeasonDetails{SeasonNumber: season}
		}

		seasonNFO := filepath.Join(seasonDir, scanner.SeasonNFOName)
		if !s.fs.FileExists(seasonNFO) {
			if err := s.fs.WriteFile(seasonNFO, nfo.GenerateSeason(details.ID, *seasonDetails), 0o644); err != nil {
				return failure(err)
			}
			fixed++
		}

		seasonPoster := seasonDetails.PosterPath
		if seasonPoster == "" {
			seasonPoster = details.PosterPath
		}
		n, err := s.downloadPosterIfMissing(ctx, seasonDir, seasonPoster)
		if err != nil {
			return failure(err)
		}
		fixed += n
	}

	return Result{Success: true, Message: fmt.Sprintf("restored %d missing asset(s)", fixed)}
}

func (s *Scraper) fixMovieAssets(ctx context.Context, moviePath string, tmdbID int) Result {
	details, err := s.catalog.GetMovieDetails(ctx, tmdbID, s.language)
	if err != nil {
		return failure(fmt.Errorf("couldn't fetch movie details: %w", err))
	}
	if details == nil {
		return failure(fmt.Errorf("movie %d not found in catalog", tmdbID))
	}

	movieFile := s.findMovieFile(moviePath)
	if movieFile == "" {
		return failure(fmt.Errorf("no video file found in %s", moviePath))
	}

	fixed := 0
	nfoPath := scanner.NFOPathFor(movieFile)
	if !s.fs.FileExists(nfoPath) {
		if err := s.fs.WriteFile(nfoPath, nfo.GenerateMovie(*details), 0o644); err != nil {
			return failure(err)
		}
		fixed++
	}

	n, err := s.downloadPosterIfMissing(ctx, moviePath, details.PosterPath)
	if err != nil {
		return failure(err)
	}
	fixed += n

	return Result{Success: true, Message: fmt.Sprintf("restored %d missing asset(s)", fixed)}
}

func (s *Scraper) downloadPosterIfMissing(ctx context.Context, dir, posterPath string) (int, error) {
	if posterPath == "" || s.scanner.FindPoster(dir) != "" {
		return 0, nil
	}

	data, err := s.catalog.DownloadImage(ctx, s.catalog.PosterURL(posterPath, tmdb.PosterSizeDetail))
	if err != nil {
		return 0, fmt.Errorf("couldn't download poster: %w", err)
	}
	if err := s.fs.WriteFile(filepath.Join(dir, scanner.PosterName), data, 0o644); err != nil {
		return 0, err
	}
	return 1, nil
}

// findMovieFile returns the first video file directly inside a movie
// directory, empty when there is none.
func (s *Scraper) findMovieFile(moviePath string) string {
	entries, err := s.fs.ReadDir(moviePath)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if !entry.IsDir() && scanner.IsVideoFile(entry.Name()) {
			return filepath.Join(moviePath, entry.Name())
		}
	}
	return ""
}

// MoveToInbox moves a library file back to the inbox root for re-processing.
// Subtitle siblings move along; the generated sidecar is deleted rather than
// moved since it describes the old placement.
func (s *Scraper) MoveToInbox(ctx context.Context, sourcePath string) (string, error) {
	sourcePath = config.NormalizePath(sourcePath)
	inLibrary := false
	for _, root := range []string{s.library.TV, s.library.Movies} {
		if strings.HasPrefix(sourcePath, config.NormalizePath(root)+"/") {
			inLibrary = true
			break
		}
	}
	if !inLibrary {
		return "", fmt.Errorf("%s is not inside the library", sourcePath)
	}

	dest := filepath.Join(s.library.Inbox, filepath.Base(sourcePath))
	if err := s.fs.Rename(sourcePath, dest); err != nil {
		return "", fmt.Errorf("couldn't move %s: %w", sourcePath, err)
	}

	sourceDir := filepath.Dir(sourcePath)
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	for _, subExt := range []string{".srt", ".ass", ".ssa", ".sub"} {
		subSource := filepath.Join(sourceDir, base+subExt)
		if s.fs.FileExists(subSource) {
			// Subtitle failures don't undo the primary move.
			_ = s.fs.Rename(subSource, filepath.Join(s.library.Inbox, base+subExt))
		}
	}

	nfoPath := filepath.Join(sourceDir, base+scanner.NFOExt)
	if s.fs.FileExists(nfoPath) {
		_ = s.fs.Remove(nfoPath)
	}

	s.CleanupSourceDir(ctx, sourceDir)
	return dest, nil
}
