package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/yfmeii/media-scraper-web/config"
	"github.com/yfmeii/media-scraper-web/pkg/io"
	"github.com/yfmeii/media-scraper-web/pkg/logger"
	"github.com/yfmeii/media-scraper-web/pkg/nfo"
)

const (
	NFOExt = ".nfo"

	// ShowNFOName is the show-level sidecar filename.
	ShowNFOName = "tvshow.nfo"
	// SeasonNFOName is the season-level sidecar filename.
	SeasonNFOName = "season.nfo"
	// FanartName is the backdrop image filename.
	FanartName = "fanart.jpg"
	// PosterName is the canonical poster filename written by the pipeline.
	PosterName = "poster.jpg"
)

var (
	videoExtensions    = tagSet(".mkv", ".mp4", ".m4v", ".avi", ".mov")
	subtitleExtensions = tagSet(".srt", ".ass", ".ssa", ".sub")

	// Poster probe order; the pipeline writes poster.jpg but users drop in
	// the other spellings.
	posterNames = []string{"poster.jpg", "poster.png", "folder.jpg"}

	movieDirYearRe = regexp.MustCompile(`\((\d{4})\)\s*$`)
	seasonDirRe    = regexp.MustCompile(`(?i)^Season\s*(\d+)$`)
)

// IsVideoFile reports whether a filename has a recognized video extension.
func IsVideoFile(name string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsSubtitleFile reports whether a filename has a recognized subtitle extension.
func IsSubtitleFile(name string) bool {
	return subtitleExtensions[strings.ToLower(filepath.Ext(name))]
}

// NFOPathFor returns the sidecar path adjacent to a video file.
func NFOPathFor(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + NFOExt
}

// SeasonDirName formats a season directory name, e.g. "Season 01".
func SeasonDirName(season int) string {
	return fmt.Sprintf("Season %02d", season)
}

// SeasonDirNumber parses a season directory name back into its number.
func SeasonDirNumber(name string) (int, bool) {
	m := seasonDirRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	season, _ := strconv.Atoi(m[1])
	return season, true
}

// Scanner builds typed views of the media library from directory contents.
// It holds no state between scans; everything is derived from disk.
type Scanner struct {
	fs      io.FileIO
	library config.Library
}

func New(fs io.FileIO, library config.Library) *Scanner {
	return &Scanner{
		fs:      fs,
		library: library,
	}
}

// ScanDirectory recursively collects video files under dirPath. Relative
// paths are computed against basePath. Unreadable directories degrade to an
// empty result for that subtree; a partial scan beats no scan.
func (s *Scanner) ScanDirectory(ctx context.Context, dirPath, basePath string) []MediaFile {
	log := logger.FromCtx(ctx)
	if basePath == "" {
		basePath = dirPath
	}

	var files []MediaFile
	entries, err := s.fs.ReadDir(dirPath)
	if err != nil {
		log.Warnw("failed to scan directory", "dir", dirPath, "error", err)
		return files
	}

	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())

		if entry.IsDir() {
			files = append(files, s.ScanDirectory(ctx, fullPath, basePath)...)
			continue
		}

		if !IsVideoFile(entry.Name()) {
			continue
		}

		files = append(files, s.mediaFile(fullPath, entry.Name(), basePath))
	}

	return files
}

func (s *Scanner) mediaFile(fullPath, name, basePath string) MediaFile {
	relativePath := strings.TrimPrefix(fullPath, strings.TrimRight(basePath, "/")+"/")
	parsed := ParseRelativePath(relativePath)

	kind := KindMovie
	if parsed.Season > 0 || parsed.Episode > 0 {
		kind = KindTV
	}

	hasNFO, processed, _ := s.nfoStatus(NFOPathFor(fullPath), false)

	var size int64
	if info, err := s.fs.Stat(fullPath); err == nil {
		size = info.Size()
	}

	return MediaFile{
		Path:         fullPath,
		Name:         name,
		RelativePath: relativePath,
		Size:         size,
		Kind:         kind,
		Parsed:       parsed,
		HasNFO:       hasNFO,
		IsProcessed:  processed,
	}
}

// nfoStatus probes a sidecar. processed is only true for sidecars carrying
// the generator signature; withID additionally extracts the recorded tmdb id.
func (s *Scanner) nfoStatus(nfoPath string, withID bool) (hasNFO, processed bool, tmdbID int) {
	content, err := s.fs.ReadFile(nfoPath)
	if err != nil {
		return false, false, 0
	}

	hasNFO = true
	processed = nfo.IsGenerated(content)
	if withID {
		tmdbID = nfo.ExtractTMDBID(content)
	}
	return hasNFO, processed, tmdbID
}

// ScanShows lists shows under the TV root without probing assets.
func (s *Scanner) ScanShows(ctx context.Context) []ShowInfo {
	return s.scanShows(ctx, false)
}

// ScanShowsWithAssets lists shows including asset flags, sidecar details,
// group status, and supplement counts.
func (s *Scanner) ScanShowsWithAssets(ctx context.Context) []ShowInfo {
	return s.scanShows(ctx, true)
}

func (s *Scanner) scanShows(ctx context.Context, includeAssets bool) []ShowInfo {
	log := logger.FromCtx(ctx)
	shows := []ShowInfo{}

	entries, err := s.fs.ReadDir(s.library.TV)
	if err != nil {
		log.Warnw("failed to scan tv root", "dir", s.library.TV, "error", err)
		return shows
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		showPath := filepath.Join(s.library.TV, entry.Name())
		show := s.buildShowInfo(ctx, showPath, entry.Name(), includeAssets)
		if show == nil {
			continue
		}
		shows = append(shows, *show)
	}

	sort.Slice(shows, func(i, j int) bool { return shows[i].Name < shows[j].Name })
	return shows
}

func (s *Scanner) buildShowInfo(ctx context.Context, showPath, name string, includeAssets bool) *ShowInfo {
	files := s.ScanDirectory(ctx, showPath, showPath)
	var tvFiles []MediaFile
	for _, f := range files {
		if f.Kind == KindTV {
			tvFiles = append(tvFiles, f)
		}
	}
	if len(tvFiles) == 0 {
		return nil
	}

	nfoPath := filepath.Join(showPath, ShowNFOName)
	hasNFO, processed, tmdbID := s.nfoStatus(nfoPath, includeAssets)

	show := &ShowInfo{
		Path:        showPath,
		Name:        name,
		Seasons:     s.buildSeasonInfos(showPath, tvFiles, includeAssets),
		HasNFO:      hasNFO,
		IsProcessed: processed,
		PosterPath:  s.FindPoster(showPath),
	}

	if !includeAssets {
		return show
	}

	assets := s.assetFlags(showPath)
	assets.HasNFO = hasNFO
	show.Assets = &assets
	show.TMDBID = tmdbID

	supplements := s.DetectSupplementFiles(ctx, showPath)
	show.SupplementCount = len(supplements)

	show.GroupStatus = StatusUnscraped
	if processed && hasNFO {
		if show.SupplementCount > 0 {
			show.GroupStatus = StatusSupplement
		} else {
			show.GroupStatus = StatusScraped
		}
	}

	if content, err := s.fs.ReadFile(nfoPath); err == nil {
		details := nfo.ReadDetails(content)
		show.Overview = details.Overview
		show.Status = details.Status
		show.VoteAverage = details.Rating
		if show.Year == 0 {
			show.Year = details.Year
		}
	}

	return show
}

func (s *Scanner) buildSeasonInfos(showPath string, files []MediaFile, includeAssets bool) []SeasonInfo {
	bySeason := map[int][]MediaFile{}
	for _, f := range files {
		season := f.Parsed.Season
		if season == 0 {
			season = 1
		}
		bySeason[season] = append(bySeason[season], f)
	}

	seasons := make([]SeasonInfo, 0, len(bySeason))
	for season, episodes := range bySeason {
		sort.Slice(episodes, func(i, j int) bool {
			return episodes[i].Parsed.Episode < episodes[j].Parsed.Episode
		})

		info := SeasonInfo{Season: season, Episodes: episodes}

		if includeAssets {
			seasonPath := filepath.Join(showPath, SeasonDirName(season))
			assets := s.assetFlags(seasonPath)
			info.HasNFO = s.fs.FileExists(filepath.Join(seasonPath, SeasonNFOName))
			assets.HasNFO = info.HasNFO
			info.Assets = &assets
		}

		seasons = append(seasons, info)
	}

	sort.Slice(seasons, func(i, j int) bool { return seasons[i].Season < seasons[j].Season })
	return seasons
}

// ScanMovies lists movies under the movies root without probing assets.
func (s *Scanner) ScanMovies(ctx context.Context) []MovieInfo {
	return s.scanMovies(ctx, false)
}

// ScanMoviesWithAssets lists movies including asset flags and sidecar details.
func (s *Scanner) ScanMoviesWithAssets(ctx context.Context) []MovieInfo {
	return s.scanMovies(ctx, true)
}

func (s *Scanner) scanMovies(ctx context.Context, includeAssets bool) []MovieInfo {
	log := logger.FromCtx(ctx)
	movies := []MovieInfo{}

	entries, err := s.fs.ReadDir(s.library.Movies)
	if err != nil {
		log.Warnw("failed to scan movies root", "dir", s.library.Movies, "error", err)
		return movies
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		moviePath := filepath.Join(s.library.Movies, entry.Name())
		movie := s.buildMovieInfo(ctx, moviePath, entry.Name(), includeAssets)
		if movie == nil {
			continue
		}
		movies = append(movies, *movie)
	}

	sort.Slice(movies, func(i, j int) bool { return movies[i].Name < movies[j].Name })
	return movies
}

func (s *Scanner) buildMovieInfo(ctx context.Context, moviePath, entryName string, includeAssets bool) *MovieInfo {
	files := s.ScanDirectory(ctx, moviePath, moviePath)
	var movieFile *MediaFile
	for i := range files {
		if files[i].Kind == KindMovie || files[i].Kind == KindUnknown {
			movieFile = &files[i]
			break
		}
	}
	if movieFile == nil {
		return nil
	}

	nfoPath := NFOPathFor(movieFile.Path)
	hasNFO, processed, tmdbID := s.nfoStatus(nfoPath, includeAssets)

	movie := &MovieInfo{
		Path:        moviePath,
		Name:        entryName,
		File:        *movieFile,
		HasNFO:      hasNFO,
		IsProcessed: processed,
		PosterPath:  s.FindPoster(moviePath),
	}

	if !includeAssets {
		return movie
	}

	assets := s.assetFlags(moviePath)
	assets.HasNFO = hasNFO
	movie.Assets = &assets
	movie.TMDBID = tmdbID

	if m := movieDirYearRe.FindStringSubmatch(entryName); m != nil {
		movie.Year, _ = strconv.Atoi(m[1])
	}
	movie.Name = strings.TrimSpace(movieDirYearRe.ReplaceAllString(entryName, ""))

	if content, err := s.fs.ReadFile(nfoPath); err == nil {
		details := nfo.ReadDetails(content)
		movie.Overview = details.Overview
		movie.Tagline = details.Tagline
		movie.Runtime = details.Runtime
		movie.VoteAverage = details.Rating
		if movie.Year == 0 {
			movie.Year = details.Year
		}
	}

	return movie
}

// ScanInbox lists all video files under the inbox root, sorted by relative path.
func (s *Scanner) ScanInbox(ctx context.Context) []MediaFile {
	files := s.ScanDirectory(ctx, s.library.Inbox, s.library.Inbox)
	sort.Slice(files, func(i, j int) bool { return files[i].RelativePath < files[j].RelativePath })
	return files
}

// ScanInboxGroups groups inbox files by their containing subdirectory. Files
// directly in the inbox root go into a synthetic root group.
func (s *Scanner) ScanInboxGroups(ctx context.Context) []DirectoryGroup {
	log := logger.FromCtx(ctx)
	groups := []DirectoryGroup{}

	entries, err := s.fs.ReadDir(s.library.Inbox)
	if err != nil {
		log.Warnw("failed to scan inbox root", "dir", s.library.Inbox, "error", err)
		return groups
	}

	var rootFiles []MediaFile
	for _, entry := range entries {
		fullPath := filepath.Join(s.library.Inbox, entry.Name())

		if entry.IsDir() {
			files := s.ScanDirectory(ctx, fullPath, s.library.Inbox)
			if len(files) == 0 {
				continue
			}
			groups = append(groups, DirectoryGroup{
				Path:    fullPath,
				Name:    entry.Name(),
				Files:   files,
				Summary: summarize(files),
			})
			continue
		}

		if IsVideoFile(entry.Name()) {
			rootFiles = append(rootFiles, s.mediaFile(fullPath, entry.Name(), s.library.Inbox))
		}
	}

	if len(rootFiles) > 0 {
		groups = append(groups, DirectoryGroup{
			Path:    s.library.Inbox,
			Name:    filepath.Base(s.library.Inbox),
			Files:   rootFiles,
			Summary: summarize(rootFiles),
		})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

func summarize(files []MediaFile) GroupSummary {
	summary := GroupSummary{Total: len(files)}
	for _, f := range files {
		switch f.Kind {
		case KindTV:
			summary.TV++
		case KindMovie:
			summary.Movie++
		default:
			summary.Unknown++
		}
	}
	return summary
}

// DetectSupplementFiles finds episode files inside a show's season
// directories that have no adjacent sidecar yet. Those are the episodes a
// supplement run would scrape.
func (s *Scanner) DetectSupplementFiles(ctx context.Context, showPath string) []MediaFile {
	log := logger.FromCtx(ctx)
	var pending []MediaFile

	seasonDirs, err := s.fs.ReadDir(showPath)
	if err != nil {
		log.Warnw("failed to detect supplement files", "dir", showPath, "error", err)
		return pending
	}

	for _, seasonDir := range seasonDirs {
		seasonNum, ok := SeasonDirNumber(seasonDir.Name())
		if !seasonDir.IsDir() || !ok {
			continue
		}

		seasonPath := filepath.Join(showPath, seasonDir.Name())
		files, err := s.fs.ReadDir(seasonPath)
		if err != nil {
			log.Warnw("failed to read season directory", "dir", seasonPath, "error", err)
			continue
		}

		for _, file := range files {
			if file.IsDir() || !IsVideoFile(file.Name()) {
				continue
			}

			filePath := filepath.Join(seasonPath, file.Name())
			if s.fs.FileExists(NFOPathFor(filePath)) {
				continue
			}

			parsed := ParseFilename(file.Name())
			parsed.Season = seasonNum

			var size int64
			if info, err := s.fs.Stat(filePath); err == nil {
				size = info.Size()
			}

			pending = append(pending, MediaFile{
				Path:         filePath,
				Name:         file.Name(),
				RelativePath: filepath.Join(seasonDir.Name(), file.Name()),
				Size:         size,
				Kind:         KindTV,
				Parsed:       parsed,
			})
		}
	}

	return pending
}

// Stats summarizes the whole library in one pass.
func (s *Scanner) Stats(ctx context.Context) Stats {
	shows := s.ScanShows(ctx)
	movies := s.ScanMovies(ctx)
	inbox := s.ScanInbox(ctx)

	stats := Stats{
		TVShows: len(shows),
		Movies:  len(movies),
		Inbox:   len(inbox),
	}
	for _, show := range shows {
		for _, season := range show.Seasons {
			stats.TVEpisodes += len(season.Episodes)
		}
		if show.IsProcessed {
			stats.TVProcessed++
		}
	}
	for _, movie := range movies {
		if movie.IsProcessed {
			stats.MoviesProcessed++
		}
	}
	return stats
}

// FindPoster returns the first existing poster file in a directory, probing
// the well-known names in priority order.
func (s *Scanner) FindPoster(basePath string) string {
	for _, name := range posterNames {
		p := filepath.Join(basePath, name)
		if s.fs.FileExists(p) {
			return p
		}
	}
	return ""
}

func (s *Scanner) assetFlags(basePath string) AssetFlags {
	return AssetFlags{
		HasPoster: s.FindPoster(basePath) != "",
		HasFanart: s.fs.FileExists(filepath.Join(basePath, FanartName)),
	}
}
