package scanner

// MediaKind classifies a scanned video file. Files with season/episode
// evidence are tv, everything else defaults to movie.
type MediaKind string

const (
	KindTV      MediaKind = "tv"
	KindMovie   MediaKind = "movie"
	KindUnknown MediaKind = "unknown"
)

// MediaFile is one video file found during a scan. All fields are derived
// from the current directory contents on every scan.
type MediaFile struct {
	Path         string     `json:"path"`
	Name         string     `json:"name"`
	RelativePath string     `json:"relativePath"`
	Size         int64      `json:"size"`
	Kind         MediaKind  `json:"kind"`
	Parsed       ParsedInfo `json:"parsed"`
	HasNFO       bool       `json:"hasNfo"`
	IsProcessed  bool       `json:"isProcessed"`
}

// AssetFlags reports which well-known companion files exist in a directory.
type AssetFlags struct {
	HasPoster bool `json:"hasPoster"`
	HasNFO    bool `json:"hasNfo"`
	HasFanart bool `json:"hasFanart"`
}

type SeasonInfo struct {
	Season   int         `json:"season"`
	Episodes []MediaFile `json:"episodes"`
	HasNFO   bool        `json:"hasNfo,omitempty"`
	Assets   *AssetFlags `json:"assets,omitempty"`
}

// GroupStatus classifies a show for the library overview.
type GroupStatus string

const (
	// StatusScraped means the show is processed and has no pending episodes.
	StatusScraped GroupStatus = "scraped"
	// StatusUnscraped means the show has no system-authored metadata yet.
	StatusUnscraped GroupStatus = "unscraped"
	// StatusSupplement means the show is processed but unscraped episode
	// files showed up alongside the scraped ones.
	StatusSupplement GroupStatus = "supplement"
)

type ShowInfo struct {
	Path            string       `json:"path"`
	Name            string       `json:"name"`
	Year            int          `json:"year,omitempty"`
	Seasons         []SeasonInfo `json:"seasons"`
	HasNFO          bool         `json:"hasNfo"`
	IsProcessed     bool         `json:"isProcessed"`
	PosterPath      string       `json:"posterPath,omitempty"`
	Overview        string       `json:"overview,omitempty"`
	Status          string       `json:"status,omitempty"`
	VoteAverage     float64      `json:"voteAverage,omitempty"`
	Assets          *AssetFlags  `json:"assets,omitempty"`
	TMDBID          int          `json:"tmdbId,omitempty"`
	GroupStatus     GroupStatus  `json:"groupStatus,omitempty"`
	SupplementCount int          `json:"supplementCount"`
}

type MovieInfo struct {
	Path        string      `json:"path"`
	Name        string      `json:"name"`
	Year        int         `json:"year,omitempty"`
	File        MediaFile   `json:"file"`
	HasNFO      bool        `json:"hasNfo"`
	IsProcessed bool        `json:"isProcessed"`
	PosterPath  string      `json:"posterPath,omitempty"`
	Overview    string      `json:"overview,omitempty"`
	Tagline     string      `json:"tagline,omitempty"`
	Runtime     int         `json:"runtime,omitempty"`
	VoteAverage float64     `json:"voteAverage,omitempty"`
	Assets      *AssetFlags `json:"assets,omitempty"`
	TMDBID      int         `json:"tmdbId,omitempty"`
}

// GroupSummary counts files in a directory group by kind.
type GroupSummary struct {
	Total   int `json:"total"`
	TV      int `json:"tv"`
	Movie   int `json:"movie"`
	Unknown int `json:"unknown"`
}

// DirectoryGroup is the inbox view grouped by containing subdirectory. Files
// sitting directly in the inbox root collect into a synthetic root group.
type DirectoryGroup struct {
	Path    string       `json:"path"`
	Name    string       `json:"name"`
	Files   []MediaFile  `json:"files"`
	Summary GroupSummary `json:"summary"`
}

// Stats summarizes the library for the dashboard.
type Stats struct {
	TVShows         int `json:"tvShows"`
	TVEpisodes      int `json:"tvEpisodes"`
	TVProcessed     int `json:"tvProcessed"`
	Movies          int `json:"movies"`
	MoviesProcessed int `json:"moviesProcessed"`
	Inbox           int `json:"inbox"`
}
