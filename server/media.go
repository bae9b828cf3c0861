package server

import (
	"net/http"
	"strings"

	"github.com/yfmeii/media-scraper-web/config"
	"github.com/yfmeii/media-scraper-web/pkg/logger"
	"github.com/yfmeii/media-scraper-web/pkg/scanner"
)

type showGroups struct {
	Scraped    int `json:"scraped"`
	Unscraped  int `json:"unscraped"`
	Supplement int `json:"supplement"`
}

// ListShows lists shows in the TV library. `?include=assets` adds asset
// completeness flags and sidecar detail read-back; `?group=status` adds
// scraped/unscraped/supplement counts.
func (s Server) ListShows() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeAssets := r.URL.Query().Get("include") == "assets"

		var shows []scanner.ShowInfo
		if includeAssets {
			shows = s.scanner.ScanShowsWithAssets(r.Context())
		} else {
			shows = s.scanner.ScanShows(r.Context())
		}

		var groups *showGroups
		if includeAssets && r.URL.Query().Get("group") == "status" {
			groups = &showGroups{}
			for _, show := range shows {
				switch show.GroupStatus {
				case scanner.StatusScraped:
					groups.Scraped++
				case scanner.StatusUnscraped:
					groups.Unscraped++
				case scanner.StatusSupplement:
					groups.Supplement++
				}
			}
		}

		writeJSON(w, http.StatusOK, struct {
			Success bool               `json:"success"`
			Data    []scanner.ShowInfo `json:"data"`
			Total   int                `json:"total"`
			Groups  *showGroups        `json:"groups,omitempty"`
		}{Success: true, Data: shows, Total: len(shows), Groups: groups})
	}
}

// ListMovies lists movies in the library. `?include=assets` adds asset flags.
func (s Server) ListMovies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var movies []scanner.MovieInfo
		if r.URL.Query().Get("include") == "assets" {
			movies = s.scanner.ScanMoviesWithAssets(r.Context())
		} else {
			movies = s.scanner.ScanMovies(r.Context())
		}

		writeJSON(w, http.StatusOK, struct {
			Success bool                `json:"success"`
			Data    []scanner.MovieInfo `json:"data"`
			Total   int                 `json:"total"`
		}{Success: true, Data: movies, Total: len(movies)})
	}
}

// ListInbox lists unorganized files. `?view=dir` groups them by containing
// directory instead.
func (s Server) ListInbox() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("view") == "dir" {
			groups := s.scanner.ScanInboxGroups(r.Context())
			total := 0
			for _, group := range groups {
				total += len(group.Files)
			}
			writeJSON(w, http.StatusOK, struct {
				Success     bool                     `json:"success"`
				Data        []scanner.DirectoryGroup `json:"data"`
				Total       int                      `json:"total"`
				Directories int                      `json:"directories"`
			}{Success: true, Data: groups, Total: total, Directories: len(groups)})
			return
		}

		files := s.scanner.ScanInbox(r.Context())
		writeJSON(w, http.StatusOK, struct {
			Success bool                `json:"success"`
			Data    []scanner.MediaFile `json:"data"`
			Total   int                 `json:"total"`
		}{Success: true, Data: files, Total: len(files)})
	}
}

// LibraryStats summarizes the library for dashboards.
func (s Server) LibraryStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, s.scanner.Stats(r.Context()))
	}
}

// ServePoster serves artwork files from inside the configured media roots.
// Anything outside them is refused regardless of existence.
func (s Server) ServePoster() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())
		path := config.NormalizePath(r.URL.Query().Get("path"))
		if path == "" {
			writeError(w, http.StatusBadRequest, "missing path parameter")
			return
		}

		allowed := false
		for _, root := range s.library.ProtectedRoots() {
			if strings.HasPrefix(path, root+"/") {
				allowed = true
				break
			}
		}
		if !allowed {
			writeError(w, http.StatusForbidden, "access denied")
			return
		}

		data, err := s.fs.ReadFile(path)
		if err != nil {
			log.Debugw("poster not found", "path", path)
			writeError(w, http.StatusNotFound, "file not found")
			return
		}

		contentType := "image/jpeg"
		if strings.HasSuffix(path, ".png") {
			contentType = "image/png"
		}
		w.Header().Set("content-type", contentType)
		w.Write(data)
	}
}
