package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yfmeii/media-scraper-web/config"
	"github.com/yfmeii/media-scraper-web/pkg/logger"
	"github.com/yfmeii/media-scraper-web/pkg/scraper"
	"github.com/yfmeii/media-scraper-web/pkg/tasks"
	"github.com/yfmeii/media-scraper-web/pkg/tmdb"
)

const searchResultLimit = 10

type showSearchItem struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"originalName,omitempty"`
	Overview     string  `json:"overview,omitempty"`
	FirstAirDate string  `json:"firstAirDate,omitempty"`
	VoteAverage  float64 `json:"voteAverage,omitempty"`
	PosterPath   string  `json:"posterPath,omitempty"`
}

type movieSearchItem struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"originalTitle,omitempty"`
	Overview      string  `json:"overview,omitempty"`
	ReleaseDate   string  `json:"releaseDate,omitempty"`
	VoteAverage   float64 `json:"voteAverage,omitempty"`
	PosterPath    string  `json:"posterPath,omitempty"`
}

// SearchShows searches the catalog for shows.
func (s Server) SearchShows() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			writeError(w, http.StatusBadRequest, "missing query parameter")
			return
		}
		year, _ := strconv.Atoi(r.URL.Query().Get("year"))

		results, err := s.scraper.Search(r.Context(), tmdb.MediaTypeTV, query, year)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}

		items := make([]showSearchItem, 0, searchResultLimit)
		for _, result := range results[:min(searchResultLimit, len(results))] {
			items = append(items, showSearchItem{
				ID:           result.ID,
				Name:         result.Name,
				OriginalName: result.OriginalName,
				Overview:     truncate(result.Overview, 200),
				FirstAirDate: result.FirstAirDate,
				VoteAverage:  result.VoteAverage,
				PosterPath:   s.posterURL(result.PosterPath),
			})
		}
		writeData(w, items)
	}
}

// SearchMovies searches the catalog for movies.
func (s Server) SearchMovies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			writeError(w, http.StatusBadRequest, "missing query parameter")
			return
		}
		year, _ := strconv.Atoi(r.URL.Query().Get("year"))

		results, err := s.scraper.Search(r.Context(), tmdb.MediaTypeMovie, query, year)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}

		items := make([]movieSearchItem, 0, searchResultLimit)
		for _, result := range results[:min(searchResultLimit, len(results))] {
			items = append(items, movieSearchItem{
				ID:            result.ID,
				Title:         result.Title,
				OriginalTitle: result.OriginalTitle,
				Overview:      truncate(result.Overview, 200),
				ReleaseDate:   result.ReleaseDate,
				VoteAverage:   result.VoteAverage,
				PosterPath:    s.posterURL(result.PosterPath),
			})
		}
		writeData(w, items)
	}
}

// Recognize runs the optional AI workflow over a file path. The answer is
// advisory; the client decides whether to trust it.
func (s Server) Recognize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromCtx(r.Context())

		var req struct {
			Path string `json:"path"`
		}
		if err := decodeBody(r, &req); err != nil || req.Path == "" {
			writeError(w, http.StatusBadRequest, "missing path")
			return
		}

		if s.recognizer == nil || !s.recognizer.Enabled() {
			writeError(w, http.StatusServiceUnavailable, "path recognition is not configured")
			return
		}

		result, err := s.recognizer.RecognizePath(r.Context(), req.Path)
		if err != nil {
			log.Warnw("path recognition failed", "error", err)
			writeError(w, http.StatusBadGateway, "path recognition failed")
			return
		}
		writeData(w, result)
	}
}

// Match auto-matches a file against the catalog.
func (s Server) Match() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Path  string `json:"path"`
			Kind  string `json:"kind"`
			Title string `json:"title"`
			Year  int    `json:"year"`
		}
		if err := decodeBody(r, &req); err != nil || req.Path == "" || req.Kind == "" {
			writeError(w, http.StatusBadRequest, "missing path or kind")
			return
		}

		result, err := s.scraper.AutoMatch(r.Context(), req.Path, req.Kind, req.Title, req.Year)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeData(w, result)
	}
}

// ProcessTV moves and scrapes a set of episode files.
func (s Server) ProcessTV() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SourcePath string                      `json:"sourcePath"`
			ShowName   string                      `json:"showName"`
			TMDBID     int                         `json:"tmdbId"`
			Season     int                         `json:"season"`
			Episodes   []scraper.EpisodeAssignment `json:"episodes"`
		}
		if err := decodeBody(r, &req); err != nil || req.SourcePath == "" || req.TMDBID == 0 || len(req.Episodes) == 0 {
			writeError(w, http.StatusBadRequest, "missing required parameters")
			return
		}

		result := s.scraper.ProcessTV(r.Context(), scraper.Item{
			Kind:       tmdb.MediaTypeTV,
			SourcePath: req.SourcePath,
			ShowName:   req.ShowName,
			TMDBID:     req.TMDBID,
			Season:     req.Season,
			Episodes:   req.Episodes,
		})
		writeJSON(w, http.StatusOK, result)
	}
}

// ProcessMovie moves and scrapes a movie file.
func (s Server) ProcessMovie() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SourcePath string `json:"sourcePath"`
			TMDBID     int    `json:"tmdbId"`
		}
		if err := decodeBody(r, &req); err != nil || req.SourcePath == "" || req.TMDBID == 0 {
			writeError(w, http.StatusBadRequest, "missing required parameters")
			return
		}

		result := s.scraper.ProcessMovie(r.Context(), scraper.Item{
			Kind:       tmdb.MediaTypeMovie,
			SourcePath: req.SourcePath,
			TMDBID:     req.TMDBID,
		})
		writeJSON(w, http.StatusOK, result)
	}
}

// MoveToInbox moves a library file back to the inbox for re-processing.
func (s Server) MoveToInbox() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SourcePath string `json:"sourcePath"`
		}
		if err := decodeBody(r, &req); err != nil || req.SourcePath == "" {
			writeError(w, http.StatusBadRequest, "missing sourcePath parameter")
			return
		}

		dest, err := s.scraper.MoveToInbox(r.Context(), req.SourcePath)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Success  bool   `json:"success"`
			Message  string `json:"message"`
			DestPath string `json:"destPath"`
		}{Success: true, Message: fmt.Sprintf("moved to inbox: %s", filepath.Base(dest)), DestPath: dest})
	}
}

// Refresh regenerates sidecar metadata in place.
func (s Server) Refresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Kind    string `json:"kind"`
			Path    string `json:"path"`
			TMDBID  int    `json:"tmdbId"`
			Season  int    `json:"season"`
			Episode int    `json:"episode"`
		}
		if err := decodeBody(r, &req); err != nil || req.Kind == "" || req.Path == "" || req.TMDBID == 0 {
			writeError(w, http.StatusBadRequest, "missing required parameters")
			return
		}

		result := s.scraper.RefreshMetadata(r.Context(), req.Kind, req.Path, req.TMDBID, req.Season, req.Episode)
		writeJSON(w, http.StatusOK, result)
	}
}

// Preview returns the exact actions processing the items would take.
func (s Server) Preview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Items []scraper.Item `json:"items"`
		}
		if err := decodeBody(r, &req); err != nil || req.Items == nil {
			writeError(w, http.StatusBadRequest, "missing items array")
			return
		}

		plan, err := s.scraper.PreviewPlan(r.Context(), req.Items)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeData(w, plan)
	}
}

// Batch processes multiple items under one tracked task.
func (s Server) Batch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Items []scraper.Item `json:"items"`
		}
		if err := decodeBody(r, &req); err != nil || req.Items == nil {
			writeError(w, http.StatusBadRequest, "missing items array")
			return
		}

		batch := s.scraper.Batch(r.Context(), req.Items)
		writeJSON(w, http.StatusOK, struct {
			Success   bool                      `json:"success"`
			Data      []scraper.BatchItemResult `json:"data"`
			Processed int                       `json:"processed"`
			Failed    int                       `json:"failed"`
			TaskID    string                    `json:"taskId"`
		}{Success: true, Data: batch.Results, Processed: batch.Done, Failed: batch.Failed, TaskID: batch.TaskID})
	}
}

// Supplement writes sidecars for episode files that appeared in an
// already-scraped show. The path must resolve inside the TV root.
func (s Server) Supplement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ShowPath string `json:"showPath"`
		}
		if err := decodeBody(r, &req); err != nil || req.ShowPath == "" {
			writeError(w, http.StatusBadRequest, "missing showPath")
			return
		}

		tvRoot := config.NormalizePath(s.library.TV)
		fullPath := config.NormalizePath(req.ShowPath)
		if !strings.HasPrefix(fullPath, tvRoot+"/") {
			fullPath = filepath.Join(tvRoot, req.ShowPath)
		}
		if !strings.HasPrefix(fullPath, tvRoot+"/") {
			writeError(w, http.StatusForbidden, "invalid path")
			return
		}

		task := s.registry.Create(tasks.TypeSupplement, req.ShowPath)
		s.registry.Start(task.ID)

		result := s.scraper.SupplementShow(r.Context(), fullPath)
		s.registry.Complete(task.ID, result.Success, result.Message)

		writeJSON(w, http.StatusOK, struct {
			Success bool           `json:"success"`
			Data    scraper.Result `json:"data"`
			TaskID  string         `json:"taskId"`
		}{Success: result.Success, Data: result, TaskID: task.ID})
	}
}

// FixAssets restores missing sidecars and posters. The path must sit inside
// the TV or Movies root.
func (s Server) FixAssets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Kind   string `json:"kind"`
			Path   string `json:"path"`
			TMDBID int    `json:"tmdbId"`
		}
		if err := decodeBody(r, &req); err != nil || req.Kind == "" || req.Path == "" || req.TMDBID == 0 {
			writeError(w, http.StatusBadRequest, "missing required parameters")
			return
		}

		path := config.NormalizePath(req.Path)
		allowed := false
		for _, root := range []string{s.library.TV, s.library.Movies} {
			if strings.HasPrefix(path, config.NormalizePath(root)+"/") {
				allowed = true
				break
			}
		}
		if !allowed {
			writeError(w, http.StatusForbidden, "invalid path")
			return
		}

		task := s.registry.Create(tasks.TypeFixAssets, path)
		s.registry.Start(task.ID)

		result := s.scraper.FixMissingAssets(r.Context(), req.Kind, path, req.TMDBID)
		s.registry.Complete(task.ID, result.Success, result.Message)

		writeJSON(w, http.StatusOK, struct {
			Success bool           `json:"success"`
			Data    scraper.Result `json:"data"`
			TaskID  string         `json:"taskId"`
		}{Success: result.Success, Data: result, TaskID: task.ID})
	}
}

func (s Server) posterURL(path string) string {
	if path == "" {
		return ""
	}
	return s.catalog.PosterURL(path, tmdb.PosterSizeThumb)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
