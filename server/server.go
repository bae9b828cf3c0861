// Package server exposes the scanner, pipeline, and task registry over HTTP.
// Responses follow a uniform envelope: {"success": bool, "data": ..., "error": ...}
// with handler-specific extras alongside.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/yfmeii/media-scraper-web/config"
	"github.com/yfmeii/media-scraper-web/pkg/dify"
	mediaio "github.com/yfmeii/media-scraper-web/pkg/io"
	"github.com/yfmeii/media-scraper-web/pkg/scanner"
	"github.com/yfmeii/media-scraper-web/pkg/scraper"
	"github.com/yfmeii/media-scraper-web/pkg/tasks"
)

// Server houses all dependencies for the scraper API: loggers, the library
// scanner, the reconciliation pipeline, and the task registry.
type Server struct {
	baseLogger *zap.SugaredLogger
	library    config.Library
	fs         mediaio.FileIO
	scanner    *scanner.Scanner
	scraper    *scraper.Scraper
	catalog    scraper.CatalogClient
	registry   *tasks.Registry
	bus        *tasks.Bus
	recognizer *dify.Client
}

// New creates a new scraper API server.
func New(logger *zap.SugaredLogger, library config.Library, fs mediaio.FileIO, catalog scraper.CatalogClient, scrape *scraper.Scraper, registry *tasks.Registry, bus *tasks.Bus, recognizer *dify.Client) Server {
	return Server{
		baseLogger: logger,
		library:    library,
		fs:         fs,
		scanner:    scanner.New(fs, library),
		scraper:    scrape,
		catalog:    catalog,
		registry:   registry,
		bus:        bus,
		recognizer: recognizer,
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	w.Header().Set("content-type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}

	w.Write(b)
	return nil
}

func writeData(w http.ResponseWriter, data any) error {
	return writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) error {
	return writeJSON(w, status, errorResponse{Success: false, Error: message})
}

// Router assembles the full route table.
func (s Server) Router() *mux.Router {
	rtr := mux.NewRouter()
	rtr.Use(s.LogMiddleware())
	rtr.HandleFunc("/healthz", s.Healthz()).Methods(http.MethodGet)

	api := rtr.PathPrefix("/api").Subrouter()

	media := api.PathPrefix("/media").Subrouter()
	media.HandleFunc("/tv", s.ListShows()).Methods(http.MethodGet)
	media.HandleFunc("/movies", s.ListMovies()).Methods(http.MethodGet)
	media.HandleFunc("/inbox", s.ListInbox()).Methods(http.MethodGet)
	media.HandleFunc("/stats", s.LibraryStats()).Methods(http.MethodGet)
	media.HandleFunc("/poster", s.ServePoster()).Methods(http.MethodGet)

	scrape := api.PathPrefix("/scrape").Subrouter()
	scrape.HandleFunc("/search/tv", s.SearchShows()).Methods(http.MethodGet)
	scrape.HandleFunc("/search/movie", s.SearchMovies()).Methods(http.MethodGet)
	scrape.HandleFunc("/recognize", s.Recognize()).Methods(http.MethodPost)
	scrape.HandleFunc("/match", s.Match()).Methods(http.MethodPost)
	scrape.HandleFunc("/process/tv", s.ProcessTV()).Methods(http.MethodPost)
	scrape.HandleFunc("/process/movie", s.ProcessMovie()).Methods(http.MethodPost)
	scrape.HandleFunc("/move-to-inbox", s.MoveToInbox()).Methods(http.MethodPost)
	scrape.HandleFunc("/refresh", s.Refresh()).Methods(http.MethodPost)
	scrape.HandleFunc("/preview", s.Preview()).Methods(http.MethodPost)
	scrape.HandleFunc("/batch", s.Batch()).Methods(http.MethodPost)
	scrape.HandleFunc("/supplement", s.Supplement()).Methods(http.MethodPost)
	scrape.HandleFunc("/fix-assets", s.FixAssets()).Methods(http.MethodPost)

	api.HandleFunc("/tasks", s.ListTasks()).Methods(http.MethodGet)
	taskAPI := api.PathPrefix("/tasks").Subrouter()
	taskAPI.HandleFunc("/stats", s.TaskStats()).Methods(http.MethodGet)
	taskAPI.HandleFunc("/{id}", s.GetTask()).Methods(http.MethodGet)
	taskAPI.HandleFunc("/{id}/cancel", s.CancelTask()).Methods(http.MethodPost)

	api.HandleFunc("/progress", s.ProgressStream()).Methods(http.MethodGet)

	return rtr
}

// Serve starts the http server and is a blocking call
func (s Server) Serve(port int) error {
	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(s.Router())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: corsHandler,
	}

	go func() {
		s.baseLogger.Infow("serving...", "port", port)
		if err := srv.ListenAndServe(); err != nil {
			s.baseLogger.Error(err.Error())
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	return srv.Shutdown(ctx)
}

// Healthz is an endpoint that can be used for probes
func (s Server) Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, "ok")
	}
}

func decodeBody(r *http.Request, into any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(into)
}
