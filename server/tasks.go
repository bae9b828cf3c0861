package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/yfmeii/media-scraper-web/pkg/pagination"
	"github.com/yfmeii/media-scraper-web/pkg/tasks"
)

const defaultTaskLimit = 50

// ListTasks lists tasks newest first. `?status=` filters by lifecycle state,
// `?limit=` caps the page size and `?page=` selects the page; overall stats
// ride along.
func (s Server) ListTasks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := tasks.Status(r.URL.Query().Get("status"))
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 {
			limit = defaultTaskLimit
		}
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}

		list, meta := s.registry.ListPage(status, pagination.Params{Page: page, PageSize: limit})

		writeJSON(w, http.StatusOK, struct {
			Success bool            `json:"success"`
			Data    []tasks.Task    `json:"data"`
			Total   int             `json:"total"`
			Meta    pagination.Meta `json:"meta"`
			Stats   tasks.Stats     `json:"stats"`
		}{Success: true, Data: list, Total: len(list), Meta: meta, Stats: s.registry.Stats()})
	}
}

// TaskStats returns lifecycle counts over all tasks.
func (s Server) TaskStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, s.registry.Stats())
	}
}

// GetTask returns one task with its full log.
func (s Server) GetTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		task, ok := s.registry.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("task %q not found", id))
			return
		}
		writeData(w, task)
	}
}

// CancelTask aborts a task that has not started running yet.
func (s Server) CancelTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		task, err := s.registry.Cancel(id)
		if err != nil {
			writeError(w, http.StatusBadRequest, "cannot cancel task (not found or already started)")
			return
		}
		writeData(w, task)
	}
}

const progressHeartbeat = 15 * time.Second

// ProgressStream bridges the progress bus to Server-Sent Events. The stream
// stays open until the client disconnects; periodic comments keep proxies
// from timing the connection out.
func (s Server) ProgressStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		events, cancel := s.bus.Subscribe()
		defer cancel()

		w.Header().Set("content-type", "text/event-stream")
		w.Header().Set("cache-control", "no-cache")
		w.Header().Set("connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		heartbeat := time.NewTicker(progressHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-heartbeat.C:
				fmt.Fprint(w, ": ping\n\n")
				flusher.Flush()
			case event, open := <-events:
				if !open {
					return
				}
				b, err := json.Marshal(event)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "data: %s\n\n", b)
				flusher.Flush()
			}
		}
	}
}
