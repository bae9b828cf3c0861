package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yfmeii/media-scraper-web/config"
	"github.com/yfmeii/media-scraper-web/pkg/tasks"
	"github.com/yfmeii/media-scraper-web/pkg/tmdb"
)

// BatchItemResult is one item's outcome inside a batch run.
type BatchItemResult struct {
	Item
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// BatchResult summarizes a finished batch.
type BatchResult struct {
	TaskID  string            `json:"taskId"`
	Results []BatchItemResult `json:"results"`
	Done    int               `json:"processed"`
	Failed  int               `json:"failed"`
}

// Batch processes a list of items sequentially under one tracked task,
// publishing progress to the bus. Items already inside the library get a
// metadata refresh instead of a move; one item's failure never stops the
// rest. A fixed delay between items keeps the catalog API happy.
func (s *Scraper) Batch(ctx context.Context, items []Item) BatchResult {
	task := s.registry.Create(tasks.TypeProcess, fmt.Sprintf("batch processing %d item(s)", len(items)))
	s.registry.Start(task.ID)
	s.registry.AppendLog(task.ID, fmt.Sprintf("starting batch with %d item(s)", len(items)))
	s.bus.Emit(task.ID, tasks.EventStart, 0, len(items), "", fmt.Sprintf("processing %d item(s)", len(items)))

	batch := BatchResult{TaskID: task.ID, Results: make([]BatchItemResult, 0, len(items))}

	for i, item := range items {
		s.registry.AppendLog(task.ID, fmt.Sprintf("processing %s", item.SourcePath))
		s.bus.Emit(task.ID, tasks.EventProgress, i, len(items), item.SourcePath, fmt.Sprintf("processing %s", item.SourcePath))

		result := s.processBatchItem(ctx, item)
		batch.Results = append(batch.Results, BatchItemResult{Item: item, Success: result.Success, Message: result.Message})
		if result.Success {
			batch.Done++
		} else {
			batch.Failed++
			s.registry.AppendLog(task.ID, fmt.Sprintf("failed %s: %s", item.SourcePath, result.Message))
			s.bus.Emit(task.ID, tasks.EventError, i+1, len(items), item.SourcePath, result.Message)
		}

		progress := tasks.BatchProgress(batch.Done, batch.Failed, len(items))
		s.registry.Update(task.ID, progress.Percent, "")
		if result.Success {
			s.bus.Emit(task.ID, tasks.EventProgress, i+1, len(items), item.SourcePath, fmt.Sprintf("completed %s", item.SourcePath))
		}

		if i < len(items)-1 && s.batchDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.batchDelay):
			}
		}
	}

	success := batch.Failed < len(items) || len(items) == 0
	message := fmt.Sprintf("completed: %d, failed: %d", batch.Done, batch.Failed)
	s.registry.Complete(task.ID, success, message)
	s.bus.Emit(task.ID, tasks.EventComplete, len(items), len(items), "", message)
	s.registry.Cleanup()

	return batch
}

// processBatchItem routes one item: items already under a library root only
// need their metadata refreshed, inbox items get the full move.
func (s *Scraper) processBatchItem(ctx context.Context, item Item) Result {
	if item.TMDBID == 0 {
		return Result{Success: false, Message: "no catalog id provided"}
	}

	switch item.Kind {
	case tmdb.MediaTypeTV:
		if s.underRoot(item.SourcePath, s.library.TV) {
			return s.RefreshMetadata(ctx, tmdb.MediaTypeTV, item.SourcePath, item.TMDBID, 0, 0)
		}
		return s.ProcessTV(ctx, item)
	case tmdb.MediaTypeMovie:
		if s.underRoot(item.SourcePath, s.library.Movies) {
			return s.RefreshMetadata(ctx, tmdb.MediaTypeMovie, item.SourcePath, item.TMDBID, 0, 0)
		}
		return s.ProcessMovie(ctx, item)
	default:
		return Result{Success: false, Message: fmt.Sprintf("unknown kind %q", item.Kind)}
	}
}

func (s *Scraper) underRoot(path, root string) bool {
	return strings.HasPrefix(config.NormalizePath(path), config.NormalizePath(root)+"/")
}
