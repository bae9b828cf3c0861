package scraper

import (
	"context"

	"github.com/yfmeii/media-scraper-web/config"
	"github.com/yfmeii/media-scraper-web/pkg/scanner"
)

// CleanupReason explains what the cleanup guard decided.
type CleanupReason string

const (
	// CleanupProtected means the directory is a media root and was not probed.
	CleanupProtected CleanupReason = "protected"
	// CleanupHasVideo means remaining video files keep the directory alive.
	CleanupHasVideo CleanupReason = "has-video"
	// CleanupNotEmpty means non-video leftovers keep the directory alive.
	CleanupNotEmpty CleanupReason = "not-empty"
	// CleanupDeleted means the empty directory was removed.
	CleanupDeleted CleanupReason = "deleted"
	// CleanupError means an I/O failure was swallowed; nothing was deleted.
	CleanupError CleanupReason = "error"
)

// CleanupResult reports the guard's decision for one directory.
type CleanupResult struct {
	Deleted bool          `json:"deleted"`
	Reason  CleanupReason `json:"reason"`
}

// CleanupSourceDir removes a source directory emptied by file moves, if it is
// safe to do so. Protected roots are rejected before any filesystem call;
// directories still holding a video file, or any non-video leftovers, are
// kept. I/O failures are swallowed; cleanup never fails the enclosing
// operation.
func (s *Scraper) CleanupSourceDir(_ context.Context, dirPath string) CleanupResult {
	normalized := config.NormalizePath(dirPath)
	for _, root := range s.library.ProtectedRoots() {
		if normalized == root {
			return CleanupResult{Deleted: false, Reason: CleanupProtected}
		}
	}

	entries, err := s.fs.ReadDir(dirPath)
	if err != nil {
		return CleanupResult{Deleted: false, Reason: CleanupError}
	}

	for _, entry := range entries {
		if scanner.IsVideoFile(entry.Name()) {
			return CleanupResult{Deleted: false, Reason: CleanupHasVideo}
		}
	}

	if len(entries) == 0 {
		if err := s.fs.Remove(dirPath); err != nil {
			return CleanupResult{Deleted: false, Reason: CleanupError}
		}
		return CleanupResult{Deleted: true, Reason: CleanupDeleted}
	}

	return CleanupResult{Deleted: false, Reason: CleanupNotEmpty}
}
