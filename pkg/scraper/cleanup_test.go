package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanupProtectedRootSkipsFilesystem(t *testing.T) {
	counting := &countingFS{FileIO: newTestFS()}
	s := newTestScraper(counting, newFakeCatalog())

	for _, root := range []string{"/media/inbox", "/media/tv", "/media/movies", "/media/inbox/"} {
		result := s.CleanupSourceDir(context.Background(), root)
		assert.False(t, result.Deleted, root)
		assert.Equal(t, CleanupProtected, result.Reason, root)
	}
	// The guard must decide on the path alone, before any probe.
	assert.Equal(t, 0, counting.calls)
}

func TestCleanupKeepsDirWithVideo(t *testing.T) {
	fs := newTestFS()
	fs.AddFile("/media/inbox/pack/leftover.MKV", []byte("video"))

	s := newTestScraper(fs, newFakeCatalog())
	result := s.CleanupSourceDir(context.Background(), "/media/inbox/pack")

	assert.False(t, result.Deleted)
	assert.Equal(t, CleanupHasVideo, result.Reason)
	assert.True(t, fs.FileExists("/media/inbox/pack/leftover.MKV"))
}

func TestCleanupKeepsDirWithOtherFiles(t *testing.T) {
	fs := newTestFS()
	fs.AddFile("/media/inbox/pack/readme.txt", []byte("notes"))

	s := newTestScraper(fs, newFakeCatalog())
	result := s.CleanupSourceDir(context.Background(), "/media/inbox/pack")

	assert.False(t, result.Deleted)
	assert.Equal(t, CleanupNotEmpty, result.Reason)
}

func TestCleanupDeletesEmptyDir(t *testing.T) {
	fs := newTestFS()
	fs.MkdirAll("/media/inbox/pack", 0o755)

	s := newTestScraper(fs, newFakeCatalog())
	result := s.CleanupSourceDir(context.Background(), "/media/inbox/pack")

	assert.True(t, result.Deleted)
	assert.Equal(t, CleanupDeleted, result.Reason)
	assert.False(t, fs.FileExists("/media/inbox/pack"))
}

func TestCleanupSwallowsIOErrors(t *testing.T) {
	s := newTestScraper(newTestFS(), newFakeCatalog())
	result := s.CleanupSourceDir(context.Background(), "/media/inbox/missing")

	assert.False(t, result.Deleted)
	assert.Equal(t, CleanupError, result.Reason)
}
