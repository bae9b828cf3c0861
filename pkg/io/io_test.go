package io

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemFileSystemReadDir(t *testing.T) {
	fs := NewMemFileSystem("/media/Inbox")
	fs.AddFile("/media/Inbox/a.mkv", []byte("video"))
	fs.AddFile("/media/Inbox/sub/b.mkv", []byte("video"))

	entries, err := fs.ReadDir("/media/Inbox")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.mkv", entries[0].Name())
	assert.False(t, entries[0].IsDir())
	assert.Equal(t, "sub", entries[1].Name())
	assert.True(t, entries[1].IsDir())
}

func TestMemFileSystemRename(t *testing.T) {
	fs := NewMemFileSystem("/media/Inbox", "/media/TV/Show")
	fs.AddFile("/media/Inbox/a.mkv", []byte("video"))

	require.NoError(t, fs.Rename("/media/Inbox/a.mkv", "/media/TV/Show/a.mkv"))
	assert.False(t, fs.FileExists("/media/Inbox/a.mkv"))
	assert.True(t, fs.FileExists("/media/TV/Show/a.mkv"))

	err := fs.Rename("/media/Inbox/a.mkv", "/media/TV/Show/b.mkv")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMemFileSystemRemove(t *testing.T) {
	fs := NewMemFileSystem("/media/Inbox/sub")
	fs.AddFile("/media/Inbox/sub/a.mkv", []byte("video"))

	// non-empty directories are never removed
	assert.Error(t, fs.Remove("/media/Inbox/sub"))

	require.NoError(t, fs.Remove("/media/Inbox/sub/a.mkv"))
	require.NoError(t, fs.Remove("/media/Inbox/sub"))
	assert.False(t, fs.FileExists("/media/Inbox/sub"))
}

func TestMemFileSystemWriteRequiresParent(t *testing.T) {
	fs := NewMemFileSystem("/media")
	err := fs.WriteFile("/media/missing/a.nfo", []byte("x"), 0o644)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, fs.MkdirAll("/media/missing", 0o755))
	assert.NoError(t, fs.WriteFile("/media/missing/a.nfo", []byte("x"), 0o644))
}
