package io

import (
	"os"
)

var _ FileIO = (*MediaFileSystem)(nil)

// MediaFileSystem is the default implementation of file io using the os package
type MediaFileSystem struct{}

// Stat is a wrapper around os.Stat
func (o *MediaFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// ReadDir is a wrapper around os.ReadDir
func (o *MediaFileSystem) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

// ReadFile is a wrapper around os.ReadFile
func (o *MediaFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile is a wrapper around os.WriteFile
func (o *MediaFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

// Rename is a wrapper around os.Rename
func (o *MediaFileSystem) Rename(source, target string) error {
	return os.Rename(source, target)
}

// MkdirAll is a wrapper around os.MkdirAll
func (o *MediaFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Remove is a wrapper around os.Remove. It never removes recursively.
func (o *MediaFileSystem) Remove(path string) error {
	return os.Remove(path)
}

func (o *MediaFileSystem) FileExists(path string) bool {
	_, err := o.Stat(path)
	return err == nil
}
