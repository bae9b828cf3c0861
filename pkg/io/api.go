package io

import (
	"os"
)

// FileIO is an interface for the filesystem operations the scanner, the
// reconciliation pipeline, and the cleanup guard depend on. Implementations
// must treat Remove as non-recursive.
type FileIO interface {
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	Rename(source, target string) error
	MkdirAll(path string, perm os.FileMode) error
	Remove(path string) error
	FileExists(path string) bool
}
