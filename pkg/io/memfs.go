package io

import (
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

var _ FileIO = (*MemFileSystem)(nil)

// MemFileSystem is an in-memory FileIO used by tests across packages, in the
// spirit of testing/fstest but with the mutation operations the pipeline
// needs. Paths are slash-separated and compared literally.
type MemFileSystem struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool
}

// NewMemFileSystem creates an empty in-memory filesystem with the given
// directories pre-created.
func NewMemFileSystem(dirs ...string) *MemFileSystem {
	m := &MemFileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
	for _, d := range dirs {
		m.mkdirAll(d)
	}
	return m
}

// AddFile writes a file, creating parent directories.
func (m *MemFileSystem) AddFile(p string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAll(path.Dir(p))
	m.files[clean(p)] = content
}

func clean(p string) string {
	return strings.TrimRight(path.Clean(p), "/")
}

func (m *MemFileSystem) mkdirAll(p string) {
	p = clean(p)
	for p != "/" && p != "." && p != "" {
		m.dirs[p] = true
		p = path.Dir(p)
	}
}

func (m *MemFileSystem) Stat(p string) (os.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	if content, ok := m.files[p]; ok {
		return memFileInfo{name: path.Base(p), size: int64(len(content))}, nil
	}
	if m.dirs[p] {
		return memFileInfo{name: path.Base(p), dir: true}, nil
	}
	return nil, &os.PathError{Op: "stat", Path: p, Err: os.ErrNotExist}
}

func (m *MemFileSystem) ReadDir(p string) ([]os.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	if !m.dirs[p] {
		return nil, &os.PathError{Op: "readdir", Path: p, Err: os.ErrNotExist}
	}

	seen := map[string]os.DirEntry{}
	prefix := p + "/"
	for f, content := range m.files {
		if child, ok := immediateChild(f, prefix); ok {
			seen[child] = memDirEntry{info: memFileInfo{name: child, size: int64(len(content))}}
		}
	}
	for d := range m.dirs {
		if child, ok := immediateChild(d, prefix); ok {
			seen[child] = memDirEntry{info: memFileInfo{name: child, dir: true}}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]os.DirEntry, len(names))
	for i, name := range names {
		entries[i] = seen[name]
	}
	return entries, nil
}

func immediateChild(p, prefix string) (string, bool) {
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(p, prefix)
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

func (m *MemFileSystem) ReadFile(p string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[clean(p)]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: p, Err: os.ErrNotExist}
	}
	return content, nil
}

func (m *MemFileSystem) WriteFile(p string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	if !m.dirs[path.Dir(p)] {
		return &os.PathError{Op: "open", Path: p, Err: os.ErrNotExist}
	}
	m.files[p] = data
	return nil
}

func (m *MemFileSystem) Rename(source, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	source, target = clean(source), clean(target)
	content, ok := m.files[source]
	if !ok {
		return &os.PathError{Op: "rename", Path: source, Err: os.ErrNotExist}
	}
	if !m.dirs[path.Dir(target)] {
		return &os.PathError{Op: "rename", Path: target, Err: os.ErrNotExist}
	}
	delete(m.files, source)
	m.files[target] = content
	return nil
}

func (m *MemFileSystem) MkdirAll(p string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAll(p)
	return nil
}

func (m *MemFileSystem) Remove(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	if _, ok := m.files[p]; ok {
		delete(m.files, p)
		return nil
	}
	if !m.dirs[p] {
		return &os.PathError{Op: "remove", Path: p, Err: os.ErrNotExist}
	}

	prefix := p + "/"
	for f := range m.files {
		if strings.HasPrefix(f, prefix) {
			return &os.PathError{Op: "remove", Path: p, Err: os.ErrExist}
		}
	}
	for d := range m.dirs {
		if strings.HasPrefix(d, prefix) {
			return &os.PathError{Op: "remove", Path: p, Err: os.ErrExist}
		}
	}
	delete(m.dirs, p)
	return nil
}

func (m *MemFileSystem) FileExists(p string) bool {
	_, err := m.Stat(p)
	return err == nil
}

type memFileInfo struct {
	name string
	size int64
	dir  bool
}

func (fi memFileInfo) Name() string { return fi.name }
func (fi memFileInfo) Size() int64  { return fi.size }
func (fi memFileInfo) Mode() os.FileMode {
	if fi.dir {
		return os.ModeDir | 0o755
	}
	return 0o644
}
func (fi memFileInfo) ModTime() time.Time { return time.Time{} }
func (fi memFileInfo) IsDir() bool        { return fi.dir }
func (fi memFileInfo) Sys() any           { return nil }

type memDirEntry struct {
	info memFileInfo
}

func (de memDirEntry) Name() string               { return de.info.name }
func (de memDirEntry) IsDir() bool                { return de.info.dir }
func (de memDirEntry) Type() os.FileMode          { return de.info.Mode().Type() }
func (de memDirEntry) Info() (os.FileInfo, error) { return de.info, nil }
