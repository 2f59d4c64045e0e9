package template

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrObjectNotFound is returned by ObjectStore implementations when the
// requested key does not exist.
var ErrObjectNotFound = fmt.Errorf("object not found")

// ObjectStore abstracts the theme file storage backing the template
// loader. Production wires an S3-compatible bucket; tests use the
// in-memory implementation.
type ObjectStore interface {
	// Get returns the object content for key, or ErrObjectNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns the keys under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// MemoryObjectStore is a map-backed ObjectStore. Safe for concurrent
// use.
type MemoryObjectStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryObjectStore creates an empty store.
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{objects: make(map[string][]byte)}
}

// Put stores content under key, overwriting any previous value.
func (s *MemoryObjectStore) Put(key string, content []byte) {
	s.mu.Lock()
	s.objects[key] = content
	s.mu.Unlock()
}

// PutString stores string content under key.
func (s *MemoryObjectStore) PutString(key, content string) {
	s.Put(key, []byte(content))
}

// Get implements ObjectStore.
func (s *MemoryObjectStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

// List implements ObjectStore.
func (s *MemoryObjectStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// DirObjectStore serves theme objects from a directory tree on local
// disk, with object keys as slash-separated paths relative to the root.
// It backs single-node deployments and local theme development; an
// S3-compatible gateway implements the same interface behind a CDN.
type DirObjectStore struct {
	root string
}

// NewDirObjectStore creates a store rooted at the given directory.
// Panics if root is empty, as this indicates a programming error in the
// application setup.
func NewDirObjectStore(root string) *DirObjectStore {
	if root == "" {
		panic("object store root cannot be empty")
	}
	return &DirObjectStore{root: root}
}

// Get implements ObjectStore.
func (s *DirObjectStore) Get(_ context.Context, key string) ([]byte, error) {
	content, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("reading object %s: %w", key, err)
	}
	return content, nil
}

// List implements ObjectStore.
func (s *DirObjectStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing objects under %s: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}
