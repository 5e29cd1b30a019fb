package archive

import (
	"context"
	"fmt"
	"sync"
)

// MemoryArchive keeps payloads in memory. Development and test use only.
type MemoryArchive struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryArchive constructs an empty in-memory archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{data: make(map[string][]byte)}
}

// Archive stores a copy of the payload and returns a memory:// URI.
func (a *MemoryArchive) Archive(_ context.Context, path string, data []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data[path] = append([]byte(nil), data...)
	return fmt.Sprintf("memory://%s", path), nil
}

// Get returns the stored payload for a path.
func (a *MemoryArchive) Get(path string) ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.data[path]
	return data, ok
}
