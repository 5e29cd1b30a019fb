package store

import (
	"context"
	"sync"

	"github.com/bingokit/drawsync/internal/draw"
)

// MemoryGateway holds the store in memory. Test use only.
type MemoryGateway struct {
	mu      sync.RWMutex
	current draw.Store
	saves   int
	saveErr error
}

// NewMemoryGateway returns an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{current: draw.NewStore()}
}

// FailSavesWith makes every subsequent Save return err.
func (g *MemoryGateway) FailSavesWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saveErr = err
}

// Load returns a copy of the held store.
func (g *MemoryGateway) Load(_ context.Context) draw.Store {
	g.mu.RLock()
	defer g.mu.RUnlock()
	cp := make(draw.Store, len(g.current))
	for k, v := range g.current {
		cp[k] = v
	}
	return cp
}

// Save replaces the held store.
func (g *MemoryGateway) Save(_ context.Context, s draw.Store) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.saveErr != nil {
		return g.saveErr
	}
	cp := make(draw.Store, len(s))
	for k, v := range s {
		cp[k] = v
	}
	g.current = cp
	g.saves++
	return nil
}

// Saves reports how many successful Save calls happened.
func (g *MemoryGateway) Saves() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.saves
}
