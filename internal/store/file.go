package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/bingokit/drawsync/internal/draw"
)

// FileGateway persists the store as a JSON record list on the local
// filesystem. Writes go through a temp file and rename so a crashed run
// never leaves a half-written store behind.
type FileGateway struct {
	path   string
	logger *zap.Logger
}

// NewFileGateway returns a gateway rooted at path.
func NewFileGateway(path string, logger *zap.Logger) (*FileGateway, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileGateway{path: path, logger: logger}, nil
}

// Load reads the persisted record list. Every failure mode degrades to an
// empty store: records that fail validation are skipped individually.
func (g *FileGateway) Load(_ context.Context) draw.Store {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			g.logger.Warn("Store unreadable; starting empty", zap.String("path", g.path), zap.Error(err))
		}
		return draw.NewStore()
	}

	var raw []draw.Record
	if err := json.Unmarshal(data, &raw); err != nil {
		g.logger.Warn("Store unparsable; starting empty", zap.String("path", g.path), zap.Error(err))
		return draw.NewStore()
	}

	s := draw.NewStore()
	for _, r := range raw {
		rec, err := draw.NewRecord(r.Period, r.Date, r.Balls, r.Super)
		if err != nil {
			g.logger.Warn("Skipping invalid persisted record",
				zap.String("period", r.Period), zap.Error(err))
			continue
		}
		s[rec.Period] = rec
	}
	return s
}

// Save writes the store atomically.
func (g *FileGateway) Save(_ context.Context, s draw.Store) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create store dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".store-*")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := os.Rename(tmpName, g.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store %s: %w", g.path, err)
	}
	return nil
}
