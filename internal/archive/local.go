// Package archive persists raw provider payloads so a run can be replayed
// or audited after the fact.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalArchive writes payloads under a base directory and returns file:// URIs.
type LocalArchive struct {
	baseDir string
}

// NewLocalArchive validates the base directory, creating it if needed.
func NewLocalArchive(baseDir string) (*LocalArchive, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("archive base directory is required")
	}
	info, err := os.Stat(baseDir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(baseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create archive directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat archive directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("archive path %s is not a directory", baseDir)
	}
	return &LocalArchive{baseDir: baseDir}, nil
}

// Archive writes one payload and returns its file:// URI.
func (a *LocalArchive) Archive(_ context.Context, path string, data []byte) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("archive path is required")
	}

	fullPath := filepath.Join(a.baseDir, path)

	// Reject anything that escapes the base directory.
	cleanBase := filepath.Clean(a.baseDir)
	cleanFull := filepath.Clean(fullPath)
	if !strings.HasPrefix(cleanFull, cleanBase+string(filepath.Separator)) {
		return "", fmt.Errorf("archive path %q escapes base directory", path)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", fmt.Errorf("create archive subdirectory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o600); err != nil {
		return "", fmt.Errorf("write archive file: %w", err)
	}
	return fmt.Sprintf("file://%s", fullPath), nil
}
