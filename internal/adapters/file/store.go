// Package file implements ports.TraceStore on the local filesystem, one JSON
// file per trace. It backs the "show" subcommand's id lookup and works
// without any external service.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/seitsubo413/XQsim-library/pkg/domain"
)

// Store persists trace results as <id>.json under BasePath.
type Store struct {
	BasePath string
}

// New creates a Store rooted at basePath. An empty path defaults to
// ".xqsim/traces".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".xqsim", "traces")
	}
	return &Store{BasePath: basePath}
}

// Save writes the result atomically: temp file, fsync, rename. A crash mid-
// write leaves either the old file or none, never a truncated trace.
func (s *Store) Save(ctx context.Context, id string, res *domain.TraceResult) error {
	if id == "" {
		return fmt.Errorf("trace id cannot be empty")
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure trace directory: %w", err)
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal trace result: %w", err)
	}

	// Temp file in the same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+id+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write trace file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync trace file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close trace file: %w", err)
	}

	destPath := filepath.Join(s.BasePath, id+".json")
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to move trace file into place: %w", err)
	}
	return nil
}

// Load reads a stored result.
func (s *Store) Load(ctx context.Context, id string) (*domain.TraceResult, error) {
	if id == "" {
		return nil, fmt.Errorf("trace id cannot be empty")
	}

	data, err := os.ReadFile(filepath.Join(s.BasePath, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrTraceNotFound
		}
		return nil, fmt.Errorf("failed to read trace file: %w", err)
	}

	var res domain.TraceResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trace result: %w", err)
	}
	return &res, nil
}

// Delete removes the trace file. Deleting an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("trace id cannot be empty")
	}
	err := os.Remove(filepath.Join(s.BasePath, id+".json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete trace file: %w", err)
	}
	return nil
}

// List returns the stored trace IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list traces: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}
