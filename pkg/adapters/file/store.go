package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
)

// Store implements ports.SnapshotStore using the local filesystem.
// Each graph is one file in BasePath, named after its id.
type Store struct {
	BasePath string
	Format   Format
}

// NewStore creates a Store. If basePath is empty, it defaults to
// ".weft/graphs". Snapshots are written as JSON unless format says otherwise.
func NewStore(basePath string, format Format) *Store {
	if basePath == "" {
		basePath = filepath.Join(".weft", "graphs")
	}
	if format == "" {
		format = FormatJSON
	}
	return &Store{BasePath: basePath, Format: format}
}

func (s *Store) path(graphID string) string {
	return filepath.Join(s.BasePath, graphID+s.Format.Ext())
}

func checkID(graphID string) error {
	if graphID == "" {
		return errors.New("graphID cannot be empty")
	}
	if strings.ContainsAny(graphID, `/\`) || graphID == "." || graphID == ".." {
		return fmt.Errorf("invalid graphID %q", graphID)
	}
	return nil
}

// Save writes the snapshot atomically: a temp file in the same directory is
// synced and then renamed over the destination.
func (s *Store) Save(ctx context.Context, graphID string, snap *domain.Snapshot) error {
	if err := checkID(graphID); err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure graph directory: %w", err)
	}

	data, err := Encode(snap, s.Format)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.BasePath, "tmp-"+graphID+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	dest := s.path(graphID)
	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to replace graph file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads a snapshot.
func (s *Store) Load(ctx context.Context, graphID string) (*domain.Snapshot, error) {
	if err := checkID(graphID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(graphID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrGraphNotFound
		}
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	return Decode(data, s.Format)
}

// Delete removes the snapshot file. Missing files are not an error.
func (s *Store) Delete(ctx context.Context, graphID string) error {
	if err := checkID(graphID); err != nil {
		return err
	}
	if err := os.Remove(s.path(graphID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete graph file: %w", err)
	}
	return nil
}

// List returns the ids of all stored graphs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}

	ext := s.Format.Ext()
	ids := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "tmp-") || filepath.Ext(name) != ext {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	sort.Strings(ids)
	return ids, nil
}
