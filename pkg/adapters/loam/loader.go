package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/weft/pkg/domain"
)

// watchPattern matches every document kind Loam can parse.
const watchPattern = "**/*.{md,json,yaml,yml}"

// Loader reads a graph from a Loam repository: one document per node.
type Loader struct {
	Repo *loam.TypedRepository[NodeMetadata]
}

// New creates a Loam loader over an existing typed repository.
func New(repo *loam.TypedRepository[NodeMetadata]) *Loader {
	return &Loader{Repo: repo}
}

// Open initializes a strict, read-only Loam repository at dir.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve graph directory: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open loam repository: %w", err)
	}
	return New(loam.NewTypedRepository[NodeMetadata](repo)), nil
}

// Load lists every document and assembles a snapshot. Nodes are ordered by
// id; connections follow node order, then wire order within each document.
func (l *Loader) Load(ctx context.Context) (*domain.Snapshot, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	type entry struct {
		id   string
		meta NodeMetadata
	}
	seen := make(map[string]string, len(docs))
	entries := make([]entry, 0, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)
		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: collision detected: id %q is defined in both %q and %q",
				domain.ErrDuplicateNode, id, existing, doc.ID)
		}
		if doc.Data.Type == "" {
			return nil, fmt.Errorf("%w: document %q has no type", domain.ErrInvalidDefinition, doc.ID)
		}
		seen[id] = doc.ID
		entries = append(entries, entry{id: id, meta: doc.Data})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	snap := &domain.Snapshot{
		Nodes:       make([]domain.NodeRecord, 0, len(entries)),
		Connections: []domain.Connection{},
	}
	for _, e := range entries {
		snap.Nodes = append(snap.Nodes, domain.NodeRecord{
			ID:     e.id,
			Type:   e.meta.Type,
			Config: e.meta.Config,
			Inputs: e.meta.Inputs,
		})
		for _, w := range e.meta.Wires {
			snap.Connections = append(snap.Connections, domain.Connection{
				Source: e.id,
				Target: trimExtension(w.To),
				Port:   w.Port,
			})
		}
	}
	return snap, nil
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, watchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Loam debounces; one pending reload is enough.
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
