package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/weft/internal/presentation/graph"
	"github.com/aretw0/weft/internal/presentation/tui"
	"github.com/aretw0/weft/pkg/domain"
	graphpkg "github.com/aretw0/weft/pkg/graph"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/registry"
)

// RunOptions configures Run.
type RunOptions struct {
	Sets  []Assignment
	Watch bool
	// Styled enables colors in the status table.
	Styled bool
	// Timeout bounds the wait for async computes after each load. Zero waits
	// until ctx is done.
	Timeout time.Duration
}

// Run loads the graph from src into eng, applies the assignments, waits for
// async computes to settle and prints the node table to w. In watch mode it
// repeats on every change of src until ctx is done; load failures are then
// logged instead of returned.
func Run(ctx context.Context, eng ports.GraphEngine, src Source, opts RunOptions, w io.Writer, logger *slog.Logger) error {
	if !opts.Watch {
		return runOnce(ctx, eng, src, opts, w)
	}

	changes, err := src.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch graph: %w", err)
	}
	if err := runOnce(ctx, eng, src, opts, w); err != nil {
		logger.Error("Graph load failed", "err", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Info("Change detected, reloading graph")
			if err := runOnce(ctx, eng, src, opts, w); err != nil {
				logger.Error("Graph reload failed", "err", err)
			}
		}
	}
}

func runOnce(ctx context.Context, eng ports.GraphEngine, src Source, opts RunOptions, w io.Writer) error {
	snap, err := src.Load(ctx)
	if err != nil {
		return err
	}
	if err := eng.Restore(ctx, snap); err != nil {
		return err
	}
	if err := Apply(ctx, eng, opts.Sets); err != nil {
		return err
	}

	waitCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	if err := eng.WaitIdle(waitCtx); err != nil {
		return fmt.Errorf("waiting for async computes: %w", err)
	}

	views, err := eng.Nodes(ctx)
	if err != nil {
		return err
	}
	tui.RenderNodes(w, views, opts.Styled)
	return nil
}

// Validate loads the graph from src and checks it against reg without
// running any compute.
func Validate(ctx context.Context, src ports.GraphLoader, reg *registry.Registry) (*domain.Snapshot, error) {
	snap, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := graphpkg.Validate(reg, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Mermaid renders the graph from src as a Mermaid flowchart.
func Mermaid(ctx context.Context, src ports.GraphLoader, reg *registry.Registry) (string, error) {
	snap, err := Validate(ctx, src, reg)
	if err != nil {
		return "", err
	}
	return graph.GenerateMermaid(snap, reg, nil), nil
}
