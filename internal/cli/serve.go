package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/pkg/adapters/file"
	httpadapter "github.com/aretw0/weft/pkg/adapters/http"
	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/session"
)

const shutdownTimeout = 5 * time.Second

// Backend is the snapshot persistence selected by configuration.
type Backend struct {
	Store  ports.SnapshotStore
	Locker ports.DistributedLocker
	redis  *redis.Store
}

// OpenBackend returns a redis store with a distributed lock when a redis
// address is configured, and a directory of JSON files otherwise.
func OpenBackend(cfg config.Config) *Backend {
	if cfg.RedisAddr == "" {
		return &Backend{Store: file.NewStore(cfg.StoreDir, file.FormatJSON)}
	}
	rs := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithTTL(cfg.SnapshotTTL))
	return &Backend{
		Store:  rs,
		Locker: redis.NewLocker(rs.Client(), "weft:"),
		redis:  rs,
	}
}

// Updates reports graph ids saved by any replica. It is nil without redis.
func (b *Backend) Updates(ctx context.Context) (<-chan string, error) {
	if b.redis == nil {
		return nil, nil
	}
	return b.redis.Updates(ctx)
}

// Close releases the backend connection, if any.
func (b *Backend) Close() error {
	if b.redis == nil {
		return nil
	}
	return b.redis.Close()
}

// Manager wraps the backend in a session manager.
func (b *Backend) Manager(cfg config.Config, logger *slog.Logger) *session.Manager {
	opts := []session.Option{session.WithLogger(logger), session.WithLockTTL(cfg.LockTTL)}
	if b.Locker != nil {
		opts = append(opts, session.WithLocker(b.Locker))
	}
	return session.NewManager(b.Store, opts...)
}

// NewServeHandler mounts the graph API at / and the metrics of gatherer at
// /metrics. A nil gatherer omits /metrics.
func NewServeHandler(eng ports.GraphEngine, mgr *session.Manager, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	mux.Handle("/", httpadapter.NewHandler(eng,
		httpadapter.WithSessions(mgr),
		httpadapter.WithLogger(logger),
	))
	return mux
}

// ServeOptions configures Serve.
type ServeOptions struct {
	// GraphID, when set, is resumed on start and checkpointed on shutdown.
	GraphID string
	// Follow restores GraphID whenever another replica saves it.
	Follow bool
}

// Serve runs the HTTP API until ctx is done.
func Serve(ctx context.Context, eng ports.GraphEngine, backend *Backend, gatherer prometheus.Gatherer, cfg config.Config, opts ServeOptions, logger *slog.Logger) error {
	mgr := backend.Manager(cfg, logger)

	if opts.GraphID != "" {
		if err := mgr.Resume(ctx, opts.GraphID, eng); err != nil && !errors.Is(err, domain.ErrGraphNotFound) {
			return err
		}
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewServeHandler(eng, mgr, gatherer, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting weft server", "address", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if opts.GraphID != "" {
			if _, err := mgr.Checkpoint(shutdownCtx, opts.GraphID, eng); err != nil {
				logger.Error("Checkpoint on shutdown failed", "graph_id", opts.GraphID, "err", err)
			}
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		logger.Info("weft server stopped")
		return nil
	})
	if opts.Follow && opts.GraphID != "" {
		g.Go(func() error {
			return follow(ctx, backend, mgr, eng, opts.GraphID, logger)
		})
	}
	return g.Wait()
}

// follow restores graphID into eng each time the backend reports a save.
func follow(ctx context.Context, backend *Backend, mgr *session.Manager, eng ports.GraphEngine, graphID string, logger *slog.Logger) error {
	updates, err := backend.Updates(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to graph updates: %w", err)
	}
	if updates == nil {
		logger.Warn("Graph following needs a redis backend; ignoring")
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-updates:
			if !ok {
				return nil
			}
			if id != graphID {
				continue
			}
			if err := mgr.Resume(ctx, graphID, eng); err != nil {
				logger.Error("Follow restore failed", "graph_id", graphID, "err", err)
				continue
			}
			logger.Info("Graph restored from update", "graph_id", graphID)
		}
	}
}
