package cmd

import (
	"context"
	"log/slog"
	"os"

	"go.uber.org/fx"

	"github.com/sheetcore/reactive-sheets/config"
	"github.com/sheetcore/reactive-sheets/internal/domain/cellstore"
	"github.com/sheetcore/reactive-sheets/internal/domain/graph"
	"github.com/sheetcore/reactive-sheets/internal/domain/lockpool"
	"github.com/sheetcore/reactive-sheets/internal/engine"
	"github.com/sheetcore/reactive-sheets/internal/evaluator"
	"github.com/sheetcore/reactive-sheets/internal/server"
	"github.com/sheetcore/reactive-sheets/internal/service"
)

// NewApp wires the full dependency graph: configuration, the lock pool,
// dependency graph, cell store and CEL evaluator feed the engine, the
// engine is exposed through the Sheet service, and the service is handed
// to the TCP server.
func NewApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			ProvideLogger,
			ProvideLockPool,
			graph.New,
			cellstore.New,
			evaluator.New,
			ProvideEngine,
			ProvideServer,
		),
		service.Module,
		fx.Invoke(registerServerHooks),
	)
}

// ProvideLogger builds the structured logger every package below logs
// through.
func ProvideLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// ProvideLockPool builds the adaptive per-cell lock pool from the loaded
// configuration's tunables (spec.md §4.2).
func ProvideLockPool(cfg *config.Config) *lockpool.Pool {
	return lockpool.New(cfg.LockPoolConfig())
}

// ProvideEngine wires the reactive core: cell store, dependency graph,
// lock pool and evaluator.
func ProvideEngine(store *cellstore.Store, g *graph.Graph, pool *lockpool.Pool, eval *evaluator.Evaluator, log *slog.Logger) *engine.Engine {
	return engine.New(store, g, pool, eval, log)
}

// ProvideServer builds the TCP listener that fronts the Sheet service.
func ProvideServer(cfg *config.Config, sheet service.Sheet, log *slog.Logger) *server.Server {
	return server.New(cfg.ListenAddr, sheet, log)
}

// registerServerHooks starts the listener on fx.App start and closes it
// on fx.App stop.
func registerServerHooks(lc fx.Lifecycle, srv *server.Server, pool *lockpool.Pool) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			pool.Close()
			return srv.Stop(ctx)
		},
	})
}
