// Command ops runs the operator tool server over stdio. It talks to the
// same record store as the HTTP server and exposes stage control, ranking
// inspection and ledger audits as MCP tools.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harborloop/demoday/internal/bitable"
	"github.com/harborloop/demoday/internal/config"
	"github.com/harborloop/demoday/internal/domain/stage"
	"github.com/harborloop/demoday/internal/ops"
	"github.com/harborloop/demoday/internal/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr to keep stdout clean for JSON-RPC.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	services, cleanup, err := buildServices(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := ops.NewServer(ops.Config{
		Services: *services,
		Logger:   logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting operator tools", "store", cfg.Store.Backend)
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func buildServices(cfg config.Config, logger *slog.Logger) (*ops.Services, func(), error) {
	switch cfg.Store.Backend {
	case "bitable":
		client := bitable.NewClient(cfg.Store.Bitable.ClientConfig(), logger)
		tables := cfg.Store.Bitable.Tables
		stageRepo := bitable.NewStageRepository(client, tables.Config)
		return &ops.Services{
			Stages:      stage.NewService(stageRepo, logger, stage.WithCacheTTL(cfg.Stage.CacheTTL())),
			Projects:    bitable.NewProjectRepository(client, tables.Projects),
			Investors:   bitable.NewInvestorRepository(client, tables.Investors),
			Investments: bitable.NewInvestmentRepository(client, tables.Investments),
		}, func() {}, nil

	case "sqlite":
		db, err := sqlite.New(cfg.Store.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return &ops.Services{
			Stages:      stage.NewService(sqlite.NewStageRepository(db), logger, stage.WithCacheTTL(cfg.Stage.CacheTTL())),
			Projects:    sqlite.NewProjectRepository(db),
			Investors:   sqlite.NewInvestorRepository(db),
			Investments: sqlite.NewInvestmentRepository(db),
		}, func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
