package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/harborloop/demoday/internal/auth"
	"github.com/harborloop/demoday/internal/bitable"
	"github.com/harborloop/demoday/internal/config"
	"github.com/harborloop/demoday/internal/domain/investor"
	"github.com/harborloop/demoday/internal/domain/ledger"
	"github.com/harborloop/demoday/internal/domain/project"
	"github.com/harborloop/demoday/internal/domain/stage"
	"github.com/harborloop/demoday/internal/domain/traffic"
	"github.com/harborloop/demoday/internal/sqlite"
	"github.com/harborloop/demoday/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	repos, cleanup, err := openStore(cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	stageSvc := stage.NewService(repos.stages, logger, stage.WithCacheTTL(cfg.Stage.CacheTTL()))
	ledgerSvc := ledger.NewService(repos.investments,
		ledgerInvestors{repos.investors}, ledgerProjects{repos.projects}, stageSvc, logger)
	projectSvc := project.NewService(repos.projects, repos.investments, repos.investors, stageSvc, logger)
	investorSvc := investor.NewService(repos.investors, repos.investments, logger)
	trafficSvc := traffic.NewService(repos.projects, stageSvc, logger)

	if cfg.Auth.Secret == "" {
		logger.Error("auth secret is not configured")
		os.Exit(1)
	}
	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, auth.WithTTL(cfg.Auth.TokenTTL()))

	router := transport.NewServer(transport.Services{
		Projects:  projectSvc,
		Investors: investorSvc,
		Ledger:    ledgerSvc,
		Stages:    stageSvc,
		Traffic:   trafficSvc,
		Tokens:    tokens,
	}, tokens, cfg.Auth.AdminToken, cfg.Auth.PipelineToken, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "store", cfg.Store.Backend)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

// stores bundles the record store repositories behind a single backend
// choice. Both backends satisfy these shapes; each domain service consumes
// the narrow slice it declares itself.
type stores struct {
	projects    projectStore
	investors   investorStore
	investments investmentStore
	stages      stageStore
}

type projectStore interface {
	Get(ctx context.Context, id int64) (*project.Project, error)
	List(ctx context.Context) ([]project.Project, error)
	UpdateUV(ctx context.Context, recordID string, uv int64) error
}

type investorStore interface {
	GetByUsername(ctx context.Context, username string) (*investor.Investor, error)
	List(ctx context.Context) ([]investor.Investor, error)
}

type investmentStore interface {
	Create(ctx context.Context, inv *ledger.Investment) error
	List(ctx context.Context) ([]ledger.Investment, error)
	ListByAccount(ctx context.Context, account string) ([]ledger.Investment, error)
	FindByKey(ctx context.Context, key string) (*ledger.Investment, error)
}

type stageStore interface {
	Current(ctx context.Context) (string, error)
	Set(ctx context.Context, code string) error
}

// ledgerInvestors narrows the investor store to the account view the ledger
// gates commits on. Store errors pass through untouched.
type ledgerInvestors struct {
	store investorStore
}

func (a ledgerInvestors) GetByUsername(ctx context.Context, username string) (*ledger.InvestorAccount, error) {
	inv, err := a.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &ledger.InvestorAccount{
		Username: inv.Username,
		Name:     inv.Name,
		Quota:    inv.Quota,
		Enabled:  inv.Enabled,
	}, nil
}

// ledgerProjects narrows the project store the same way.
type ledgerProjects struct {
	store projectStore
}

func (a ledgerProjects) Get(ctx context.Context, id int64) (*ledger.ProjectInfo, error) {
	proj, err := a.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ledger.ProjectInfo{ID: proj.ID, Name: proj.Name, Enabled: proj.Enabled}, nil
}

func openStore(cfg config.StoreConfig, logger *slog.Logger) (*stores, func(), error) {
	switch cfg.Backend {
	case "bitable":
		client := bitable.NewClient(cfg.Bitable.ClientConfig(), logger)
		tables := cfg.Bitable.Tables
		return &stores{
			projects:    bitable.NewProjectRepository(client, tables.Projects),
			investors:   bitable.NewInvestorRepository(client, tables.Investors),
			investments: bitable.NewInvestmentRepository(client, tables.Investments),
			stages:      bitable.NewStageRepository(client, tables.Config),
		}, func() {}, nil

	case "sqlite":
		if err := ensureDBDir(cfg.SQLite.Path); err != nil {
			return nil, nil, fmt.Errorf("prepare database path: %w", err)
		}
		db, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return &stores{
			projects:    sqlite.NewProjectRepository(db),
			investors:   sqlite.NewInvestorRepository(db),
			investments: sqlite.NewInvestmentRepository(db),
			stages:      sqlite.NewStageRepository(db),
		}, func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
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
