// Package ops exposes operator tooling over MCP: stage control, ranking
// inspection and ledger audits. It is wired by cmd/ops and speaks stdio.
package ops

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harborloop/demoday/internal/domain/investor"
	"github.com/harborloop/demoday/internal/domain/ledger"
	"github.com/harborloop/demoday/internal/domain/project"
	"github.com/harborloop/demoday/internal/domain/stage"
)

// StageService defines stage operations needed by the operator tools.
type StageService interface {
	Current(ctx context.Context) (stage.Stage, error)
	TransitionTo(ctx context.Context, target stage.Stage, force bool) error
	Invalidate()
}

// ProjectRepository provides read access to the project roster.
type ProjectRepository interface {
	List(ctx context.Context) ([]project.Project, error)
}

// InvestorRepository provides read access to the investor roster.
type InvestorRepository interface {
	List(ctx context.Context) ([]investor.Investor, error)
}

// InvestmentRepository provides read access to the investment set.
type InvestmentRepository interface {
	List(ctx context.Context) ([]ledger.Investment, error)
}

// Services contains everything the operator tools need.
type Services struct {
	Stages      StageService
	Projects    ProjectRepository
	Investors   InvestorRepository
	Investments InvestmentRepository
}

// Config contains server configuration.
type Config struct {
	Services Services
	Logger   *slog.Logger
}

// NewServer creates an MCP server with the operator tools registered.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "demoday-ops",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Logger: cfg.Logger,
	})

	registerTools(server, cfg.Services, cfg.Logger)

	return server
}
