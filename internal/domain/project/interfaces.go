package project

import (
	"context"

	"github.com/harborloop/demoday/internal/domain/investor"
	"github.com/harborloop/demoday/internal/domain/ledger"
	"github.com/harborloop/demoday/internal/domain/stage"
)

// Repository provides persistence for projects.
type Repository interface {
	Get(ctx context.Context, id int64) (*Project, error)
	List(ctx context.Context) ([]Project, error)
}

// InvestmentRepository provides read access to the investment set.
type InvestmentRepository interface {
	List(ctx context.Context) ([]ledger.Investment, error)
}

// InvestorRepository provides read access to the investor roster.
type InvestorRepository interface {
	List(ctx context.Context) ([]investor.Investor, error)
}

// StageGate reports the current event stage.
type StageGate interface {
	Current(ctx context.Context) (stage.Stage, error)
}
