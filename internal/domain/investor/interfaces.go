package investor

import (
	"context"

	"github.com/harborloop/demoday/internal/domain/ledger"
)

// Repository provides persistence for investors.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*Investor, error)
	List(ctx context.Context) ([]Investor, error)
}

// InvestmentRepository provides read access to an investor's investments.
type InvestmentRepository interface {
	ListByAccount(ctx context.Context, account string) ([]ledger.Investment, error)
}
