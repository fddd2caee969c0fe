package ledger

import (
	"context"

	"github.com/harborloop/demoday/internal/domain/stage"
)

// InvestorAccount is the slice of an investor the ledger needs to gate a
// commit: identity, budget, and whether the account is allowed to act.
type InvestorAccount struct {
	Username string
	Name     string
	Quota    int64
	Enabled  bool
}

// ProjectInfo is the slice of a project the ledger needs to gate a commit.
type ProjectInfo struct {
	ID      int64
	Name    string
	Enabled bool
}

// InvestmentRepository provides persistence for investments.
type InvestmentRepository interface {
	Create(ctx context.Context, inv *Investment) error
	ListByAccount(ctx context.Context, account string) ([]Investment, error)
	FindByKey(ctx context.Context, key string) (*Investment, error)
}

// InvestorDirectory provides investor lookups.
type InvestorDirectory interface {
	GetByUsername(ctx context.Context, username string) (*InvestorAccount, error)
}

// ProjectDirectory provides project lookups.
type ProjectDirectory interface {
	Get(ctx context.Context, id int64) (*ProjectInfo, error)
}

// StageGate reports the current event stage.
type StageGate interface {
	Current(ctx context.Context) (stage.Stage, error)
}
