package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/harborloop/demoday/internal/domain/investor"
	"github.com/harborloop/demoday/internal/domain/ledger"
	"github.com/harborloop/demoday/internal/domain/project"
)

// ProjectRepository mocks a project store.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Get(ctx context.Context, id int64) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context) ([]project.Project, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) UpdateUV(ctx context.Context, recordID string, uv int64) error {
	args := m.Called(ctx, recordID, uv)
	return args.Error(0)
}

// InvestorRepository mocks an investor store.
type InvestorRepository struct {
	mock.Mock
}

func (m *InvestorRepository) GetByUsername(ctx context.Context, username string) (*investor.Investor, error) {
	args := m.Called(ctx, username)
	if inv, ok := args.Get(0).(*investor.Investor); ok {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvestorRepository) List(ctx context.Context) ([]investor.Investor, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]investor.Investor); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// InvestmentRepository mocks an investment store.
type InvestmentRepository struct {
	mock.Mock
}

func (m *InvestmentRepository) Create(ctx context.Context, inv *ledger.Investment) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *InvestmentRepository) List(ctx context.Context) ([]ledger.Investment, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]ledger.Investment); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvestmentRepository) ListByAccount(ctx context.Context, account string) ([]ledger.Investment, error) {
	args := m.Called(ctx, account)
	if list, ok := args.Get(0).([]ledger.Investment); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvestmentRepository) FindByKey(ctx context.Context, key string) (*ledger.Investment, error) {
	args := m.Called(ctx, key)
	if inv, ok := args.Get(0).(*ledger.Investment); ok {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}

// StageRepository mocks a stage store.
type StageRepository struct {
	mock.Mock
}

func (m *StageRepository) Current(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *StageRepository) Set(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// InvestorDirectory is a mock for ledger.InvestorDirectory.
type InvestorDirectory struct {
	mock.Mock
}

func (m *InvestorDirectory) GetByUsername(ctx context.Context, username string) (*ledger.InvestorAccount, error) {
	args := m.Called(ctx, username)
	if acct, ok := args.Get(0).(*ledger.InvestorAccount); ok {
		return acct, args.Error(1)
	}
	return nil, args.Error(1)
}

// ProjectDirectory is a mock for ledger.ProjectDirectory.
type ProjectDirectory struct {
	mock.Mock
}

func (m *ProjectDirectory) Get(ctx context.Context, id int64) (*ledger.ProjectInfo, error) {
	args := m.Called(ctx, id)
	if info, ok := args.Get(0).(*ledger.ProjectInfo); ok {
		return info, args.Error(1)
	}
	return nil, args.Error(1)
}
