package investor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harborloop/demoday/internal/domain/investor"
	"github.com/harborloop/demoday/internal/domain/ledger"
	"github.com/harborloop/demoday/internal/repository"
	"github.com/harborloop/demoday/internal/repository/mocks"
)

func seededInvestor() *investor.Investor {
	return &investor.Investor{
		ID:       1,
		Username: "ada",
		Password: "hunter2",
		Name:     "Ada",
		Title:    "Partner",
		Quota:    100,
		Enabled:  true,
	}
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.InvestorRepository{}
	repo.On("GetByUsername", ctx, "ada").Return(seededInvestor(), nil)
	investments := &mocks.InvestmentRepository{}
	investments.On("ListByAccount", ctx, "ada").Return([]ledger.Investment{
		{Account: "ada", ProjectID: 7, ProjectName: "Orbital", Amount: 30, InvestedAt: time.Now()},
	}, nil)

	svc := investor.NewService(repo, investments, nil)
	profile, err := svc.Login(ctx, "ada", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "ada", profile.Username)
	require.Equal(t, int64(30), profile.Committed)
	require.Equal(t, int64(70), profile.Remaining)
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.InvestorRepository{}
	repo.On("GetByUsername", ctx, "ada").Return(seededInvestor(), nil)

	svc := investor.NewService(repo, &mocks.InvestmentRepository{}, nil)
	_, err := svc.Login(ctx, "ada", "wrong")
	require.ErrorIs(t, err, investor.ErrInvalidCredentials)
}

func TestLogin_UnknownUsername(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.InvestorRepository{}
	repo.On("GetByUsername", ctx, "ghost").Return(nil, repository.ErrNotFound)

	svc := investor.NewService(repo, &mocks.InvestmentRepository{}, nil)
	_, err := svc.Login(ctx, "ghost", "whatever")
	// Unknown accounts and bad passwords are indistinguishable to the caller.
	require.ErrorIs(t, err, investor.ErrInvalidCredentials)
}

func TestLogin_DisabledInvestor(t *testing.T) {
	ctx := context.Background()

	disabled := seededInvestor()
	disabled.Enabled = false
	repo := &mocks.InvestorRepository{}
	repo.On("GetByUsername", ctx, "ada").Return(disabled, nil)

	svc := investor.NewService(repo, &mocks.InvestmentRepository{}, nil)
	_, err := svc.Login(ctx, "ada", "hunter2")
	require.ErrorIs(t, err, investor.ErrInvalidCredentials)
}

func TestProfile_HistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	repo := &mocks.InvestorRepository{}
	repo.On("GetByUsername", ctx, "ada").Return(seededInvestor(), nil)
	investments := &mocks.InvestmentRepository{}
	investments.On("ListByAccount", ctx, "ada").Return([]ledger.Investment{
		{Account: "ada", ProjectID: 1, ProjectName: "First", Amount: 10, InvestedAt: base},
		{Account: "ada", ProjectID: 2, ProjectName: "Third", Amount: 30, InvestedAt: base.Add(2 * time.Hour)},
		{Account: "ada", ProjectID: 3, ProjectName: "Second", Amount: 20, InvestedAt: base.Add(time.Hour)},
	}, nil)

	svc := investor.NewService(repo, investments, nil)
	profile, err := svc.Profile(ctx, "ada")
	require.NoError(t, err)

	require.Equal(t, int64(60), profile.Committed)
	require.Equal(t, int64(40), profile.Remaining)
	require.Len(t, profile.History, 3)
	require.Equal(t, "Third", profile.History[0].ProjectName)
	require.Equal(t, "Second", profile.History[1].ProjectName)
	require.Equal(t, "First", profile.History[2].ProjectName)
}

func TestProfile_UnknownInvestor(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.InvestorRepository{}
	repo.On("GetByUsername", ctx, "ghost").Return(nil, repository.ErrNotFound)

	svc := investor.NewService(repo, &mocks.InvestmentRepository{}, nil)
	_, err := svc.Profile(ctx, "ghost")
	require.ErrorIs(t, err, investor.ErrInvestorNotFound)
}
