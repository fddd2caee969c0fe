package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/harborloop/demoday/internal/domain/investor"
	"github.com/harborloop/demoday/internal/domain/ledger"
	"github.com/harborloop/demoday/internal/domain/project"
	"github.com/harborloop/demoday/internal/domain/stage"
	"github.com/harborloop/demoday/internal/repository/mocks"
)

func stageService(t *testing.T, code string) *stage.Service {
	t.Helper()
	repo := &mocks.StageRepository{}
	repo.On("Current", mock.Anything).Return(code, nil)
	repo.On("Set", mock.Anything, mock.Anything).Return(nil)
	return stage.NewService(repo, nil)
}

func TestGetStageHandler(t *testing.T) {
	services := Services{Stages: stageService(t, "investment")}

	_, out, err := getStageHandler(services)(context.Background(), nil, struct{}{})
	require.NoError(t, err)
	require.Equal(t, "investment", out.Code)
	require.True(t, out.CanInvest)
	require.True(t, out.TrafficAllowed)
}

func TestSetStageHandler_RejectsUnknownCode(t *testing.T) {
	services := Services{Stages: stageService(t, "lock")}

	_, _, err := setStageHandler(services, nil)(context.Background(), nil, setStageInput{Stage: "selection"})
	require.ErrorIs(t, err, stage.ErrUnknownStage)
}

func TestSetStageHandler_BackwardNeedsForce(t *testing.T) {
	services := Services{Stages: stageService(t, "ended")}

	_, _, err := setStageHandler(services, nil)(context.Background(), nil, setStageInput{Stage: "lock"})
	require.ErrorIs(t, err, stage.ErrInvalidTransition)
}

func TestInvalidateStageHandler(t *testing.T) {
	services := Services{Stages: stageService(t, "lock")}

	_, out, err := invalidateStageHandler(services)(context.Background(), nil, struct{}{})
	require.NoError(t, err)
	require.True(t, out.Invalidated)
}

func TestGetRankingsHandler(t *testing.T) {
	projects := &mocks.ProjectRepository{}
	projects.On("List", mock.Anything).Return([]project.Project{
		{ID: 1, Name: "Orbital", UV: 10, Enabled: true},
		{ID: 2, Name: "Lattice", UV: 30, Enabled: true},
	}, nil)
	investments := &mocks.InvestmentRepository{}
	investments.On("List", mock.Anything).Return([]ledger.Investment{
		{Account: "ada", ProjectID: 1, Amount: 40},
	}, nil)

	services := Services{
		Stages:      stageService(t, "investment"),
		Projects:    projects,
		Investments: investments,
	}

	_, out, err := getRankingsHandler(services)(context.Background(), nil, struct{}{})
	require.NoError(t, err)
	require.Equal(t, "investment", out.Stage)
	require.Len(t, out.Rankings, 2)
	require.Equal(t, int64(1), out.Rankings[0].ProjectID)
	require.Equal(t, int64(40), out.Rankings[0].Investment)
}

func TestVerifyBudgetsHandler_FlagsViolations(t *testing.T) {
	investors := &mocks.InvestorRepository{}
	investors.On("List", mock.Anything).Return([]investor.Investor{
		{Username: "ada", Name: "Ada", Quota: 100},
		{Username: "bob", Name: "Bob", Quota: 50},
	}, nil)
	investments := &mocks.InvestmentRepository{}
	investments.On("List", mock.Anything).Return([]ledger.Investment{
		{Account: "ada", ProjectID: 1, Amount: 60},
		{Account: "ada", ProjectID: 2, Amount: 40},
		{Account: "bob", ProjectID: 1, Amount: 70},
	}, nil)

	services := Services{Investors: investors, Investments: investments}

	_, out, err := verifyBudgetsHandler(services)(context.Background(), nil, struct{}{})
	require.NoError(t, err)
	require.Equal(t, 1, out.Violations)
	require.Len(t, out.Investors, 2)

	require.Equal(t, "ada", out.Investors[0].Account)
	require.Equal(t, int64(100), out.Investors[0].Committed)
	require.False(t, out.Investors[0].OverBudget)

	require.Equal(t, "bob", out.Investors[1].Account)
	require.Equal(t, int64(70), out.Investors[1].Committed)
	require.Equal(t, int64(-20), out.Investors[1].Remaining)
	require.True(t, out.Investors[1].OverBudget)
}
