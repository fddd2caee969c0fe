package project_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/harborloop/demoday/internal/domain/investor"
	"github.com/harborloop/demoday/internal/domain/ledger"
	"github.com/harborloop/demoday/internal/domain/project"
	"github.com/harborloop/demoday/internal/domain/stage"
	"github.com/harborloop/demoday/internal/repository"
	"github.com/harborloop/demoday/internal/repository/mocks"
)

type stubStage struct {
	current stage.Stage
}

func (s stubStage) Current(context.Context) (stage.Stage, error) { return s.current, nil }

func TestBoard_RanksAndAttachesBackers(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("List", mock.Anything).Return([]project.Project{
		{ID: 1, Name: "Orbital", UV: 10, Enabled: true},
		{ID: 2, Name: "Lattice", UV: 30, Enabled: true},
	}, nil)
	investments := &mocks.InvestmentRepository{}
	investments.On("List", mock.Anything).Return([]ledger.Investment{
		{Account: "ada", ProjectID: 1, Amount: 40, InvestorName: "Ada"},
		{Account: "bob", ProjectID: 1, Amount: 10, InvestorName: "Bob"},
	}, nil)
	investors := &mocks.InvestorRepository{}
	investors.On("List", mock.Anything).Return([]investor.Investor{
		{Username: "ada", Name: "Ada", Title: "Partner", Avatar: "https://img/ada"},
		{Username: "bob", Name: "Bob"},
	}, nil)

	svc := project.NewService(repo, investments, investors, stubStage{stage.StageInvestment}, nil)

	board, err := svc.Board(ctx)
	require.NoError(t, err)
	require.Equal(t, stage.StageInvestment, board.Stage)
	require.Len(t, board.Entries, 2)

	// Project 1 holds all capital: 0.4*0 + 0.6*1 beats 0.4*1 + 0.6*0.
	first := board.Entries[0]
	require.Equal(t, int64(1), first.Project.ID)
	require.Equal(t, 1, first.Rank)
	require.Equal(t, int64(50), first.Investment)
	require.Len(t, first.Backers, 2)
	require.Equal(t, "Ada", first.Backers[0].Name)
	require.Equal(t, "Partner", first.Backers[0].Title)
	require.Equal(t, "https://img/ada", first.Backers[0].Avatar)
	require.Equal(t, int64(40), first.Backers[0].Amount)

	require.Empty(t, board.Entries[1].Backers)
}

func TestBoard_ExcludesDisabledProjects(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("List", mock.Anything).Return([]project.Project{
		{ID: 1, Name: "Orbital", UV: 10, Enabled: true},
		{ID: 2, Name: "Lattice", UV: 30, Enabled: false},
	}, nil)
	investments := &mocks.InvestmentRepository{}
	investments.On("List", mock.Anything).Return(nil, nil)
	investors := &mocks.InvestorRepository{}
	investors.On("List", mock.Anything).Return(nil, nil)

	svc := project.NewService(repo, investments, investors, stubStage{stage.StageLock}, nil)

	board, err := svc.Board(ctx)
	require.NoError(t, err)
	require.Len(t, board.Entries, 1)
	require.Equal(t, int64(1), board.Entries[0].Project.ID)
}

func TestBoard_PropagatesFetchErrors(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("List", mock.Anything).Return(nil, repository.ErrUnavailable)
	investments := &mocks.InvestmentRepository{}
	investments.On("List", mock.Anything).Return(nil, nil)
	investors := &mocks.InvestorRepository{}
	investors.On("List", mock.Anything).Return(nil, nil)

	svc := project.NewService(repo, investments, investors, stubStage{stage.StageLock}, nil)

	_, err := svc.Board(ctx)
	require.ErrorIs(t, err, repository.ErrUnavailable)
}

func TestGet_MapsNotFound(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, int64(99)).Return(nil, repository.ErrNotFound)

	svc := project.NewService(repo, &mocks.InvestmentRepository{},
		&mocks.InvestorRepository{}, stubStage{stage.StageLock}, nil)

	_, err := svc.Get(ctx, 99)
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestGet_ReturnsProject(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, int64(7)).Return(&project.Project{ID: 7, Name: "Orbital"}, nil)

	svc := project.NewService(repo, &mocks.InvestmentRepository{},
		&mocks.InvestorRepository{}, stubStage{stage.StageLock}, nil)

	proj, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "Orbital", proj.Name)
}
