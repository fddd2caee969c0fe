package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/harborloop/demoday/internal/domain/investor"
	"github.com/harborloop/demoday/internal/domain/ledger"
	"github.com/harborloop/demoday/internal/domain/ranking"
	"github.com/harborloop/demoday/internal/domain/stage"
	"github.com/harborloop/demoday/internal/repository"
)

// Service assembles the project board.
type Service struct {
	repo        Repository
	investments InvestmentRepository
	investors   InvestorRepository
	stages      StageGate
	logger      *slog.Logger
}

// NewService creates a project service.
func NewService(repo Repository, investments InvestmentRepository,
	investors InvestorRepository, stages StageGate, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		investments: investments,
		investors:   investors,
		stages:      stages,
		logger:      logger,
	}
}

// Backer is one investment into a project, denormalized for display.
type Backer struct {
	Name   string `json:"name"`
	Title  string `json:"title,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Amount int64  `json:"amount"`
}

// BoardEntry is a ranked project together with its backers.
type BoardEntry struct {
	Project    Project  `json:"project"`
	Rank       int      `json:"rank"`
	Score      float64  `json:"score"`
	Investment int64    `json:"investment"`
	Backers    []Backer `json:"backers"`
}

// Board is the ranked project listing for the current stage.
type Board struct {
	Stage   stage.Stage  `json:"stage"`
	Entries []BoardEntry `json:"entries"`
}

// Board fetches projects, investments, investors and the current stage in
// parallel, ranks the enabled projects and attaches backer details.
func (s *Service) Board(ctx context.Context) (*Board, error) {
	var (
		projects    []Project
		investments []ledger.Investment
		investors   []investor.Investor
		current     stage.Stage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		projects, err = s.repo.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		investments, err = s.investments.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		investors, err = s.investors.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		current, err = s.stages.Current(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading board data: %w", err)
	}

	byAccount := make(map[string]investor.Investor, len(investors))
	for _, inv := range investors {
		byAccount[inv.Username] = inv
	}
	backersByProject := make(map[int64][]Backer)
	for _, inv := range investments {
		backer := Backer{Name: inv.InvestorName, Amount: inv.Amount}
		if profile, ok := byAccount[inv.Account]; ok {
			backer.Title = profile.Title
			backer.Avatar = profile.Avatar
		}
		backersByProject[inv.ProjectID] = append(backersByProject[inv.ProjectID], backer)
	}

	totals := make(map[int64]int64, len(projects))
	for _, inv := range investments {
		totals[inv.ProjectID] += inv.Amount
	}
	byID := make(map[int64]Project, len(projects))
	candidates := make([]ranking.Candidate, 0, len(projects))
	for _, p := range projects {
		if !p.Enabled {
			continue
		}
		byID[p.ID] = p
		candidates = append(candidates, ranking.Candidate{
			ID:         p.ID,
			UV:         p.UV,
			Investment: totals[p.ID],
		})
	}

	ranked := ranking.Rank(candidates, current)
	entries := make([]BoardEntry, 0, len(ranked))
	for _, entry := range ranked {
		entries = append(entries, BoardEntry{
			Project:    byID[entry.ID],
			Rank:       entry.Rank,
			Score:      entry.Score,
			Investment: entry.Investment,
			Backers:    backersByProject[entry.ID],
		})
	}

	return &Board{Stage: current, Entries: entries}, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Project, error) {
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrProjectNotFound, id)
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}
