package investor

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/harborloop/demoday/internal/repository"
)

// Service handles investor login and profile reads.
type Service struct {
	repo        Repository
	investments InvestmentRepository
	logger      *slog.Logger
}

// NewService creates an investor service.
func NewService(repo Repository, investments InvestmentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, investments: investments, logger: logger}
}

// Login checks credentials and returns the investor's profile.
func (s *Service) Login(ctx context.Context, username, password string) (*Profile, error) {
	inv, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("getting investor %s: %w", username, err)
	}
	if subtle.ConstantTimeCompare([]byte(inv.Password), []byte(password)) != 1 || !inv.Enabled {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.buildProfile(ctx, inv)
	if err != nil {
		return nil, err
	}
	s.logger.Info("investor logged in", "account", username)
	return profile, nil
}

// Profile returns an investor's profile with ledger totals and history.
func (s *Service) Profile(ctx context.Context, username string) (*Profile, error) {
	inv, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInvestorNotFound, username)
		}
		return nil, fmt.Errorf("getting investor %s: %w", username, err)
	}
	return s.buildProfile(ctx, inv)
}

func (s *Service) buildProfile(ctx context.Context, inv *Investor) (*Profile, error) {
	invs, err := s.investments.ListByAccount(ctx, inv.Username)
	if err != nil {
		return nil, fmt.Errorf("listing investments for %s: %w", inv.Username, err)
	}

	history := make([]HistoryEntry, 0, len(invs))
	var committed int64
	for _, record := range invs {
		committed += record.Amount
		history = append(history, HistoryEntry{
			ProjectID:   record.ProjectID,
			ProjectName: record.ProjectName,
			Amount:      record.Amount,
			InvestedAt:  record.InvestedAt.UnixMilli(),
		})
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].InvestedAt > history[j].InvestedAt
	})

	return &Profile{
		Investor:  *inv,
		Committed: committed,
		Remaining: inv.Quota - committed,
		History:   history,
	}, nil
}
