package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harborloop/demoday/internal/repository"
)

// Service is the budget ledger. It enforces the per-investor quota invariant:
// the sum of an investor's recorded amounts never exceeds their quota, even
// under concurrent commit attempts. The commitment total is always recomputed
// from the investment set rather than kept as a counter that could drift
// after partial writes.
type Service struct {
	investments InvestmentRepository
	investors   InvestorDirectory
	projects    ProjectDirectory
	stages      StageGate
	logger      *slog.Logger
	now         func() time.Time

	// locksMu guards locks; each entry serializes the read-then-write of a
	// single investor's commitment. Different investors proceed in parallel.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewService creates a budget ledger.
func NewService(investments InvestmentRepository, investors InvestorDirectory,
	projects ProjectDirectory, stages StageGate, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		investments: investments,
		investors:   investors,
		projects:    projects,
		stages:      stages,
		logger:      logger,
		now:         time.Now,
		locks:       make(map[string]*sync.Mutex),
	}
}

func (s *Service) accountLock(account string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[account]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[account] = mu
	}
	return mu
}

// Commitment returns the sum of all recorded investment amounts for account.
func (s *Service) Commitment(ctx context.Context, account string) (int64, error) {
	invs, err := s.investments.ListByAccount(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("listing investments for %s: %w", account, err)
	}
	var total int64
	for _, inv := range invs {
		total += inv.Amount
	}
	return total, nil
}

// TryCommit records an investment of amount from account into projectID.
// It is rejected, never clamped, when the amount is non-positive, the stage
// is not open for investment, either party is disabled, or the amount would
// push the investor's commitment past their quota.
func (s *Service) TryCommit(ctx context.Context, account string, projectID int64, amount int64) (*Investment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}

	current, err := s.stages.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stage: %w", err)
	}
	if !current.CanInvest() {
		return nil, fmt.Errorf("%w: stage is %s", ErrStageClosed, current)
	}

	mu := s.accountLock(account)
	mu.Lock()
	defer mu.Unlock()

	inv, err := s.investors.GetByUsername(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInvestorNotFound, account)
		}
		return nil, fmt.Errorf("getting investor %s: %w", account, err)
	}
	if !inv.Enabled {
		return nil, fmt.Errorf("%w: investor %s", ErrDisabled, account)
	}

	proj, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrProjectNotFound, projectID)
		}
		return nil, fmt.Errorf("getting project %d: %w", projectID, err)
	}
	if !proj.Enabled {
		return nil, fmt.Errorf("%w: project %d", ErrDisabled, projectID)
	}

	committed, err := s.Commitment(ctx, account)
	if err != nil {
		return nil, err
	}
	if committed+amount > inv.Quota {
		return nil, fmt.Errorf("%w: investor %s committed %d of %d, requested %d",
			ErrOverBudget, account, committed, inv.Quota, amount)
	}

	record := &Investment{
		Key:          uuid.NewString(),
		Account:      account,
		ProjectID:    projectID,
		Amount:       amount,
		InvestedAt:   s.now(),
		InvestorName: inv.Name,
		ProjectName:  proj.Name,
	}

	if err := s.investments.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return s.reconcile(ctx, record, err)
		}
		return nil, fmt.Errorf("creating investment: %w", err)
	}

	s.logger.Info("investment committed",
		"account", account, "project", projectID, "amount", amount,
		"committed", committed+amount, "quota", inv.Quota)
	return record, nil
}

// reconcile resolves a create whose outcome is unknown. The idempotency key
// tells us whether the write landed; only a confirmed miss surfaces the
// unavailability to the caller.
func (s *Service) reconcile(ctx context.Context, record *Investment, createErr error) (*Investment, error) {
	found, err := s.investments.FindByKey(ctx, record.Key)
	if err == nil {
		s.logger.Warn("investment create timed out but record landed",
			"account", record.Account, "key", record.Key)
		return found, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("reconciling investment %s: %w", record.Key, err)
	}
	return nil, fmt.Errorf("creating investment: %w", createErr)
}
