package stage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const defaultCacheTTL = 60 * time.Second

// Service controls the event stage: it serves reads through a short-lived
// cache and serializes transitions globally.
type Service struct {
	repo   Repository
	logger *slog.Logger
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	cached    Stage
	fetchedAt time.Time
	// gen counts invalidations. A refresh only installs its result when no
	// invalidation happened between its store read and its cache write,
	// keeping a slow in-flight read from resurrecting a stage that a
	// transition just replaced.
	gen uint64

	// transitionMu serializes TransitionTo; stage switches gate all other
	// write traffic and must be single-writer.
	transitionMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithCacheTTL overrides the staleness window for cached stage reads.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a stage controller.
func NewService(repo Repository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:   repo,
		logger: logger,
		ttl:    defaultCacheTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the current stage, served from the cache while it is
// within the staleness window.
func (s *Service) Current(ctx context.Context) (Stage, error) {
	s.mu.Lock()
	if s.cached.Valid() && s.now().Sub(s.fetchedAt) < s.ttl {
		cached := s.cached
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	return s.refresh(ctx)
}

// refresh reads the stage record, bypassing the cache, and repopulates it.
// The result is discarded from the cache (but still returned) when the cache
// was invalidated while the read was in flight.
func (s *Service) refresh(ctx context.Context) (Stage, error) {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	code, err := s.repo.Current(ctx)
	if err != nil {
		return "", fmt.Errorf("reading stage record: %w", err)
	}
	current, err := Parse(code)
	if err != nil {
		return "", fmt.Errorf("stage record holds %q: %w", code, err)
	}

	s.mu.Lock()
	if s.gen == gen {
		s.cached = current
		s.fetchedAt = s.now()
	}
	s.mu.Unlock()

	return current, nil
}

// Invalidate drops the cached stage so the next read observes the store.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = ""
	s.fetchedAt = time.Time{}
	s.gen++
	s.mu.Unlock()
}

// TransitionTo moves the event to target. Only forward transitions are
// accepted unless force is set; a forced transition is an administrative
// override and is logged as such. After persisting, the stage record is
// re-read and verified against the requested value.
func (s *Service) TransitionTo(ctx context.Context, target Stage, force bool) error {
	if !target.Valid() {
		return ErrUnknownStage
	}

	s.transitionMu.Lock()
	defer s.transitionMu.Unlock()

	current, err := s.refresh(ctx)
	if err != nil {
		return err
	}
	if current == target {
		return nil
	}
	if !current.CanTransitionTo(target) {
		if !force {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
		}
		s.logger.Warn("administrative override: forcing backward stage transition",
			"from", current, "to", target)
	}

	if err := s.repo.Set(ctx, string(target)); err != nil {
		return fmt.Errorf("persisting stage %s: %w", target, err)
	}
	s.Invalidate()

	verified, err := s.refresh(ctx)
	if err != nil {
		return err
	}
	if verified != target {
		return fmt.Errorf("%w: wrote %s, read back %s", ErrInconsistent, target, verified)
	}

	s.logger.Info("stage transition", "from", current, "to", target, "forced", force)
	return nil
}

// IsInvestmentAllowed reports whether investment writes are accepted now.
func (s *Service) IsInvestmentAllowed(ctx context.Context) (bool, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return false, err
	}
	return current.CanInvest(), nil
}

// IsTrafficSyncAllowed reports whether unique-visitor updates are accepted now.
func (s *Service) IsTrafficSyncAllowed(ctx context.Context) (bool, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return false, err
	}
	return current.AllowsTrafficSync(), nil
}
