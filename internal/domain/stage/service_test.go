package stage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harborloop/demoday/internal/domain/stage"
	"github.com/harborloop/demoday/internal/repository/mocks"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestService_CurrentCachesWithinTTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}

	repo := &mocks.StageRepository{}
	repo.On("Current", ctx).Return("lock", nil).Once()

	svc := stage.NewService(repo, nil,
		stage.WithCacheTTL(time.Minute), stage.WithClock(clock.Now))

	for range 5 {
		current, err := svc.Current(ctx)
		require.NoError(t, err)
		require.Equal(t, stage.StageLock, current)
	}
	repo.AssertExpectations(t)
}

func TestService_CurrentRefreshesAfterTTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}

	repo := &mocks.StageRepository{}
	repo.On("Current", ctx).Return("lock", nil).Once()
	repo.On("Current", ctx).Return("investment", nil).Once()

	svc := stage.NewService(repo, nil,
		stage.WithCacheTTL(time.Minute), stage.WithClock(clock.Now))

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, stage.StageLock, current)

	clock.Advance(61 * time.Second)

	current, err = svc.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, stage.StageInvestment, current)
	repo.AssertExpectations(t)
}

func TestService_InvalidateDropsCache(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}

	repo := &mocks.StageRepository{}
	repo.On("Current", ctx).Return("lock", nil).Once()
	repo.On("Current", ctx).Return("investment", nil).Once()

	svc := stage.NewService(repo, nil,
		stage.WithCacheTTL(time.Hour), stage.WithClock(clock.Now))

	_, err := svc.Current(ctx)
	require.NoError(t, err)

	svc.Invalidate()

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, stage.StageInvestment, current)
	repo.AssertExpectations(t)
}

func TestService_CurrentRejectsUnknownStoredCode(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.StageRepository{}
	repo.On("Current", ctx).Return("selection", nil)

	svc := stage.NewService(repo, nil)
	_, err := svc.Current(ctx)
	require.ErrorIs(t, err, stage.ErrUnknownStage)
}

func TestService_TransitionForward(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.StageRepository{}
	repo.On("Current", ctx).Return("lock", nil).Once()
	repo.On("Set", ctx, "investment").Return(nil).Once()
	repo.On("Current", ctx).Return("investment", nil).Once()

	svc := stage.NewService(repo, nil)
	require.NoError(t, svc.TransitionTo(ctx, stage.StageInvestment, false))
	repo.AssertExpectations(t)
}

func TestService_TransitionSameStageIsNoop(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.StageRepository{}
	repo.On("Current", ctx).Return("investment", nil)

	svc := stage.NewService(repo, nil)
	require.NoError(t, svc.TransitionTo(ctx, stage.StageInvestment, false))
	repo.AssertNotCalled(t, "Set", ctx, "investment")
}

func TestService_BackwardTransitionRequiresForce(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.StageRepository{}
	repo.On("Current", ctx).Return("ended", nil)

	svc := stage.NewService(repo, nil)
	err := svc.TransitionTo(ctx, stage.StageInvestment, false)
	require.ErrorIs(t, err, stage.ErrInvalidTransition)
	repo.AssertNotCalled(t, "Set", ctx, "investment")
}

func TestService_ForcedBackwardTransition(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.StageRepository{}
	repo.On("Current", ctx).Return("ended", nil).Once()
	repo.On("Set", ctx, "investment").Return(nil).Once()
	repo.On("Current", ctx).Return("investment", nil).Once()

	svc := stage.NewService(repo, nil)
	require.NoError(t, svc.TransitionTo(ctx, stage.StageInvestment, true))
	repo.AssertExpectations(t)
}

func TestService_TransitionSkippingAStage(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.StageRepository{}
	repo.On("Current", ctx).Return("lock", nil).Once()
	repo.On("Set", ctx, "ended").Return(nil).Once()
	repo.On("Current", ctx).Return("ended", nil).Once()

	svc := stage.NewService(repo, nil)
	require.NoError(t, svc.TransitionTo(ctx, stage.StageEnded, false))
	repo.AssertExpectations(t)
}

func TestService_TransitionVerifiesReadback(t *testing.T) {
	ctx := context.Background()

	// The write "succeeds" but the store keeps serving the old stage.
	repo := &mocks.StageRepository{}
	repo.On("Current", ctx).Return("lock", nil)
	repo.On("Set", ctx, "investment").Return(nil)

	svc := stage.NewService(repo, nil)
	err := svc.TransitionTo(ctx, stage.StageInvestment, false)
	require.ErrorIs(t, err, stage.ErrInconsistent)
}

func TestService_TransitionUnknownTarget(t *testing.T) {
	svc := stage.NewService(&mocks.StageRepository{}, nil)
	err := svc.TransitionTo(context.Background(), stage.Stage("selection"), false)
	require.ErrorIs(t, err, stage.ErrUnknownStage)
}

// stallStageRepo holds its first read open until released, serving the code
// that was current when the read entered. Later reads and writes see the
// live value.
type stallStageRepo struct {
	mu      sync.Mutex
	code    string
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (r *stallStageRepo) Current(context.Context) (string, error) {
	r.mu.Lock()
	r.calls++
	first := r.calls == 1
	code := r.code
	r.mu.Unlock()

	if first {
		close(r.entered)
		<-r.release
	}
	return code, nil
}

func (r *stallStageRepo) Set(_ context.Context, code string) error {
	r.mu.Lock()
	r.code = code
	r.mu.Unlock()
	return nil
}

func TestService_SlowReadCannotResurrectReplacedStage(t *testing.T) {
	ctx := context.Background()

	repo := &stallStageRepo{
		code:    "investment",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := stage.NewService(repo, nil, stage.WithCacheTTL(time.Hour))

	type readResult struct {
		current stage.Stage
		err     error
	}
	read := make(chan readResult, 1)
	go func() {
		current, err := svc.Current(ctx)
		read <- readResult{current, err}
	}()

	// A transition completes while the first read is still in flight.
	<-repo.entered
	require.NoError(t, svc.TransitionTo(ctx, stage.StageEnded, false))
	close(repo.release)

	result := <-read
	require.NoError(t, result.err)
	require.Equal(t, stage.StageInvestment, result.current)

	// The stale in-flight read must not have repopulated the cache.
	current, err := svc.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, stage.StageEnded, current)
}

func TestStage_Parse(t *testing.T) {
	for _, code := range []string{"lock", "investment", "ended"} {
		parsed, err := stage.Parse(code)
		require.NoError(t, err)
		require.Equal(t, code, string(parsed))
	}

	_, err := stage.Parse("warmup")
	require.ErrorIs(t, err, stage.ErrUnknownStage)
}

func TestStage_Permissions(t *testing.T) {
	require.False(t, stage.StageLock.CanInvest())
	require.True(t, stage.StageInvestment.CanInvest())
	require.False(t, stage.StageEnded.CanInvest())

	require.True(t, stage.StageLock.AllowsTrafficSync())
	require.True(t, stage.StageInvestment.AllowsTrafficSync())
	require.False(t, stage.StageEnded.AllowsTrafficSync())
}
