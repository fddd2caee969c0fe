// Package traffic applies unique-visitor counts pushed by the external
// analytics pipeline onto project records.
package traffic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/harborloop/demoday/internal/domain/project"
	"github.com/harborloop/demoday/internal/repository"
)

var (
	// ErrSyncClosed indicates the event has ended and UV counts are final.
	ErrSyncClosed = errors.New("traffic sync closed")
	// ErrNonMonotonic indicates an update below the recorded UV count.
	ErrNonMonotonic = errors.New("uv count may not decrease")
)

// ProjectRepository provides project lookups and UV updates.
type ProjectRepository interface {
	Get(ctx context.Context, id int64) (*project.Project, error)
	UpdateUV(ctx context.Context, recordID string, uv int64) error
}

// StageGate reports whether traffic updates are currently accepted.
type StageGate interface {
	IsTrafficSyncAllowed(ctx context.Context) (bool, error)
}

// Service gates and applies UV updates.
type Service struct {
	projects ProjectRepository
	stages   StageGate
	logger   *slog.Logger

	// locksMu guards locks; each entry serializes the read-then-write for a
	// single project so racing pushes cannot settle on a lower count.
	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// NewService creates a traffic service.
func NewService(projects ProjectRepository, stages StageGate, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		projects: projects,
		stages:   stages,
		logger:   logger,
		locks:    make(map[int64]*sync.Mutex),
	}
}

func (s *Service) projectLock(projectID int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[projectID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[projectID] = mu
	}
	return mu
}

// Apply records a new cumulative UV count for a project. Counts are
// monotonically non-decreasing and frozen once the event has ended.
func (s *Service) Apply(ctx context.Context, projectID int64, uv int64) error {
	if uv < 0 {
		return fmt.Errorf("%w: got %d", repository.ErrInvalidInput, uv)
	}

	allowed, err := s.stages.IsTrafficSyncAllowed(ctx)
	if err != nil {
		return fmt.Errorf("reading stage: %w", err)
	}
	if !allowed {
		return ErrSyncClosed
	}

	mu := s.projectLock(projectID)
	mu.Lock()
	defer mu.Unlock()

	proj, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %d", project.ErrProjectNotFound, projectID)
		}
		return fmt.Errorf("getting project %d: %w", projectID, err)
	}
	if uv < proj.UV {
		return fmt.Errorf("%w: project %d has %d, got %d", ErrNonMonotonic, projectID, proj.UV, uv)
	}
	if uv == proj.UV {
		return nil
	}

	if err := s.projects.UpdateUV(ctx, proj.RecordID, uv); err != nil {
		return fmt.Errorf("updating uv for project %d: %w", projectID, err)
	}
	s.logger.Debug("uv updated", "project", projectID, "from", proj.UV, "to", uv)
	return nil
}
