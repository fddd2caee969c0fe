package bitable

import (
	"errors"
	"fmt"

	"github.com/harborloop/demoday/internal/repository"
)

// Tables holds the per-entity table identifiers within the store app.
type Tables struct {
	Projects    string `yaml:"projects" env:"DEMODAY_TABLE_PROJECTS"`
	Investors   string `yaml:"investors" env:"DEMODAY_TABLE_INVESTORS"`
	Investments string `yaml:"investments" env:"DEMODAY_TABLE_INVESTMENTS"`
	Config      string `yaml:"config" env:"DEMODAY_TABLE_CONFIG"`
}

// storeErr translates adapter errors into the repository error contract.
func storeErr(err error) error {
	if errors.Is(err, ErrUnavailable) {
		return fmt.Errorf("%w: %w", repository.ErrUnavailable, err)
	}
	if errors.Is(err, ErrRejected) {
		return fmt.Errorf("%w: %w", repository.ErrInvalidInput, err)
	}
	return err
}
