package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harborloop/demoday/internal/repository"
)

const stageConfigKey = "current_stage"

// StageRepository stores the stage singleton in SQLite
type StageRepository struct {
	db *DB
}

// NewStageRepository creates a new StageRepository
func NewStageRepository(db *DB) *StageRepository {
	return &StageRepository{db: db}
}

// Current reads the stage code from the singleton config row
func (r *StageRepository) Current(ctx context.Context) (string, error) {
	var code string
	err := r.db.QueryRowContext(ctx,
		`SELECT config_value FROM config WHERE config_key = ?`, stageConfigKey).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("config row %s: %w", stageConfigKey, repository.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get stage: %w", err)
	}
	return code, nil
}

// Set overwrites the stage code on the singleton config row
func (r *StageRepository) Set(ctx context.Context, code string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (config_key, config_value) VALUES (?, ?)
		ON CONFLICT(config_key) DO UPDATE SET config_value = excluded.config_value
	`, stageConfigKey, code)
	if err != nil {
		return fmt.Errorf("failed to set stage: %w", err)
	}
	return nil
}
