package bitable

import (
	"context"
	"fmt"

	"github.com/harborloop/demoday/internal/repository"
)

// Config table field names. The stage lives in a single row keyed
// current_stage; only the stage controller writes it.
const (
	fieldConfigKey   = "config_key"
	fieldConfigValue = "config_value"

	stageConfigKey = "current_stage"
)

// StageRepository reads and writes the stage singleton over the store.
type StageRepository struct {
	client *Client
	table  string
}

// NewStageRepository creates a StageRepository.
func NewStageRepository(client *Client, table string) *StageRepository {
	return &StageRepository{client: client, table: table}
}

func (r *StageRepository) find(ctx context.Context) (Record, error) {
	records, err := r.client.ListRecords(ctx, r.table)
	if err != nil {
		return Record{}, storeErr(err)
	}
	for _, rec := range records {
		if rec.String(fieldConfigKey) == stageConfigKey {
			return rec, nil
		}
	}
	return Record{}, fmt.Errorf("config row %s: %w", stageConfigKey, repository.ErrNotFound)
}

// Current reads the stage code from the singleton config row.
func (r *StageRepository) Current(ctx context.Context) (string, error) {
	rec, err := r.find(ctx)
	if err != nil {
		return "", err
	}
	return rec.String(fieldConfigValue), nil
}

// Set overwrites the stage code on the singleton config row.
func (r *StageRepository) Set(ctx context.Context, code string) error {
	rec, err := r.find(ctx)
	if err != nil {
		return err
	}
	err = r.client.UpdateRecord(ctx, r.table, rec.ID, map[string]any{fieldConfigValue: code})
	if err != nil {
		return storeErr(err)
	}
	return nil
}
