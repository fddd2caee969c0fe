package bitable

import (
	"context"
	"fmt"

	"github.com/harborloop/demoday/internal/domain/investor"
	"github.com/harborloop/demoday/internal/repository"
)

// Investor table field names.
const (
	fieldInvestorID   = "investor_id"
	fieldUsername     = "username"
	fieldPassword     = "password"
	fieldInvestorName = "name"
	fieldTitle        = "title"
	fieldAvatarURL    = "avatar_url"
	fieldQuota        = "quota"
)

// InvestorRepository manages investor records over the store.
type InvestorRepository struct {
	client *Client
	table  string
}

// NewInvestorRepository creates an InvestorRepository.
func NewInvestorRepository(client *Client, table string) *InvestorRepository {
	return &InvestorRepository{client: client, table: table}
}

// GetByUsername retrieves an investor by account via a table scan.
func (r *InvestorRepository) GetByUsername(ctx context.Context, username string) (*investor.Investor, error) {
	records, err := r.client.ListRecords(ctx, r.table)
	if err != nil {
		return nil, storeErr(err)
	}
	for _, rec := range records {
		if rec.String(fieldUsername) == username {
			inv := toInvestor(rec)
			return &inv, nil
		}
	}
	return nil, fmt.Errorf("investor %s: %w", username, repository.ErrNotFound)
}

// List returns every investor in the table.
func (r *InvestorRepository) List(ctx context.Context) ([]investor.Investor, error) {
	records, err := r.client.ListRecords(ctx, r.table)
	if err != nil {
		return nil, storeErr(err)
	}
	investors := make([]investor.Investor, 0, len(records))
	for _, rec := range records {
		investors = append(investors, toInvestor(rec))
	}
	return investors, nil
}

func toInvestor(rec Record) investor.Investor {
	return investor.Investor{
		ID:       rec.Int(fieldInvestorID),
		Username: rec.String(fieldUsername),
		Password: rec.String(fieldPassword),
		Name:     rec.String(fieldInvestorName),
		Title:    rec.String(fieldTitle),
		Avatar:   rec.String(fieldAvatarURL),
		Quota:    rec.Int(fieldQuota),
		Enabled:  rec.Bool(fieldEnabled, true),
		RecordID: rec.ID,
	}
}
