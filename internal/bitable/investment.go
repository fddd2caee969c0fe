package bitable

import (
	"context"
	"fmt"

	"github.com/harborloop/demoday/internal/domain/ledger"
	"github.com/harborloop/demoday/internal/repository"
)

// Investment table field names.
const (
	fieldKey            = "key"
	fieldAccount        = "account"
	fieldInvProjectID   = "project_id"
	fieldAmount         = "amount"
	fieldInvestedAt     = "invested_at"
	fieldInvInvestor    = "investor_name"
	fieldInvProjectName = "project_name"
)

// InvestmentRepository manages investment records over the store.
type InvestmentRepository struct {
	client *Client
	table  string
}

// NewInvestmentRepository creates an InvestmentRepository.
func NewInvestmentRepository(client *Client, table string) *InvestmentRepository {
	return &InvestmentRepository{client: client, table: table}
}

// Create persists a new investment and fills in the store record id.
func (r *InvestmentRepository) Create(ctx context.Context, inv *ledger.Investment) error {
	recordID, err := r.client.CreateRecord(ctx, r.table, map[string]any{
		fieldKey:            inv.Key,
		fieldAccount:        inv.Account,
		fieldInvProjectID:   inv.ProjectID,
		fieldAmount:         inv.Amount,
		fieldInvestedAt:     inv.InvestedAt.UnixMilli(),
		fieldInvInvestor:    inv.InvestorName,
		fieldInvProjectName: inv.ProjectName,
	})
	if err != nil {
		return storeErr(err)
	}
	inv.RecordID = recordID
	return nil
}

// List returns every investment in the table.
func (r *InvestmentRepository) List(ctx context.Context) ([]ledger.Investment, error) {
	records, err := r.client.ListRecords(ctx, r.table)
	if err != nil {
		return nil, storeErr(err)
	}
	investments := make([]ledger.Investment, 0, len(records))
	for _, rec := range records {
		investments = append(investments, toInvestment(rec))
	}
	return investments, nil
}

// ListByAccount returns the investments recorded for one account.
func (r *InvestmentRepository) ListByAccount(ctx context.Context, account string) ([]ledger.Investment, error) {
	records, err := r.client.ListRecords(ctx, r.table)
	if err != nil {
		return nil, storeErr(err)
	}
	var investments []ledger.Investment
	for _, rec := range records {
		if rec.String(fieldAccount) == account {
			investments = append(investments, toInvestment(rec))
		}
	}
	return investments, nil
}

// FindByKey looks an investment up by its idempotency key.
func (r *InvestmentRepository) FindByKey(ctx context.Context, key string) (*ledger.Investment, error) {
	records, err := r.client.ListRecords(ctx, r.table)
	if err != nil {
		return nil, storeErr(err)
	}
	for _, rec := range records {
		if rec.String(fieldKey) == key {
			inv := toInvestment(rec)
			return &inv, nil
		}
	}
	return nil, fmt.Errorf("investment %s: %w", key, repository.ErrNotFound)
}

func toInvestment(rec Record) ledger.Investment {
	return ledger.Investment{
		Key:          rec.String(fieldKey),
		Account:      rec.String(fieldAccount),
		ProjectID:    rec.Int(fieldInvProjectID),
		Amount:       rec.Int(fieldAmount),
		InvestedAt:   rec.Time(fieldInvestedAt),
		InvestorName: rec.String(fieldInvInvestor),
		ProjectName:  rec.String(fieldInvProjectName),
		RecordID:     rec.ID,
	}
}
