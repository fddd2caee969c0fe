package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborloop/demoday/internal/domain/ledger"
	"github.com/harborloop/demoday/internal/repository"
)

// InvestmentRepository stores investments in SQLite
type InvestmentRepository struct {
	db *DB
}

// NewInvestmentRepository creates a new InvestmentRepository
func NewInvestmentRepository(db *DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

// Create persists a new investment and fills in the record id
func (r *InvestmentRepository) Create(ctx context.Context, inv *ledger.Investment) error {
	if inv.RecordID == "" {
		inv.RecordID = uuid.NewString()
	}
	query := `
		INSERT INTO investments (record_id, key, account, project_id, amount, invested_at, investor_name, project_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		inv.RecordID,
		inv.Key,
		inv.Account,
		inv.ProjectID,
		inv.Amount,
		inv.InvestedAt.UnixMilli(),
		inv.InvestorName,
		inv.ProjectName,
	)
	if err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}
	return nil
}

const investmentColumns = `record_id, key, account, project_id, amount, invested_at, investor_name, project_name`

// List returns every investment
func (r *InvestmentRepository) List(ctx context.Context) ([]ledger.Investment, error) {
	return r.query(ctx, `SELECT `+investmentColumns+` FROM investments ORDER BY invested_at`)
}

// ListByAccount returns the investments recorded for one account
func (r *InvestmentRepository) ListByAccount(ctx context.Context, account string) ([]ledger.Investment, error) {
	return r.query(ctx, `SELECT `+investmentColumns+` FROM investments WHERE account = ? ORDER BY invested_at`, account)
}

// FindByKey looks an investment up by its idempotency key
func (r *InvestmentRepository) FindByKey(ctx context.Context, key string) (*ledger.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE key = ?`

	var inv ledger.Investment
	var investedAt int64
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&inv.RecordID,
		&inv.Key,
		&inv.Account,
		&inv.ProjectID,
		&inv.Amount,
		&investedAt,
		&inv.InvestorName,
		&inv.ProjectName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("investment %s: %w", key, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}
	inv.InvestedAt = time.UnixMilli(investedAt)
	return &inv, nil
}

func (r *InvestmentRepository) query(ctx context.Context, query string, args ...any) ([]ledger.Investment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	defer rows.Close()

	var investments []ledger.Investment
	for rows.Next() {
		var inv ledger.Investment
		var investedAt int64
		if err := rows.Scan(
			&inv.RecordID,
			&inv.Key,
			&inv.Account,
			&inv.ProjectID,
			&inv.Amount,
			&investedAt,
			&inv.InvestorName,
			&inv.ProjectName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		inv.InvestedAt = time.UnixMilli(investedAt)
		investments = append(investments, inv)
	}
	return investments, rows.Err()
}
