package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/harborloop/demoday/internal/domain/investor"
	"github.com/harborloop/demoday/internal/repository"
)

// InvestorRepository stores investors in SQLite
type InvestorRepository struct {
	db *DB
}

// NewInvestorRepository creates a new InvestorRepository
func NewInvestorRepository(db *DB) *InvestorRepository {
	return &InvestorRepository{db: db}
}

// Seed inserts an investor, assigning a record id.
func (r *InvestorRepository) Seed(ctx context.Context, inv *investor.Investor) error {
	if inv.RecordID == "" {
		inv.RecordID = uuid.NewString()
	}
	query := `
		INSERT INTO investors (record_id, investor_id, username, password, name, title, avatar_url, quota, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		inv.RecordID,
		inv.ID,
		inv.Username,
		inv.Password,
		inv.Name,
		inv.Title,
		inv.Avatar,
		inv.Quota,
		inv.Enabled,
	)
	if err != nil {
		return fmt.Errorf("failed to create investor: %w", err)
	}
	return nil
}

const investorColumns = `record_id, investor_id, username, password, name, title, avatar_url, quota, enabled`

// GetByUsername retrieves an investor by account
func (r *InvestorRepository) GetByUsername(ctx context.Context, username string) (*investor.Investor, error) {
	query := `SELECT ` + investorColumns + ` FROM investors WHERE username = ?`

	var inv investor.Investor
	err := scanInvestor(r.db.QueryRowContext(ctx, query, username), &inv)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("investor %s: %w", username, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get investor: %w", err)
	}
	return &inv, nil
}

// List returns every investor
func (r *InvestorRepository) List(ctx context.Context) ([]investor.Investor, error) {
	query := `SELECT ` + investorColumns + ` FROM investors ORDER BY investor_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list investors: %w", err)
	}
	defer rows.Close()

	var investors []investor.Investor
	for rows.Next() {
		var inv investor.Investor
		if err := scanInvestor(rows, &inv); err != nil {
			return nil, fmt.Errorf("failed to scan investor: %w", err)
		}
		investors = append(investors, inv)
	}
	return investors, rows.Err()
}

func scanInvestor(row rowScanner, inv *investor.Investor) error {
	return row.Scan(
		&inv.RecordID,
		&inv.ID,
		&inv.Username,
		&inv.Password,
		&inv.Name,
		&inv.Title,
		&inv.Avatar,
		&inv.Quota,
		&inv.Enabled,
	)
}
