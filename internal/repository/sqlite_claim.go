package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/dagatna/internal/db"
	"github.com/alexanderramin/dagatna/internal/domain"
)

// SQLiteClaimRepo implements ClaimRepo using a SQLite database.
type SQLiteClaimRepo struct {
	db db.DBTX
}

// NewSQLiteClaimRepo creates a new SQLiteClaimRepo.
func NewSQLiteClaimRepo(conn db.DBTX) *SQLiteClaimRepo {
	return &SQLiteClaimRepo{db: conn}
}

func (r *SQLiteClaimRepo) Create(ctx context.Context, c *domain.RewardClaim) error {
	query := `INSERT INTO reward_claims (id, run_id, amount, status, reference, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.RunID,
		c.Amount,
		string(c.Status),
		c.Reference,
		c.Error,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting reward claim: %w", err)
	}
	return nil
}

func (r *SQLiteClaimRepo) Update(ctx context.Context, c *domain.RewardClaim) error {
	query := `UPDATE reward_claims SET status = ?, reference = ?, error = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(c.Status), c.Reference, c.Error, formatTime(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("updating reward claim: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated claim rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("reward claim: %w", ErrNotFound)
	}
	return nil
}

func (r *SQLiteClaimRepo) ListByRun(ctx context.Context, runID string) ([]*domain.RewardClaim, error) {
	query := `SELECT id, run_id, amount, status, reference, error, created_at, updated_at
		FROM reward_claims WHERE run_id = ? ORDER BY created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("listing claims by run: %w", err)
	}
	defer rows.Close()

	var claims []*domain.RewardClaim
	for rows.Next() {
		var c domain.RewardClaim
		var status, createdStr, updatedStr string
		if err := rows.Scan(&c.ID, &c.RunID, &c.Amount, &status, &c.Reference, &c.Error, &createdStr, &updatedStr); err != nil {
			return nil, fmt.Errorf("scanning claim row: %w", err)
		}
		c.Status = domain.ClaimStatus(status)
		if c.CreatedAt, err = parseTime("created_at", createdStr); err != nil {
			return nil, err
		}
		if c.UpdatedAt, err = parseTime("updated_at", updatedStr); err != nil {
			return nil, err
		}
		claims = append(claims, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating claims: %w", err)
	}
	return claims, nil
}

func (r *SQLiteClaimRepo) SumSubmitted(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM reward_claims WHERE status = ?`,
		string(domain.ClaimSubmitted)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing submitted claims: %w", err)
	}
	return total, nil
}
