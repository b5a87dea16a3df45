package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/dagatna/internal/db"
	"github.com/alexanderramin/dagatna/internal/domain"
)

// SQLiteRunRepo implements RunRepo using a SQLite database.
type SQLiteRunRepo struct {
	db db.DBTX
}

// NewSQLiteRunRepo creates a new SQLiteRunRepo.
func NewSQLiteRunRepo(conn db.DBTX) *SQLiteRunRepo {
	return &SQLiteRunRepo{db: conn}
}

const runColumns = `id, seed, started_at, finished_at, duration_ms, items_cleared, reward_tier, reward_cap, source, created_at`

func (r *SQLiteRunRepo) Create(ctx context.Context, run *domain.CleanupRun) error {
	query := `INSERT INTO cleanup_runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		formatSeed(run.Seed),
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.DurationMs,
		run.ItemsCleared,
		run.RewardTier,
		run.RewardCap,
		string(run.Source),
		formatTime(run.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting cleanup run: %w", err)
	}
	return nil
}

func (r *SQLiteRunRepo) GetByID(ctx context.Context, id string) (*domain.CleanupRun, error) {
	query := `SELECT ` + runColumns + ` FROM cleanup_runs WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cleanup run: %w", ErrNotFound)
	}
	return run, err
}

func (r *SQLiteRunRepo) ListRecent(ctx context.Context, limit int) ([]*domain.CleanupRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + runColumns + ` FROM cleanup_runs ORDER BY started_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.CleanupRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

func (r *SQLiteRunRepo) LatestStartedAt(ctx context.Context) (*time.Time, error) {
	var latest sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT MAX(started_at) FROM cleanup_runs`).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("querying latest run start: %w", err)
	}
	return parseNullableTime(latest), nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.CleanupRun, error) {
	var run domain.CleanupRun
	var seedStr, startedStr, finishedStr, sourceStr, createdStr string
	err := row.Scan(
		&run.ID, &seedStr, &startedStr, &finishedStr,
		&run.DurationMs, &run.ItemsCleared, &run.RewardTier,
		&run.RewardCap, &sourceStr, &createdStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning cleanup run: %w", err)
	}

	run.Source = domain.RunSource(sourceStr)
	if run.Seed, err = parseSeed(seedStr); err != nil {
		return nil, err
	}
	if run.StartedAt, err = parseTime("started_at", startedStr); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseTime("finished_at", finishedStr); err != nil {
		return nil, err
	}
	if run.CreatedAt, err = parseTime("created_at", createdStr); err != nil {
		return nil, err
	}
	return &run, nil
}
