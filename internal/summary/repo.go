package summary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound signals a missing synopsis for an episode that has bulletpoints
// in the index. Reassembly treats it as a data-integrity error, never as an
// empty string.
var ErrNotFound = errors.New("episode summary not found")

type Store interface {
	Put(ctx context.Context, episodeName, summary string) error
	Get(ctx context.Context, episodeName string) (string, error)
	Count(ctx context.Context) (int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Put(ctx context.Context, episodeName, summary string) error {
	query := `
		INSERT INTO episode_summaries (episode_name, summary)
		VALUES ($1, $2)
		ON CONFLICT (episode_name) DO UPDATE SET summary = EXCLUDED.summary, updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, episodeName, summary)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, episodeName string) (string, error) {
	var s string
	query := `SELECT summary FROM episode_summaries WHERE episode_name = $1`
	err := r.db.QueryRowContext(ctx, query, episodeName).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, episodeName)
	}
	if err != nil {
		return "", err
	}
	return s, nil
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM episode_summaries`).Scan(&count)
	return count, err
}
