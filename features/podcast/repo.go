package podcast

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Get(ctx context.Context, name string) (*Podcast, error) {
	p := &Podcast{}
	query := `SELECT name, image_url, listen_link, created_at FROM podcasts WHERE name = $1`
	err := r.db.QueryRowContext(ctx, query, name).Scan(&p.Name, &p.ImageURL, &p.ListenLink, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPodcast, name)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Podcast, error) {
	query := `SELECT name, image_url, listen_link, created_at FROM podcasts ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var podcasts []Podcast
	for rows.Next() {
		var p Podcast
		if err := rows.Scan(&p.Name, &p.ImageURL, &p.ListenLink, &p.CreatedAt); err != nil {
			return nil, err
		}
		podcasts = append(podcasts, p)
	}
	return podcasts, rows.Err()
}

func (r *PostgresRepo) Save(ctx context.Context, p *Podcast) error {
	query := `
		INSERT INTO podcasts (name, image_url, listen_link)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET image_url = EXCLUDED.image_url, listen_link = EXCLUDED.listen_link
		RETURNING created_at
	`
	return r.db.QueryRowContext(ctx, query, p.Name, p.ImageURL, p.ListenLink).Scan(&p.CreatedAt)
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM podcasts`).Scan(&count)
	return count, err
}
