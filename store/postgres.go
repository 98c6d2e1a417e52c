package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	nb "github.com/spetersoncode/newsbrief"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
  id BIGINT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  content TEXT NOT NULL DEFAULT '',
  url TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT '',
  news_type TEXT NOT NULL DEFAULT '',
  published_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  impact TEXT NOT NULL DEFAULT '',
  sectors TEXT NOT NULL DEFAULT '',
  major BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles (published_at);
`

// Postgres is a Store backed by PostgreSQL through the pgx driver.
type Postgres struct {
	db *sql.DB

	mu          sync.Mutex // guards schemaReady
	schemaReady bool
}

var _ Store = (*Postgres)(nil)

// OpenPostgres connects to dsn and checks the connection.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Postgres{db: db}, nil
}

// NewPostgres wraps an open database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Close closes the database handle.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// ensureSchema creates the table on first use. A failed attempt is
// retried on the next call.
func (p *Postgres) ensureSchema(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.schemaReady {
		return nil
	}
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return err
	}
	p.schemaReady = true
	return nil
}

// Articles returns the articles published in [from, to).
func (p *Postgres) Articles(ctx context.Context, from, to time.Time) ([]nb.Article, error) {
	if err := p.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("store: schema: %w", err)
	}

	query := `SELECT id, title, content, url, source, news_type, published_at, impact, sectors, major
FROM articles WHERE published_at >= $1`
	args := []any{from}
	if !to.IsZero() {
		query += ` AND published_at < $2`
		args = append(args, to)
	}
	query += ` ORDER BY published_at, id`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query articles: %w", err)
	}
	defer rows.Close()

	var out []nb.Article
	for rows.Next() {
		var (
			a            nb.Article
			kind, impact string
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.URL, &a.Source, &kind, &a.PublishedAt, &impact, &a.Sectors, &a.Major); err != nil {
			return nil, fmt.Errorf("store: scan article: %w", err)
		}
		a.Type = nb.NewsType(kind)
		a.Impact = nb.Impact(impact)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: read articles: %w", err)
	}
	return out, nil
}

// SaveArticles upserts articles in one transaction.
func (p *Postgres) SaveArticles(ctx context.Context, articles []nb.Article) error {
	return p.inTx(ctx, func(tx *sql.Tx) error {
		for _, a := range articles {
			_, err := tx.ExecContext(ctx, `
INSERT INTO articles (id, title, content, url, source, news_type, published_at, impact, sectors, major)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id)
DO UPDATE SET title=EXCLUDED.title,
  content=EXCLUDED.content,
  url=EXCLUDED.url,
  source=EXCLUDED.source,
  news_type=EXCLUDED.news_type,
  published_at=EXCLUDED.published_at,
  impact=EXCLUDED.impact,
  sectors=EXCLUDED.sectors,
  major=EXCLUDED.major`,
				a.ID, a.Title, a.Content, a.URL, a.Source, string(a.Type), a.PublishedAt, string(a.Impact), a.Sectors, a.Major)
			if err != nil {
				return fmt.Errorf("store: upsert article %d: %w", a.ID, err)
			}
		}
		return nil
	})
}

// SaveAnalysis updates the analysis columns in one transaction. An unknown ID
// rolls the whole batch back.
func (p *Postgres) SaveAnalysis(ctx context.Context, articles []nb.Article) error {
	return p.inTx(ctx, func(tx *sql.Tx) error {
		for _, a := range articles {
			res, err := tx.ExecContext(ctx,
				`UPDATE articles SET impact=$2, sectors=$3, major=$4 WHERE id=$1`,
				a.ID, string(a.Impact), a.Sectors, a.Major)
			if err != nil {
				return fmt.Errorf("store: update article %d: %w", a.ID, err)
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return fmt.Errorf("%w: %d", ErrNotFound, a.ID)
			}
		}
		return nil
	})
}

func (p *Postgres) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	if err := p.ensureSchema(ctx); err != nil {
		return fmt.Errorf("store: schema: %w", err)
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
