package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/recipe-service/internal/entity"
)

// DB is the subset of *pgxpool.Pool used by the repositories.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

const createParseHistory = `
	CREATE TABLE IF NOT EXISTS parse_history (
		id            BIGSERIAL PRIMARY KEY,
		url           TEXT        NOT NULL,
		domain        TEXT        NOT NULL DEFAULT '',
		title         TEXT        NOT NULL DEFAULT '',
		failed_fields TEXT[]      NOT NULL DEFAULT '{}',
		image         TEXT        NOT NULL DEFAULT '',
		status        TEXT        NOT NULL,
		parsed_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS parse_history_parsed_at_idx ON parse_history (parsed_at DESC);
`

// ParseHistoryRepoImpl provides a concrete implementation for the ParseHistoryRepository interface using PostgreSQL.
type ParseHistoryRepoImpl struct {
	db DB
}

// NewParseHistoryRepo creates a new instance of ParseHistoryRepoImpl.
func NewParseHistoryRepo(db DB) *ParseHistoryRepoImpl {
	return &ParseHistoryRepoImpl{db: db}
}

// Migrate creates the parse_history table if it does not exist.
func (r *ParseHistoryRepoImpl) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, createParseHistory)
	return err
}

// Save inserts a parse attempt and sets its ID.
func (r *ParseHistoryRepoImpl) Save(ctx context.Context, record *entity.ParseRecord) error {
	failed := record.FailedFields
	if failed == nil {
		failed = []string{}
	}
	query := `
		INSERT INTO parse_history (url, domain, title, failed_fields, image, status, parsed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;
	`
	return r.db.QueryRow(ctx, query,
		record.URL,
		record.Domain,
		record.Title,
		failed,
		record.Image,
		record.Status,
		record.ParsedAt,
	).Scan(&record.ID)
}

// ListRecent retrieves up to limit parse attempts, newest first.
func (r *ParseHistoryRepoImpl) ListRecent(ctx context.Context, limit int) ([]*entity.ParseRecord, error) {
	query := `
		SELECT id, url, domain, title, failed_fields, image, status, parsed_at
		FROM parse_history
		ORDER BY parsed_at DESC, id DESC
		LIMIT $1;
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*entity.ParseRecord{}
	for rows.Next() {
		var rec entity.ParseRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.URL,
			&rec.Domain,
			&rec.Title,
			&rec.FailedFields,
			&rec.Image,
			&rec.Status,
			&rec.ParsedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// Ping reports whether the database is reachable.
func (r *ParseHistoryRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
