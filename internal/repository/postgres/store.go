// Package postgres stores collections as positioned rows in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"alcyxob/routine-builder/internal/domain"
	"alcyxob/routine-builder/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS collection_rows (
    owner_id   TEXT        NOT NULL,
    collection TEXT        NOT NULL,
    row_key    TEXT        NOT NULL,
    position   INTEGER     NOT NULL,
    body       JSONB       NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (owner_id, collection, row_key)
);
CREATE INDEX IF NOT EXISTS collection_rows_position
    ON collection_rows (owner_id, collection, position);
CREATE TABLE IF NOT EXISTS collection_manifest (
    owner_id   TEXT        NOT NULL,
    collection TEXT        NOT NULL,
    row_count  INTEGER     NOT NULL,
    saved_at   TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (owner_id, collection)
);`

// Store implements repository.BlobStore on a sqlx handle.
type Store struct {
	db *sqlx.DB
}

var _ repository.BlobStore = (*Store)(nil)

// Connect opens a PostgreSQL connection, retrying while the server starts up.
func Connect(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	const maxRetries = 10
	const retryInterval = 2 * time.Second
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		var db *sqlx.DB
		db, err = sqlx.ConnectContext(ctx, "postgres", databaseURL)
		if err == nil {
			log.Info().Msg("connected to database")
			return db, nil
		}

		log.Error().Err(err).
			Int("attempt", attempt).
			Msgf("failed to connect to database, retrying in %s", retryInterval)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", maxRetries, err)
}

// NewStore wraps db.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

type rowRecord struct {
	RowKey   string `db:"row_key"`
	Position int    `db:"position"`
	Body     []byte `db:"body"`
}

// Load reads an owner's collection ordered by position.
func (s *Store) Load(ctx context.Context, owner string, c domain.Collection) ([]byte, error) {
	if !repository.ValidOwner(owner) {
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidOwner, owner)
	}

	var saved int
	const manifestQ = `SELECT row_count FROM collection_manifest WHERE owner_id = $1 AND collection = $2;`
	if err := s.db.GetContext(ctx, &saved, manifestQ, owner, string(c)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		log.Error().Err(err).Str("collection", string(c)).Msg("[db] Load: failed to read manifest")
		return nil, err
	}

	var records []rowRecord
	const q = `
    SELECT row_key, position, body
    FROM collection_rows
    WHERE owner_id = $1 AND collection = $2
    ORDER BY position;`
	if err := s.db.SelectContext(ctx, &records, q, owner, string(c)); err != nil {
		log.Error().Err(err).Str("collection", string(c)).Msg("[db] Load: failed to select rows")
		return nil, err
	}

	rows := make([]repository.Row, len(records))
	for i, r := range records {
		rows[i] = repository.Row{Key: r.RowKey, Position: r.Position, Body: r.Body}
	}
	return repository.JoinRows(rows), nil
}

// Save upserts every element and removes the rows that left the collection,
// all inside one transaction.
func (s *Store) Save(ctx context.Context, owner string, c domain.Collection, blob []byte) error {
	if !repository.ValidOwner(owner) {
		return fmt.Errorf("%w: %q", repository.ErrInvalidOwner, owner)
	}
	rows, err := repository.SplitRows(c, blob)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const upsert = `
    INSERT INTO collection_rows (owner_id, collection, row_key, position, body, updated_at)
    VALUES ($1, $2, $3, $4, $5, now())
    ON CONFLICT (owner_id, collection, row_key)
    DO UPDATE SET position = EXCLUDED.position, body = EXCLUDED.body, updated_at = now();`
	stmt, err := tx.PreparexContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, owner, string(c), row.Key, row.Position, string(row.Body)); err != nil {
			return fmt.Errorf("upsert %s/%s: %w", c, row.Key, err)
		}
		keys = append(keys, row.Key)
	}

	const prune = `
    DELETE FROM collection_rows
    WHERE owner_id = $1 AND collection = $2 AND NOT (row_key = ANY($3));`
	if _, err := tx.ExecContext(ctx, prune, owner, string(c), pq.Array(keys)); err != nil {
		return fmt.Errorf("prune %s: %w", c, err)
	}

	const manifest = `
    INSERT INTO collection_manifest (owner_id, collection, row_count, saved_at)
    VALUES ($1, $2, $3, now())
    ON CONFLICT (owner_id, collection)
    DO UPDATE SET row_count = EXCLUDED.row_count, saved_at = EXCLUDED.saved_at;`
	if _, err := tx.ExecContext(ctx, manifest, owner, string(c), len(rows)); err != nil {
		return fmt.Errorf("manifest %s: %w", c, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
