package save

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver goose needs
	"github.com/pressly/goose/v3"

	"github.com/sanguosha/engine/internal/engerr"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// PGStore is the Postgres-backed alternative to WriteFile/LoadFile, for
// a deployment (spec.md §4.9's "a deployment may persist saves to a
// database instead of the filesystem") that wants saves queryable and
// durable across hosts rather than scattered across local disk. One
// save slot (e.g. a room ID) holds exactly one document, overwritten on
// every Put; "save slots" are not a version history.
type PGStore struct {
	pool *pgxpool.Pool
}

// OpenPGStore connects to dsn and applies any pending migrations from
// migrations/ via goose before returning, so a fresh database is ready
// to use immediately.
func OpenPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to save database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping save database: %w", err)
	}

	goose.SetBaseFS(migrationFS)
	if err := goose.SetDialect("postgres"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("set migration dialect: %w", err)
	}
	// goose drives database/sql directly rather than pgxpool; this
	// connection exists only to apply migrations and is closed
	// immediately after, since PGStore's own queries go through pool.
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()
	if err := goose.Up(db, "migrations"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply save-store migrations: %w", err)
	}

	return &PGStore{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *PGStore) Close() { s.pool.Close() }

// Put upserts doc under slot, overwriting any document already stored
// there.
func (s *PGStore) Put(ctx context.Context, slot string, doc *Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return engerr.New(engerr.DataLoadError, fmt.Sprintf("marshal save document: %v", err))
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO saves (slot, schema_version, saved_at, document)
		VALUES ($1, $2, $3, $4::jsonb)
		ON CONFLICT (slot) DO UPDATE SET
			schema_version = EXCLUDED.schema_version,
			saved_at = EXCLUDED.saved_at,
			document = EXCLUDED.document
	`, slot, doc.SchemaVersion, doc.SavedAt, raw)
	if err != nil {
		return engerr.New(engerr.DataLoadError, fmt.Sprintf("write save slot %q: %v", slot, err))
	}
	return nil
}

// Get loads and migrates the document stored under slot.
func (s *PGStore) Get(ctx context.Context, slot string) (*Document, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT document FROM saves WHERE slot = $1`, slot).Scan(&raw)
	if err != nil {
		return nil, engerr.New(engerr.DataLoadError, fmt.Sprintf("read save slot %q: %v", slot, err))
	}
	return Load(raw)
}

// Delete removes a save slot; absent slots are not an error.
func (s *PGStore) Delete(ctx context.Context, slot string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM saves WHERE slot = $1`, slot)
	if err != nil {
		return engerr.New(engerr.DataLoadError, fmt.Sprintf("delete save slot %q: %v", slot, err))
	}
	return nil
}
