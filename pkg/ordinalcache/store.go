// Package ordinalcache implements the read/write contract spec.md §4.7
// names for the inscription index consulted during ordinal-aware replay:
// a Postgres-backed table of CompactedBlock rows, read by height or in
// bulk, and written by a bounded-fan-out backfill that commits in strict
// height order.
package ordinalcache

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a connection pool to the ordinal cache's Postgres database.
// A read-only Store is safe for concurrent use by multiple replay drivers;
// the write path (FetchAndCacheBlocks) should only ever be driven by the
// single catch-up goroutine spec.md §5 describes as holding the exclusive
// write handle.
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithLogger overrides the default stderr logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Open connects to databaseURL, verifies the connection, and applies any
// pending migrations. A connection failure is reported as
// ErrCacheUnavailable, per spec.md §7.
func Open(ctx context.Context, databaseURL string, opts ...Option) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("%w: empty database url", ErrCacheUnavailable)
	}

	store := &Store{logger: log.New(log.Writer(), "[ordinalcache] ", log.LstdFlags)}
	for _, opt := range opts {
		opt(store)
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	store.db = db
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ordinalcache: migrate: %w", err)
	}
	return store, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

type migration struct {
	version string
	sql     string
}

func (s *Store) migrate(ctx context.Context) error {
	var migrations []migration
	err := fs.WalkDir(migrationsFS, "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return err
		}
		content, err := migrationsFS.ReadFile(path)
		if err != nil {
			return err
		}
		migrations = append(migrations, migration{
			version: strings.TrimSuffix(d.Name(), ".sql"),
			sql:      string(content),
		})
		return nil
	})
	if err != nil {
		return err
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("applying %s: %w", m.version, err)
		}
	}
	return nil
}

func marshalTraversals(traversals []Traversal) ([]byte, error) {
	return json.Marshal(traversals)
}

func unmarshalTraversals(raw []byte) ([]Traversal, error) {
	var traversals []Traversal
	if len(raw) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(raw, &traversals); err != nil {
		return nil, err
	}
	return traversals, nil
}
