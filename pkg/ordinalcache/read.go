package ordinalcache

import (
	"context"
	"database/sql"
	"fmt"
)

// FindCompactedBlockAt implements spec.md §4.7's find_compacted_block_at:
// the compacted record for height, or ErrCompactedBlockNotFound.
func (s *Store) FindCompactedBlockAt(ctx context.Context, height uint64) (*CompactedBlock, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT height, hash, traversals FROM compacted_blocks WHERE height = $1`, height)

	var (
		h          int64
		hash       string
		traversals []byte
	)
	if err := row.Scan(&h, &hash, &traversals); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCompactedBlockNotFound
		}
		return nil, fmt.Errorf("ordinalcache: find compacted block at %d: %w", height, err)
	}

	decoded, err := unmarshalTraversals(traversals)
	if err != nil {
		return nil, fmt.Errorf("ordinalcache: decode traversals at %d: %w", height, err)
	}
	return &CompactedBlock{Height: uint64(h), Hash: hash, Traversals: decoded}, nil
}

// FindLatestCompactedBlockKnown implements spec.md §4.7's
// find_latest_compacted_block_known.
func (s *Store) FindLatestCompactedBlockKnown(ctx context.Context) (uint64, error) {
	row := s.db.QueryRowContext(ctx, `SELECT MAX(height) FROM compacted_blocks`)

	var height sql.NullInt64
	if err := row.Scan(&height); err != nil {
		return 0, fmt.Errorf("ordinalcache: latest compacted block: %w", err)
	}
	if !height.Valid {
		return 0, ErrCacheEmpty
	}
	return uint64(height.Int64), nil
}

// FindAllInscriptions implements spec.md §4.7's find_all_inscriptions: a
// map height → traversals for every row between minHeight and maxHeight
// inclusive that carries at least one traversal. Rows are read in height
// order, but the returned Go map itself has no iteration order.
func (s *Store) FindAllInscriptions(ctx context.Context, minHeight, maxHeight uint64) (map[uint64][]Traversal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT height, traversals FROM compacted_blocks WHERE height BETWEEN $1 AND $2 ORDER BY height`,
		minHeight, maxHeight)
	if err != nil {
		return nil, fmt.Errorf("ordinalcache: find all inscriptions: %w", err)
	}
	defer rows.Close()

	out := make(map[uint64][]Traversal)
	for rows.Next() {
		var h int64
		var raw []byte
		if err := rows.Scan(&h, &raw); err != nil {
			return nil, fmt.Errorf("ordinalcache: scan inscriptions row: %w", err)
		}
		traversals, err := unmarshalTraversals(raw)
		if err != nil {
			return nil, fmt.Errorf("ordinalcache: decode traversals at %d: %w", h, err)
		}
		if len(traversals) > 0 {
			out[uint64(h)] = traversals
		}
	}
	return out, rows.Err()
}
