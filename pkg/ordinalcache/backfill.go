package ordinalcache

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// FetchBlockFunc resolves one height to its compacted form; the cache
// package has no opinion on how that happens (RPC fetch + inscription
// computation live in pkg/replay), only on committing the result.
type FetchBlockFunc func(ctx context.Context, height uint64) (*CompactedBlock, error)

// FetchAndCacheBlocks implements spec.md §4.7/§5's backfill: it downloads
// [start, end] with up to fanOut concurrent calls to fetch, then commits
// every block in strict height order so the cache remains a contiguous
// prefix of the chain. A gap between the cache's current tail and start
// is rejected rather than silently skipped.
func (s *Store) FetchAndCacheBlocks(ctx context.Context, start, end uint64, fanOut int, fetch FetchBlockFunc) error {
	if start > end {
		return nil
	}
	if fanOut <= 0 {
		fanOut = 8
	}

	latest, err := s.FindLatestCompactedBlockKnown(ctx)
	switch {
	case err == ErrCacheEmpty:
		// An empty cache accepts any start; nothing to be contiguous with yet.
	case err != nil:
		return err
	case start != latest+1:
		return fmt.Errorf("%w: want start=%d, cache ends at %d", ErrNonContiguousBackfill, start, latest)
	}

	results := make([]*CompactedBlock, end-start+1)
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, fanOut)

	for height := start; height <= end; height++ {
		height := height
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			block, err := fetch(gctx, height)
			if err != nil {
				return fmt.Errorf("ordinalcache: fetch block %d: %w", height, err)
			}
			results[height-start] = block
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, block := range results {
		if err := s.upsertCompactedBlock(ctx, block); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) upsertCompactedBlock(ctx context.Context, block *CompactedBlock) error {
	traversals, err := marshalTraversals(block.Traversals)
	if err != nil {
		return fmt.Errorf("ordinalcache: encode traversals at %d: %w", block.Height, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO compacted_blocks (height, hash, traversals)
		VALUES ($1, $2, $3)
		ON CONFLICT (height) DO UPDATE SET hash = EXCLUDED.hash, traversals = EXCLUDED.traversals`,
		block.Height, block.Hash, traversals)
	if err != nil {
		return fmt.Errorf("ordinalcache: commit block %d: %w", block.Height, err)
	}
	return nil
}
