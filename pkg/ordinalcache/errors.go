package ordinalcache

import "errors"

// Sentinel errors for the ordinal cache's read/write contract.
var (
	// ErrCompactedBlockNotFound is returned by FindCompactedBlockAt when no
	// row exists for the requested height.
	ErrCompactedBlockNotFound = errors.New("ordinalcache: compacted block not found")
	// ErrCacheEmpty is returned by FindLatestCompactedBlockKnown when the
	// cache holds no blocks at all.
	ErrCacheEmpty = errors.New("ordinalcache: cache is empty")
	// ErrCacheUnavailable is returned when an ordinal-aware scan is
	// requested but the cache path cannot be opened, per spec.md §7.
	ErrCacheUnavailable = errors.New("ordinalcache: cache unavailable")
	// ErrNonContiguousBackfill guards FetchAndCacheBlocks's invariant that
	// the cache remains a contiguous prefix of the chain.
	ErrNonContiguousBackfill = errors.New("ordinalcache: backfill range is not contiguous with the cached prefix")
)
