package replay

import (
	"errors"
	"fmt"
)

// ErrConfigInvalid is returned before any block is fetched when the
// specification cannot be projected onto the configured network or
// carries a contradictory height range. pkg/chainhook's own validation
// errors are wrapped in it rather than duplicated.
var ErrConfigInvalid = errors.New("replay: invalid configuration")

// ErrCancelled is returned when the cooperative cancellation token fires
// between blocks, per spec.md §5.
var ErrCancelled = errors.New("replay: scan cancelled")

// BlockMalformedError reports that standardisation rejected the raw block
// breakdown at Height; the scan aborts rather than risk desynchronised
// ordinal state.
type BlockMalformedError struct {
	Height uint64
	Err    error
}

func (e *BlockMalformedError) Error() string {
	return fmt.Sprintf("replay: block %d malformed: %v", e.Height, e.Err)
}

func (e *BlockMalformedError) Unwrap() error { return e.Err }

// ActionDispatchError names the chainhook and reason a single trigger
// failed to dispatch. It is never returned from Scan; the driver
// aggregates these into the Summary and keeps going, per spec.md §4.6.
type ActionDispatchError struct {
	UUID   string
	Reason error
}

func (e *ActionDispatchError) Error() string {
	return fmt.Sprintf("replay: dispatch failed for %s: %v", e.UUID, e.Reason)
}

func (e *ActionDispatchError) Unwrap() error { return e.Reason }
