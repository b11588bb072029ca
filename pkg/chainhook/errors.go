// Package chainhook defines the predicate and action data model shared by
// the Bitcoin and Stacks chainhook specifications.
package chainhook

import "errors"

// Sentinel errors for specification projection and validation.
var (
	// ErrNoSpecificationForNetwork is returned when Select is called for a
	// network the full specification does not carry.
	ErrNoSpecificationForNetwork = errors.New("no specification for network")

	// ErrInvalidHeightRange is returned when start_block > end_block.
	ErrInvalidHeightRange = errors.New("start_block must be <= end_block")

	// ErrInvalidExpireAfterOccurrence is returned when expire_after_occurrence is set to 0.
	ErrInvalidExpireAfterOccurrence = errors.New("expire_after_occurrence must be > 0 when set")

	// ErrPredicateKindMismatch is returned when a predicate's Kind tag
	// disagrees with the payload actually populated on it.
	ErrPredicateKindMismatch = errors.New("predicate kind does not match its payload")

	// ErrActionKindMismatch mirrors ErrPredicateKindMismatch for actions.
	ErrActionKindMismatch = errors.New("action kind does not match its payload")

	// ErrMissingUUID is returned when a specification carries no uuid.
	ErrMissingUUID = errors.New("chainhook specification requires a uuid")
)
