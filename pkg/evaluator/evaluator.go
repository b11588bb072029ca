package evaluator

// ChainEvent is the generic shape of spec.md's ChainUpdatedWithBlocks /
// ChainUpdatedWithReorg / microblock variants: a rollback side (possibly
// empty) walked first, followed by an apply side (possibly empty). Block is
// instantiated with pkg/model.BitcoinBlock or pkg/model.StacksBlock by the
// callers in pkg/replay and pkg/action.
type ChainEvent[Block any] struct {
	Rollback []Block
	Apply    []Block
}

// HookSpec is everything Evaluate needs to know about one chainhook,
// already projected onto a network and reduced to plain functions so the
// evaluator itself never imports pkg/chainhook or pkg/matcher (keeping the
// dependency direction pointed inward, from driver to core).
type HookSpec[Block any] struct {
	UUID                  string
	Enabled               bool
	ExpireAfterOccurrence *uint64
	// Match reports whether the transaction at txIndex within block
	// satisfies this hook's predicate and height/allow-list gate.
	Match func(block Block, txIndex int) bool
	// TxCount returns the number of transactions in block.
	TxCount func(block Block) int
}

// BlockOccurrence bundles one block with the indexes of the transactions
// within it that matched a hook's predicate.
type BlockOccurrence[Block any] struct {
	Block              Block
	TransactionIndexes []int
}

// Trigger is the per-hook result of walking one ChainEvent: the blocks (and
// matched transactions within them) on the rollback and apply sides, in the
// order they appeared in the event.
type Trigger[Block any] struct {
	ChainhookUUID string
	Apply         []BlockOccurrence[Block]
	Rollback      []BlockOccurrence[Block]
}

// Evaluate walks event against hooks in order and returns the ordered
// trigger list plus the uuids of hooks that expired as a result of this
// event, per spec.md §4.3. A hook that is disabled, already expired, or
// that matches nothing in either side of the event, produces no trigger.
//
// hooks must be non-empty for a trigger to be produced, but an empty hooks
// slice is a valid input that simply returns (nil, nil).
func Evaluate[Block any](event ChainEvent[Block], hooks []HookSpec[Block], registry *Registry) ([]Trigger[Block], []string) {
	var triggers []Trigger[Block]
	var expired []string

	for _, hook := range hooks {
		if !hook.Enabled {
			continue
		}
		if registry.Expired(hook.UUID, hook.ExpireAfterOccurrence) {
			continue
		}

		rollbackList := walkBlocks(event.Rollback, hook)
		applyList := walkBlocks(event.Apply, hook)
		if len(rollbackList) == 0 && len(applyList) == 0 {
			continue
		}

		triggers = append(triggers, Trigger[Block]{
			ChainhookUUID: hook.UUID,
			Apply:         applyList,
			Rollback:      rollbackList,
		})

		if registry.Increment(hook.UUID) >= thresholdOrMax(hook.ExpireAfterOccurrence) {
			if hook.ExpireAfterOccurrence != nil {
				expired = append(expired, hook.UUID)
			}
		}
	}

	return triggers, expired
}

func walkBlocks[Block any](blocks []Block, hook HookSpec[Block]) []BlockOccurrence[Block] {
	var out []BlockOccurrence[Block]
	for _, block := range blocks {
		var matched []int
		for i := 0; i < hook.TxCount(block); i++ {
			if hook.Match(block, i) {
				matched = append(matched, i)
			}
		}
		if len(matched) > 0 {
			out = append(out, BlockOccurrence[Block]{Block: block, TransactionIndexes: matched})
		}
	}
	return out
}

func thresholdOrMax(threshold *uint64) uint64 {
	if threshold == nil {
		return ^uint64(0)
	}
	return *threshold
}
