package matcher

import (
	"strings"

	"github.com/stacks-network/chainhook-engine/pkg/chainhook"
	"github.com/stacks-network/chainhook-engine/pkg/model"
)

// MatchStacks reports whether tx (at the given block height) satisfies
// predicate, per spec.md §4.2. Event-based predicates match when any event
// of the transaction matches.
func MatchStacks(predicate chainhook.StacksPredicate, height uint64, tx model.StacksTransaction) bool {
	switch predicate.Kind {
	case chainhook.StacksKindBlockHeight:
		return predicate.BlockHeight.Matches(height)

	case chainhook.StacksKindTxid:
		return predicate.Txid.Matches(model.NormalizeHex(tx.Txid))

	case chainhook.StacksKindContractCall:
		if tx.ContractCall == nil {
			return false
		}
		want := predicate.ContractCall
		return chainhook.EqualsWildcard(want.ContractIdentifier, tx.ContractCall.ContractIdentifier) &&
			want.Method == tx.ContractCall.Method

	case chainhook.StacksKindContractDeployment:
		return matchContractDeployment(predicate.ContractDeployment, tx.ContractDeployment)

	case chainhook.StacksKindFtEvent:
		return matchAnyEvent(tx.Events, func(e model.StacksEvent) bool {
			if e.Kind != model.StacksEventFt {
				return false
			}
			return chainhook.EqualsWildcard(predicate.FtEvent.AssetIdentifier, e.FtEvent.AssetIdentifier) &&
				predicate.FtEvent.Actions.Contains(e.FtEvent.Action)
		})

	case chainhook.StacksKindNftEvent:
		return matchAnyEvent(tx.Events, func(e model.StacksEvent) bool {
			if e.Kind != model.StacksEventNft {
				return false
			}
			return chainhook.EqualsWildcard(predicate.NftEvent.AssetIdentifier, e.NftEvent.AssetIdentifier) &&
				predicate.NftEvent.Actions.Contains(e.NftEvent.Action)
		})

	case chainhook.StacksKindStxEvent:
		return matchAnyEvent(tx.Events, func(e model.StacksEvent) bool {
			if e.Kind != model.StacksEventStx {
				return false
			}
			// "burn" is intentionally never matched here; see
			// chainhook.StxEventMatch's doc comment.
			if e.StxEvent.Action == "burn" {
				return false
			}
			return predicate.StxEvent.Actions.Contains(e.StxEvent.Action)
		})

	case chainhook.StacksKindPrintEvent:
		return matchAnyEvent(tx.Events, func(e model.StacksEvent) bool {
			if e.Kind != model.StacksEventPrint {
				return false
			}
			want := predicate.PrintEvent
			if !chainhook.EqualsWildcard(want.ContractIdentifier, e.PrintEvent.ContractIdentifier) {
				return false
			}
			if want.Contains == chainhook.Wildcard {
				return true
			}
			return strings.Contains(e.PrintEvent.Value, want.Contains)
		})

	default:
		return false
	}
}

func matchAnyEvent(events []model.StacksEvent, pred func(model.StacksEvent) bool) bool {
	for _, e := range events {
		if pred(e) {
			return true
		}
	}
	return false
}

// matchContractDeployment implements the Deployer sub-variant; ImplementTrait
// is reserved per spec.md's Open Question and always returns false.
func matchContractDeployment(want *chainhook.ContractDeploymentMatch, got *model.ContractDeploymentData) bool {
	if got == nil {
		return false
	}
	if want.ImplementTrait != "" {
		return false
	}
	if want.Deployer == "" {
		return false
	}
	return chainhook.EqualsWildcard(want.Deployer, got.Deployer)
}

// MatchingEvents returns the subset of tx.Events that satisfy predicate, for
// use by the action compiler when capture_all_events is false: only the
// matching events (not the whole set) are carried into the payload in that
// case. The action compiler calls it only for the event predicate kinds
// (ft_event, nft_event, stx_event, print_event) and carries every event of
// the transaction for the other kinds.
func MatchingEvents(predicate chainhook.StacksPredicate, tx model.StacksTransaction) []model.StacksEvent {
	var out []model.StacksEvent
	for _, e := range tx.Events {
		fake := model.StacksTransaction{Events: []model.StacksEvent{e}}
		if MatchStacks(predicate, 0, fake) {
			out = append(out, e)
		}
	}
	return out
}
