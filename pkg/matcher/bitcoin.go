// Package matcher implements the pure per-transaction predicate evaluation
// from spec.md §4.1/§4.2: given a predicate and a transaction (plus, for
// Stacks, its events), report whether it matches. Nothing in this package
// performs I/O; it is invoked by pkg/evaluator's generic walk and by
// pkg/replay for the ordinal-aware feed construction.
package matcher

import (
	"strings"

	"github.com/stacks-network/chainhook-engine/pkg/chainhook"
	"github.com/stacks-network/chainhook-engine/pkg/model"
)

// OrdinalsFeed carries the reveal/transfer traversals computed for one
// block by the ordinal cache (pkg/ordinalcache); MatchBitcoin consults it
// for the OrdinalsProtocol predicate. A nil feed means no cache was
// consulted, so OrdinalsProtocol predicates yield no hits, per spec.md
// §4.1.
type OrdinalsFeed struct {
	// RevealedTxids is the set of transaction ids that reveal a new
	// inscription in this block.
	RevealedTxids map[string]bool
	// TransferredTxids is the set of transaction ids that move an
	// existing inscription to a new owning output.
	TransferredTxids map[string]bool
}

func (f *OrdinalsFeed) reveals(txid string) bool {
	return f != nil && f.RevealedTxids != nil && f.RevealedTxids[strings.ToLower(txid)]
}

func (f *OrdinalsFeed) transfers(txid string) bool {
	return f != nil && f.TransferredTxids != nil && f.TransferredTxids[strings.ToLower(txid)]
}

// MatchBitcoin reports whether tx satisfies predicate on network, given
// feed (which may be nil when the predicate isn't OrdinalsProtocol).
func MatchBitcoin(predicate chainhook.BitcoinPredicate, network chainhook.BitcoinNetwork, tx model.BitcoinTransaction, feed *OrdinalsFeed) bool {
	switch predicate.Kind {
	case chainhook.BitcoinKindBlock:
		return true

	case chainhook.BitcoinKindTxid:
		return predicate.Txid.Matches(model.NormalizeHex(tx.Txid))

	case chainhook.BitcoinKindInputsTxid:
		want := predicate.InputsTxid
		for _, in := range tx.Inputs {
			if chainhook.EqualsWildcard(model.NormalizeHex(want.Txid), model.NormalizeHex(in.PreviousTxid)) && in.PreviousVout == want.Vout {
				return true
			}
		}
		return false

	case chainhook.BitcoinKindInputsWitnessScript:
		for _, in := range tx.Inputs {
			elem := in.LastWitnessElement()
			if elem == "" {
				continue
			}
			if predicate.InputsWitnessScript.Matches(model.NormalizeHex(elem)) {
				return true
			}
		}
		return false

	case chainhook.BitcoinKindOutputsOpReturn:
		for _, out := range tx.Outputs {
			payload, ok := out.OpReturnPayload()
			if !ok {
				continue
			}
			if predicate.OutputsOpReturn.Matches(payload) {
				return true
			}
		}
		return false

	case chainhook.BitcoinKindOutputsP2PKH:
		return matchAddressFamily(tx, predicate.OutputsAddress, familyP2PKH, network)
	case chainhook.BitcoinKindOutputsP2SH:
		return matchAddressFamily(tx, predicate.OutputsAddress, familyP2SH, network)
	case chainhook.BitcoinKindOutputsP2WPKH:
		return matchAddressFamily(tx, predicate.OutputsAddress, familyP2WPKH, network)
	case chainhook.BitcoinKindOutputsP2WSH:
		return matchAddressFamily(tx, predicate.OutputsAddress, familyP2WSH, network)

	case chainhook.BitcoinKindOutputsDescriptor:
		return matchDescriptor(tx, predicate.OutputsDescriptor, network)

	case chainhook.BitcoinKindStacksProtocol:
		return matchStacksProtocol(tx, predicate.StacksProtocol)

	case chainhook.BitcoinKindOrdinalsProtocol:
		return feed.reveals(tx.Txid) || feed.transfers(tx.Txid)

	default:
		return false
	}
}

func matchAddressFamily(tx model.BitcoinTransaction, want *chainhook.StringMatch, family addressFamily, network chainhook.BitcoinNetwork) bool {
	for _, out := range tx.Outputs {
		addr, ok := resolveOutputAddress(out, family, network)
		if !ok {
			continue
		}
		if want.Matches(addr) {
			return true
		}
	}
	return false
}

// matchDescriptor resolves the `addr(...)` form of an output descriptor to
// a concrete address and compares it against every output; any other
// descriptor form never matches (see DESIGN.md).
func matchDescriptor(tx model.BitcoinTransaction, want *chainhook.DescriptorMatch, network chainhook.BitcoinNetwork) bool {
	expr := strings.TrimSpace(want.Expression)
	if !strings.HasPrefix(expr, "addr(") || !strings.HasSuffix(expr, ")") {
		return false
	}
	target := strings.ToLower(expr[len("addr(") : len(expr)-1])
	for _, family := range []addressFamily{familyP2PKH, familyP2SH, familyP2WPKH, familyP2WSH} {
		for _, out := range tx.Outputs {
			addr, ok := resolveOutputAddress(out, family, network)
			if ok && strings.ToLower(addr) == target {
				return true
			}
		}
	}
	return false
}
