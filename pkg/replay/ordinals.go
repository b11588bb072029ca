package replay

import (
	"fmt"
	"hash/fnv"

	"github.com/stacks-network/chainhook-engine/pkg/model"
	"github.com/stacks-network/chainhook-engine/pkg/ordinalcache"
)

// ordEnvelopeMarker is the ASCII tag ("ord") every inscription reveal's
// witness envelope carries inside its OP_FALSE OP_IF ... OP_ENDIF script,
// per the ordinals protocol.
const ordEnvelopeMarker = "ord"

// compactBlock derives the CompactedBlock spec.md §4.7 asks the ordinal
// cache backfill to commit: one Traversal per transaction that reveals a
// new inscription (its first input's witness carries an ord envelope).
// Transfers are not recorded here; Storage.AugmentTransfers detects them
// during the scan.
//
// Resolving the true origin satoshi of a reveal requires walking the
// complete UTXO set's cumulative sat offsets, which is out of scope here
// (see DESIGN.md); this derives a stable per-outpoint identifier instead,
// sufficient to track ownership continuity across blocks without claiming
// to recover the chain's absolute ordinal numbering.
func compactBlock(block model.BitcoinBlock) *ordinalcache.CompactedBlock {
	var traversals []ordinalcache.Traversal

	for _, tx := range block.Transactions {
		if len(tx.Inputs) == 0 {
			continue
		}
		if reveals(tx) {
			traversals = append(traversals, ordinalcache.Traversal{
				Txid:          tx.Txid,
				OriginSatoshi: originSatoshi(tx.Inputs[0]),
				OwningOutput:  owningOutput(tx, 0),
				Transferred:   false,
			})
			continue
		}
	}

	return &ordinalcache.CompactedBlock{
		Height:     block.BlockIdentifier.Index,
		Hash:       block.BlockIdentifier.Hash,
		Traversals: traversals,
	}
}

// reveals reports whether tx's first input carries an ordinals inscription
// envelope in its witness stack.
func reveals(tx model.BitcoinTransaction) bool {
	for _, elem := range tx.Inputs[0].Witness {
		if containsMarker(elem, ordEnvelopeMarker) {
			return true
		}
	}
	return false
}

func containsMarker(hexElement, marker string) bool {
	raw, err := model.DecodeHex(hexElement)
	if err != nil {
		return false
	}
	target := []byte(marker)
	if len(raw) < len(target) {
		return false
	}
	for i := 0; i+len(target) <= len(raw); i++ {
		match := true
		for j := range target {
			if raw[i+j] != target[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// originSatoshi derives a stable identifier for the inscription revealed
// by spending in, as the 64-bit FNV-1a hash of its previous outpoint
// ("txid:vout"). This is a tracking key, not the inscription's true ordinal
// number.
func originSatoshi(in model.BitcoinTxIn) uint64 {
	h := fnv.New64a()
	h.Write([]byte(fmt.Sprintf("%s:%d", in.PreviousTxid, in.PreviousVout)))
	return h.Sum64()
}

func owningOutput(tx model.BitcoinTransaction, vout uint32) string {
	return fmt.Sprintf("%s:%d", tx.Txid, vout)
}
