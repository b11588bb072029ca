package replay

import (
	"fmt"
	"strings"

	"github.com/stacks-network/chainhook-engine/pkg/matcher"
	"github.com/stacks-network/chainhook-engine/pkg/model"
	"github.com/stacks-network/chainhook-engine/pkg/ordinalcache"
)

// Storage is the process-local satoshi-range carry spec.md §9 describes:
// a map from an inscription's origin satoshi to the output that currently
// owns it, threaded through the replay loop one block at a time. It is
// owned by a single Driver.Scan call and never shared across goroutines or
// hoisted to a package variable.
type Storage struct {
	owningOutput map[uint64]string
}

// NewStorage returns an empty Storage, ready to absorb the first block of
// a scan.
func NewStorage() *Storage {
	return &Storage{owningOutput: make(map[uint64]string)}
}

// Absorb folds one height's cached traversals into Storage and returns the
// matcher.OrdinalsFeed the OrdinalsProtocol predicate consults for that
// block: txids that reveal a new inscription, and txids that move one an
// earlier block already revealed.
func (s *Storage) Absorb(traversals []ordinalcache.Traversal) *matcher.OrdinalsFeed {
	feed := &matcher.OrdinalsFeed{
		RevealedTxids:    make(map[string]bool),
		TransferredTxids: make(map[string]bool),
	}
	for _, t := range traversals {
		txid := strings.ToLower(t.Txid)
		if t.Transferred {
			feed.TransferredTxids[txid] = true
		} else {
			feed.RevealedTxids[txid] = true
		}
		s.owningOutput[t.OriginSatoshi] = t.OwningOutput
	}
	return feed
}

// Owner returns the output currently holding originSatoshi's inscription,
// or ("", false) if Storage has not observed a traversal for it yet.
func (s *Storage) Owner(originSatoshi uint64) (string, bool) {
	out, ok := s.owningOutput[originSatoshi]
	return out, ok
}

// AugmentTransfers walks block's transactions against the owning-output
// carry and marks feed's TransferredTxids for any transaction spending an
// output Storage currently has on file for a tracked inscription, moving
// that inscription's ownership to the spending transaction's first output.
// The cache's own backfilled Traversals only ever record reveals (see
// pkg/replay/ordinals.go); transfer tracking depends on sequential
// block-to-block carry, so it happens only here, in the single-threaded
// scan loop, never during the concurrent cache backfill.
func (s *Storage) AugmentTransfers(block model.BitcoinBlock, feed *matcher.OrdinalsFeed) {
	for _, tx := range block.Transactions {
		for _, in := range tx.Inputs {
			spent := fmt.Sprintf("%s:%d", in.PreviousTxid, in.PreviousVout)
			for origin, owner := range s.owningOutput {
				if owner != spent {
					continue
				}
				feed.TransferredTxids[strings.ToLower(tx.Txid)] = true
				s.owningOutput[origin] = fmt.Sprintf("%s:%d", tx.Txid, 0)
			}
		}
	}
}
