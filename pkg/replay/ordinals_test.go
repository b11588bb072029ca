package replay

import (
	"encoding/hex"
	"testing"

	"github.com/stacks-network/chainhook-engine/pkg/model"
)

func witnessHex(raw string) string {
	return hex.EncodeToString([]byte(raw))
}

func TestCompactBlockDetectsReveal(t *testing.T) {
	block := model.BitcoinBlock{
		BlockIdentifier: model.BlockIdentifier{Index: 100, Hash: "0xblock"},
		Transactions: []model.BitcoinTransaction{
			{
				Txid: "reveal-tx",
				Inputs: []model.BitcoinTxIn{
					{PreviousTxid: "prev", PreviousVout: 0, Witness: []string{witnessHex("garbage"), witnessHex("...ord...")}},
				},
			},
			{
				Txid:   "ordinary-tx",
				Inputs: []model.BitcoinTxIn{{PreviousTxid: "prev2", PreviousVout: 1, Witness: []string{witnessHex("nothing here")}}},
			},
		},
	}

	compacted := compactBlock(block)
	if compacted.Height != 100 {
		t.Fatalf("expected height 100, got %d", compacted.Height)
	}
	if len(compacted.Traversals) != 1 {
		t.Fatalf("expected exactly 1 traversal, got %d", len(compacted.Traversals))
	}
	if compacted.Traversals[0].Txid != "reveal-tx" {
		t.Fatalf("expected reveal-tx to be the revealed inscription, got %s", compacted.Traversals[0].Txid)
	}
	if compacted.Traversals[0].Transferred {
		t.Fatal("a backfilled traversal should never be pre-marked as a transfer")
	}
}

func TestCompactBlockSkipsTransactionsWithNoInputs(t *testing.T) {
	block := model.BitcoinBlock{
		BlockIdentifier: model.BlockIdentifier{Index: 1, Hash: "0xblock"},
		Transactions:    []model.BitcoinTransaction{{Txid: "coinbase-like"}},
	}
	compacted := compactBlock(block)
	if len(compacted.Traversals) != 0 {
		t.Fatalf("expected no traversals, got %d", len(compacted.Traversals))
	}
}
