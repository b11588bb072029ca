package replay

import (
	"fmt"

	"github.com/stacks-network/chainhook-engine/pkg/bitcoinrpc"
	"github.com/stacks-network/chainhook-engine/pkg/model"
)

// standardizeBlock translates one getblock(verbosity=3) breakdown into the
// neutral block model the matcher and evaluator consume. A block missing
// the fields required to build an honest BlockIdentifier or transaction
// list is rejected outright rather than partially standardised, per
// spec.md §4.6 ("standardisation errors are fatal for the block").
func standardizeBlock(raw *bitcoinrpc.BlockVerbosity3) (model.BitcoinBlock, error) {
	if raw.Hash == "" {
		return model.BitcoinBlock{}, fmt.Errorf("missing block hash")
	}

	transactions := make([]model.BitcoinTransaction, len(raw.Tx))
	for i, tx := range raw.Tx {
		if tx.Txid == "" {
			return model.BitcoinBlock{}, fmt.Errorf("transaction %d missing txid", i)
		}
		transactions[i] = model.BitcoinTransaction{
			Txid:    tx.Txid,
			Index:   i,
			Inputs:  standardizeInputs(tx.Vin),
			Outputs: standardizeOutputs(tx.Vout),
		}
	}

	return model.BitcoinBlock{
		BlockIdentifier: model.BlockIdentifier{Index: uint64(raw.Height), Hash: model.NormalizeHex(raw.Hash)},
		ParentBlockIdentifier: model.BlockIdentifier{
			Index: uint64(raw.Height - 1),
			Hash:  model.NormalizeHex(raw.PreviousBlockHash),
		},
		Timestamp:    raw.Time,
		Transactions: transactions,
	}, nil
}

func standardizeInputs(vin []bitcoinrpc.VinVerbosity3) []model.BitcoinTxIn {
	inputs := make([]model.BitcoinTxIn, len(vin))
	for i, in := range vin {
		inputs[i] = model.BitcoinTxIn{
			PreviousTxid: in.Txid,
			PreviousVout: in.Vout,
			Witness:      in.Txinwitness,
		}
	}
	return inputs
}

func standardizeOutputs(vout []bitcoinrpc.VoutVerbosity3) []model.BitcoinTxOut {
	outputs := make([]model.BitcoinTxOut, len(vout))
	for i, out := range vout {
		outputs[i] = model.BitcoinTxOut{
			ScriptPubKeyHex: out.ScriptPubKey.Hex,
			ValueSats:       satoshisFromBTC(out.Value),
		}
	}
	return outputs
}

// satoshisFromBTC converts the RPC's fractional-BTC Value field to an
// integer satoshi count the neutral model uses.
func satoshisFromBTC(btc float64) uint64 {
	return uint64(btc*1e8 + 0.5)
}
