package action

import (
	"github.com/stacks-network/chainhook-engine/pkg/chainhook"
	"github.com/stacks-network/chainhook-engine/pkg/evaluator"
	"github.com/stacks-network/chainhook-engine/pkg/model"
)

// BitcoinTxInPayload mirrors model.BitcoinTxIn for serialisation.
type BitcoinTxInPayload struct {
	PreviousTxid string   `json:"previous_txid"`
	PreviousVout uint32   `json:"previous_vout"`
	Witness      []string `json:"witness,omitempty"`
}

// BitcoinTxOutPayload mirrors model.BitcoinTxOut for serialisation.
type BitcoinTxOutPayload struct {
	ScriptPubKeyHex string `json:"script_pub_key"`
	ValueSats       uint64 `json:"value"`
}

// BitcoinTransactionPayload is a matched Bitcoin transaction as it appears
// in an occurrence's block entry.
type BitcoinTransactionPayload struct {
	Txid    string                `json:"txid"`
	Index   int                   `json:"index"`
	Inputs  []BitcoinTxInPayload  `json:"inputs"`
	Outputs []BitcoinTxOutPayload `json:"outputs"`
}

func bitcoinBlockIdentifierPayload(id model.BlockIdentifier) BlockIdentifierPayload {
	return BlockIdentifierPayload{Index: id.Index, Hash: model.NormalizeHex(id.Hash)}
}

func bitcoinTransactionPayload(tx model.BitcoinTransaction) BitcoinTransactionPayload {
	inputs := make([]BitcoinTxInPayload, len(tx.Inputs))
	for i, in := range tx.Inputs {
		inputs[i] = BitcoinTxInPayload{
			PreviousTxid: model.NormalizeHex(in.PreviousTxid),
			PreviousVout: in.PreviousVout,
			Witness:      in.Witness,
		}
	}
	outputs := make([]BitcoinTxOutPayload, len(tx.Outputs))
	for i, out := range tx.Outputs {
		outputs[i] = BitcoinTxOutPayload{ScriptPubKeyHex: out.ScriptPubKeyHex, ValueSats: out.ValueSats}
	}
	return BitcoinTransactionPayload{
		Txid:    model.NormalizeHex(tx.Txid),
		Index:   tx.Index,
		Inputs:  inputs,
		Outputs: outputs,
	}
}

func bitcoinBlockOccurrencePayload(occ evaluator.BlockOccurrence[model.BitcoinBlock]) BlockPayload {
	txs := make([]interface{}, len(occ.TransactionIndexes))
	for i, idx := range occ.TransactionIndexes {
		txs[i] = bitcoinTransactionPayload(occ.Block.Transactions[idx])
	}
	return BlockPayload{
		BlockIdentifier:       bitcoinBlockIdentifierPayload(occ.Block.BlockIdentifier),
		ParentBlockIdentifier: bitcoinBlockIdentifierPayload(occ.Block.ParentBlockIdentifier),
		Timestamp:             occ.Block.Timestamp,
		Transactions:          txs,
	}
}

// CompileBitcoin turns a Bitcoin trigger into the occurrence named by spec's
// action.
func CompileBitcoin(trigger evaluator.Trigger[model.BitcoinBlock], spec chainhook.BitcoinChainhookSpecification) (Occurrence, error) {
	apply := make([]BlockPayload, len(trigger.Apply))
	for i, occ := range trigger.Apply {
		apply[i] = bitcoinBlockOccurrencePayload(occ)
	}
	rollback := make([]BlockPayload, len(trigger.Rollback))
	for i, occ := range trigger.Rollback {
		rollback[i] = bitcoinBlockOccurrencePayload(occ)
	}
	payload := Payload{
		Apply:    apply,
		Rollback: rollback,
		Chainhook: ChainhookPayload{
			UUID:      spec.UUID,
			Predicate: spec.Predicate,
			Action:    spec.Action.Kind,
		},
	}
	return compileByActionKind(spec.Action, payload)
}
