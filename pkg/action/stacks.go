package action

import (
	"github.com/stacks-network/chainhook-engine/pkg/chainhook"
	"github.com/stacks-network/chainhook-engine/pkg/evaluator"
	"github.com/stacks-network/chainhook-engine/pkg/matcher"
	"github.com/stacks-network/chainhook-engine/pkg/model"
)

// StacksEventPayload is a matched transaction's event, serialised as a
// tagged object (exactly one of the four payload fields populated).
type StacksEventPayload struct {
	Kind  model.StacksEventKind `json:"type"`
	Ft    *model.FtEventData    `json:"ft,omitempty"`
	Nft   *model.NftEventData   `json:"nft,omitempty"`
	Stx   *model.StxEventData   `json:"stx,omitempty"`
	Print *PrintEventPayload    `json:"print,omitempty"`
}

// PrintEventPayload is model.PrintEventData with its Value optionally
// decoded, per spec.md §4.4's decode_clarity_values option.
type PrintEventPayload struct {
	ContractIdentifier string `json:"contract_identifier"`
	Value              string `json:"value"`
}

// StacksTransactionPayload is a matched Stacks transaction as it appears in
// an occurrence's block entry.
type StacksTransactionPayload struct {
	Txid               string                          `json:"txid"`
	Index              int                             `json:"index"`
	ContractCall       *model.ContractCallData         `json:"contract_call,omitempty"`
	ContractDeployment *model.ContractDeploymentData   `json:"contract_deployment,omitempty"`
	Events             []StacksEventPayload            `json:"events"`
}

func stacksBlockIdentifierPayload(id model.BlockIdentifier) BlockIdentifierPayload {
	return BlockIdentifierPayload{Index: id.Index, Hash: model.NormalizeHex(id.Hash)}
}

func stacksEventPayload(e model.StacksEvent, decodeClarityValues bool) StacksEventPayload {
	out := StacksEventPayload{Kind: e.Kind, Ft: e.FtEvent, Nft: e.NftEvent, Stx: e.StxEvent}
	if e.PrintEvent != nil {
		value := e.PrintEvent.Value
		if decodeClarityValues {
			value = decodeClarityValue(value)
		}
		out.Print = &PrintEventPayload{ContractIdentifier: e.PrintEvent.ContractIdentifier, Value: value}
	}
	return out
}

// decodeClarityValue hex-decodes a value and returns the decoded bytes as a
// string; a value that isn't hex-encoded (already a readable repr-string, as
// most fixtures in this codebase use) passes through unchanged. The decoded
// bytes are not deserialized as a Clarity value, so a serialized Clarity
// value comes out as its raw binary encoding, not a readable repr.
func decodeClarityValue(raw string) string {
	decoded, err := model.DecodeHex(raw)
	if err != nil {
		return raw
	}
	return string(decoded)
}

func stacksTransactionPayload(tx model.StacksTransaction, predicate chainhook.StacksPredicate, captureAllEvents, decodeClarityValues bool) StacksTransactionPayload {
	events := tx.Events
	if !captureAllEvents {
		switch predicate.Kind {
		case chainhook.StacksKindFtEvent, chainhook.StacksKindNftEvent, chainhook.StacksKindStxEvent, chainhook.StacksKindPrintEvent:
			events = matcher.MatchingEvents(predicate, tx)
		}
	}
	payloadEvents := make([]StacksEventPayload, len(events))
	for i, e := range events {
		payloadEvents[i] = stacksEventPayload(e, decodeClarityValues)
	}
	return StacksTransactionPayload{
		Txid:               model.NormalizeHex(tx.Txid),
		Index:              tx.Index,
		ContractCall:       tx.ContractCall,
		ContractDeployment: tx.ContractDeployment,
		Events:             payloadEvents,
	}
}

func stacksBlockOccurrencePayload(occ evaluator.BlockOccurrence[model.StacksBlock], predicate chainhook.StacksPredicate, captureAllEvents, decodeClarityValues bool) BlockPayload {
	txs := make([]interface{}, len(occ.TransactionIndexes))
	for i, idx := range occ.TransactionIndexes {
		txs[i] = stacksTransactionPayload(occ.Block.Transactions[idx], predicate, captureAllEvents, decodeClarityValues)
	}
	return BlockPayload{
		BlockIdentifier:       stacksBlockIdentifierPayload(occ.Block.BlockIdentifier),
		ParentBlockIdentifier: stacksBlockIdentifierPayload(occ.Block.ParentBlockIdentifier),
		Timestamp:             occ.Block.Timestamp,
		Transactions:          txs,
	}
}

// CompileStacks turns a Stacks trigger into the occurrence named by spec's
// action, honouring capture_all_events and decode_clarity_values.
func CompileStacks(trigger evaluator.Trigger[model.StacksBlock], spec chainhook.StacksChainhookSpecification) (Occurrence, error) {
	apply := make([]BlockPayload, len(trigger.Apply))
	for i, occ := range trigger.Apply {
		apply[i] = stacksBlockOccurrencePayload(occ, spec.Predicate, spec.CaptureAllEvents, spec.DecodeClarityValues)
	}
	rollback := make([]BlockPayload, len(trigger.Rollback))
	for i, occ := range trigger.Rollback {
		rollback[i] = stacksBlockOccurrencePayload(occ, spec.Predicate, spec.CaptureAllEvents, spec.DecodeClarityValues)
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
