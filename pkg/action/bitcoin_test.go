package action

import (
	"encoding/json"
	"testing"

	"github.com/stacks-network/chainhook-engine/pkg/chainhook"
	"github.com/stacks-network/chainhook-engine/pkg/evaluator"
	"github.com/stacks-network/chainhook-engine/pkg/model"
)

func sampleBitcoinTrigger() evaluator.Trigger[model.BitcoinBlock] {
	block := model.BitcoinBlock{
		BlockIdentifier:       model.BlockIdentifier{Index: 100, Hash: "AABB"},
		ParentBlockIdentifier: model.BlockIdentifier{Index: 99, Hash: "CCDD"},
		Timestamp:             1700000000,
		Transactions: []model.BitcoinTransaction{
			{Txid: "dead", Index: 0},
			{Txid: "beef", Index: 1},
		},
	}
	return evaluator.Trigger[model.BitcoinBlock]{
		ChainhookUUID: "hook-1",
		Apply: []evaluator.BlockOccurrence[model.BitcoinBlock]{
			{Block: block, TransactionIndexes: []int{1}},
		},
	}
}

func TestCompileBitcoinDataOccurrence(t *testing.T) {
	spec := chainhook.BitcoinChainhookSpecification{
		HookOptions: chainhook.HookOptions{UUID: "hook-1", Action: chainhook.Action{Kind: chainhook.ActionNoop}},
		Network:     chainhook.BitcoinMainnet,
		Predicate:   chainhook.BitcoinPredicate{Kind: chainhook.BitcoinKindBlock},
	}
	occ, err := CompileBitcoin(sampleBitcoinTrigger(), spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if occ.Kind != OccurrenceData {
		t.Fatalf("expected data occurrence, got %s", occ.Kind)
	}
	var payload Payload
	if err := json.Unmarshal(occ.Data.Payload, &payload); err != nil {
		t.Fatalf("payload did not round-trip: %v", err)
	}
	if len(payload.Apply) != 1 {
		t.Fatalf("expected 1 applied block, got %d", len(payload.Apply))
	}
	if len(payload.Apply[0].Transactions) != 1 {
		t.Fatalf("expected only the matched transaction, got %d", len(payload.Apply[0].Transactions))
	}
	if payload.Apply[0].BlockIdentifier.Hash != "0xaabb" {
		t.Fatalf("expected normalized hash, got %s", payload.Apply[0].BlockIdentifier.Hash)
	}
	if payload.Chainhook.UUID != "hook-1" {
		t.Fatalf("expected chainhook uuid to be carried")
	}
}

func TestCompileBitcoinFileOccurrence(t *testing.T) {
	spec := chainhook.BitcoinChainhookSpecification{
		HookOptions: chainhook.HookOptions{
			UUID: "hook-1",
			Action: chainhook.Action{
				Kind:       chainhook.ActionFileAppend,
				FileAppend: &chainhook.FileAppendAction{Path: "./out.jsonl"},
			},
		},
		Predicate: chainhook.BitcoinPredicate{Kind: chainhook.BitcoinKindBlock},
	}
	occ, err := CompileBitcoin(sampleBitcoinTrigger(), spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if occ.Kind != OccurrenceFile {
		t.Fatalf("expected file occurrence, got %s", occ.Kind)
	}
	if occ.File.Path != "./out.jsonl" {
		t.Fatalf("unexpected path: %s", occ.File.Path)
	}
	if len(occ.File.Bytes) == 0 {
		t.Fatalf("expected non-empty body")
	}
}

func TestCompileBitcoinHttpOccurrence(t *testing.T) {
	spec := chainhook.BitcoinChainhookSpecification{
		HookOptions: chainhook.HookOptions{
			UUID: "hook-1",
			Action: chainhook.Action{
				Kind:     chainhook.ActionHttpPost,
				HttpPost: &chainhook.HttpPostAction{URL: "https://example.com/hook", AuthorizationHeader: "Bearer token"},
			},
		},
		Predicate: chainhook.BitcoinPredicate{Kind: chainhook.BitcoinKindBlock},
	}
	occ, err := CompileBitcoin(sampleBitcoinTrigger(), spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if occ.Kind != OccurrenceHttp {
		t.Fatalf("expected http occurrence, got %s", occ.Kind)
	}
	if occ.Http.URL != "https://example.com/hook" || occ.Http.AuthorizationHeader != "Bearer token" {
		t.Fatalf("unexpected http occurrence fields: %+v", occ.Http)
	}
	if occ.Http.ContentType != "application/json" {
		t.Fatalf("expected json content type")
	}
}

func TestCompileBitcoinUnknownActionKind(t *testing.T) {
	spec := chainhook.BitcoinChainhookSpecification{
		HookOptions: chainhook.HookOptions{UUID: "hook-1"},
		Predicate:   chainhook.BitcoinPredicate{Kind: chainhook.BitcoinKindBlock},
	}
	if _, err := CompileBitcoin(sampleBitcoinTrigger(), spec); err == nil {
		t.Fatalf("expected error for unset action kind")
	}
}
