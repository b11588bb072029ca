package matcher

import (
	"encoding/hex"
	"testing"

	"github.com/stacks-network/chainhook-engine/pkg/chainhook"
	"github.com/stacks-network/chainhook-engine/pkg/model"
)

func TestMatchBitcoinBlockAlwaysMatches(t *testing.T) {
	predicate := chainhook.BitcoinPredicate{Kind: chainhook.BitcoinKindBlock}
	tx := model.BitcoinTransaction{Txid: "0xabc"}
	if !MatchBitcoin(predicate, chainhook.BitcoinMainnet, tx, nil) {
		t.Fatalf("expected block predicate to always match")
	}
}

func TestMatchBitcoinTxidExact(t *testing.T) {
	predicate := chainhook.BitcoinPredicate{
		Kind: chainhook.BitcoinKindTxid,
		Txid: &chainhook.StringMatch{Equals: "0xDEAD"},
	}
	tx := model.BitcoinTransaction{Txid: "dead"}
	if !MatchBitcoin(predicate, chainhook.BitcoinMainnet, tx, nil) {
		t.Fatalf("expected case-insensitive txid match")
	}
}

func TestMatchBitcoinTxidNoMatch(t *testing.T) {
	predicate := chainhook.BitcoinPredicate{
		Kind: chainhook.BitcoinKindTxid,
		Txid: &chainhook.StringMatch{Equals: "0xdead"},
	}
	tx := model.BitcoinTransaction{Txid: "beef"}
	if MatchBitcoin(predicate, chainhook.BitcoinMainnet, tx, nil) {
		t.Fatalf("expected no match")
	}
}

func TestMatchBitcoinInputsTxid(t *testing.T) {
	predicate := chainhook.BitcoinPredicate{
		Kind:       chainhook.BitcoinKindInputsTxid,
		InputsTxid: &chainhook.InputsTxidMatch{Txid: "0xcafe", Vout: 1},
	}
	tx := model.BitcoinTransaction{Inputs: []model.BitcoinTxIn{
		{PreviousTxid: "cafe", PreviousVout: 1},
	}}
	if !MatchBitcoin(predicate, chainhook.BitcoinMainnet, tx, nil) {
		t.Fatalf("expected inputs_txid match")
	}
}

func TestMatchBitcoinInputsTxidWrongVout(t *testing.T) {
	predicate := chainhook.BitcoinPredicate{
		Kind:       chainhook.BitcoinKindInputsTxid,
		InputsTxid: &chainhook.InputsTxidMatch{Txid: "0xcafe", Vout: 1},
	}
	tx := model.BitcoinTransaction{Inputs: []model.BitcoinTxIn{
		{PreviousTxid: "cafe", PreviousVout: 0},
	}}
	if MatchBitcoin(predicate, chainhook.BitcoinMainnet, tx, nil) {
		t.Fatalf("expected no match on vout mismatch")
	}
}

func TestMatchBitcoinInputsWitnessScript(t *testing.T) {
	predicate := chainhook.BitcoinPredicate{
		Kind:                chainhook.BitcoinKindInputsWitnessScript,
		InputsWitnessScript: &chainhook.StringMatch{StartsWith: "0x51"},
	}
	tx := model.BitcoinTransaction{Inputs: []model.BitcoinTxIn{
		{Witness: []string{"aa", "51ae"}},
	}}
	if !MatchBitcoin(predicate, chainhook.BitcoinMainnet, tx, nil) {
		t.Fatalf("expected witness script match on last element")
	}
}

func TestMatchBitcoinOutputsOpReturn(t *testing.T) {
	payload := []byte("hello")
	script := append([]byte{0x6a, byte(len(payload))}, payload...)
	predicate := chainhook.BitcoinPredicate{
		Kind:            chainhook.BitcoinKindOutputsOpReturn,
		OutputsOpReturn: &chainhook.StringMatch{Equals: "0x" + hex.EncodeToString(payload)},
	}
	tx := model.BitcoinTransaction{Outputs: []model.BitcoinTxOut{
		{ScriptPubKeyHex: hex.EncodeToString(script)},
	}}
	if !MatchBitcoin(predicate, chainhook.BitcoinMainnet, tx, nil) {
		t.Fatalf("expected op_return payload match")
	}
}

func TestMatchBitcoinOutputsP2PKH(t *testing.T) {
	h := hash20()
	script := append([]byte{0x76, 0xa9, 0x14}, append(h, 0x88, 0xac)...)
	predicate := chainhook.BitcoinPredicate{
		Kind:           chainhook.BitcoinKindOutputsP2PKH,
		OutputsAddress: &chainhook.StringMatch{Equals: chainhook.Wildcard},
	}
	tx := model.BitcoinTransaction{Outputs: []model.BitcoinTxOut{
		{ScriptPubKeyHex: hex.EncodeToString(script)},
	}}
	if !MatchBitcoin(predicate, chainhook.BitcoinMainnet, tx, nil) {
		t.Fatalf("expected p2pkh wildcard match")
	}
}

func TestMatchBitcoinOutputsDescriptorUnsupportedForm(t *testing.T) {
	predicate := chainhook.BitcoinPredicate{
		Kind:              chainhook.BitcoinKindOutputsDescriptor,
		OutputsDescriptor: &chainhook.DescriptorMatch{Expression: "wpkh(xpub.../0/*)"},
	}
	tx := model.BitcoinTransaction{Outputs: []model.BitcoinTxOut{{ScriptPubKeyHex: "76a914"}}}
	if MatchBitcoin(predicate, chainhook.BitcoinMainnet, tx, nil) {
		t.Fatalf("expected unsupported descriptor form to never match")
	}
}

func TestMatchBitcoinStacksProtocol(t *testing.T) {
	payload := append([]byte(DefaultStacksMarker), '[')
	script := append([]byte{0x6a, byte(len(payload))}, payload...)
	predicate := chainhook.BitcoinPredicate{
		Kind:           chainhook.BitcoinKindStacksProtocol,
		StacksProtocol: &chainhook.StacksProtocolMatch{Operation: chainhook.OperationBlockCommit},
	}
	tx := model.BitcoinTransaction{Outputs: []model.BitcoinTxOut{
		{ScriptPubKeyHex: hex.EncodeToString(script)},
	}}
	if !MatchBitcoin(predicate, chainhook.BitcoinMainnet, tx, nil) {
		t.Fatalf("expected stacks_protocol match")
	}
}

func TestMatchBitcoinOrdinalsProtocolNilFeed(t *testing.T) {
	predicate := chainhook.BitcoinPredicate{
		Kind:             chainhook.BitcoinKindOrdinalsProtocol,
		OrdinalsProtocol: &chainhook.OrdinalsProtocolMatch{},
	}
	tx := model.BitcoinTransaction{Txid: "abc"}
	if MatchBitcoin(predicate, chainhook.BitcoinMainnet, tx, nil) {
		t.Fatalf("expected no match with nil feed")
	}
}

func TestMatchBitcoinOrdinalsProtocolRevealed(t *testing.T) {
	predicate := chainhook.BitcoinPredicate{
		Kind:             chainhook.BitcoinKindOrdinalsProtocol,
		OrdinalsProtocol: &chainhook.OrdinalsProtocolMatch{},
	}
	feed := &OrdinalsFeed{RevealedTxids: map[string]bool{"abc": true}}
	tx := model.BitcoinTransaction{Txid: "ABC"}
	if !MatchBitcoin(predicate, chainhook.BitcoinMainnet, tx, feed) {
		t.Fatalf("expected case-insensitive revealed match")
	}
}
