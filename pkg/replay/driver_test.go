package replay

import (
	"context"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/stacks-network/chainhook-engine/pkg/action"
	"github.com/stacks-network/chainhook-engine/pkg/bitcoinrpc"
	"github.com/stacks-network/chainhook-engine/pkg/chainhook"
	"github.com/stacks-network/chainhook-engine/pkg/evaluator"
)

type fakeSource struct {
	blocks    map[int64]*bitcoinrpc.BlockVerbosity3
	hashErr   error
	blockErr  error
	chainInfo *btcjson.GetBlockChainInfoResult
}

func (f *fakeSource) BlockChainInfo(ctx context.Context) (*btcjson.GetBlockChainInfoResult, error) {
	if f.chainInfo == nil {
		return &btcjson.GetBlockChainInfoResult{}, nil
	}
	return f.chainInfo, nil
}

func (f *fakeSource) BlockHash(ctx context.Context, height int64) (*chainhash.Hash, error) {
	if f.hashErr != nil {
		return nil, f.hashErr
	}
	return &chainhash.Hash{}, nil
}

func (f *fakeSource) Block(ctx context.Context, hash *chainhash.Hash, height int64) (*bitcoinrpc.BlockVerbosity3, error) {
	if f.blockErr != nil {
		return nil, f.blockErr
	}
	b, ok := f.blocks[height]
	if !ok {
		return &bitcoinrpc.BlockVerbosity3{}, nil
	}
	return b, nil
}

type fakeSink struct {
	occurrences []action.Occurrence
	dispatchErr error
}

func (f *fakeSink) Dispatch(ctx context.Context, occ action.Occurrence) error {
	if f.dispatchErr != nil {
		return f.dispatchErr
	}
	f.occurrences = append(f.occurrences, occ)
	return nil
}

func txidSpec(uuid string, start, end uint64, txid string) chainhook.BitcoinChainhookSpecification {
	return chainhook.BitcoinChainhookSpecification{
		HookOptions: chainhook.HookOptions{
			UUID:       uuid,
			StartBlock: &start,
			EndBlock:   &end,
			Enabled:    true,
			Action:     chainhook.Action{Kind: chainhook.ActionNoop},
		},
		Network: chainhook.BitcoinMainnet,
		Predicate: chainhook.BitcoinPredicate{
			Kind: chainhook.BitcoinKindTxid,
			Txid: &chainhook.StringMatch{Equals: "0x" + txid},
		},
	}
}

func oneBlockSource(height int64, hash, txid string) *fakeSource {
	return &fakeSource{
		blocks: map[int64]*bitcoinrpc.BlockVerbosity3{
			height: {
				Hash:   hash,
				Height: height,
				Tx:     []bitcoinrpc.TxVerbosity3{{Txid: txid}},
			},
		},
	}
}

func TestScanMatchesTxidAndDispatchesOnce(t *testing.T) {
	source := oneBlockSource(100, "blockhash", "tx1")
	sink := &fakeSink{}
	driver := NewDriver(source, nil, evaluator.NewRegistry(nil), sink, Config{}, nil)

	summary, err := driver.Scan(context.Background(), txidSpec("hook-1", 100, 100, "tx1"))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if summary.BlocksScanned != 1 {
		t.Fatalf("expected 1 block scanned, got %d", summary.BlocksScanned)
	}
	if summary.ActionsTriggered != 1 {
		t.Fatalf("expected 1 action triggered, got %d", summary.ActionsTriggered)
	}
	if len(sink.occurrences) != 1 {
		t.Fatalf("expected 1 dispatched occurrence, got %d", len(sink.occurrences))
	}
}

func TestScanRejectsMissingUUID(t *testing.T) {
	source := oneBlockSource(100, "blockhash", "tx1")
	driver := NewDriver(source, nil, evaluator.NewRegistry(nil), &fakeSink{}, Config{}, nil)

	spec := txidSpec("", 100, 100, "tx1")
	if _, err := driver.Scan(context.Background(), spec); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestScanPropagatesRpcFailure(t *testing.T) {
	source := &fakeSource{hashErr: errors.New("node unreachable")}
	driver := NewDriver(source, nil, evaluator.NewRegistry(nil), &fakeSink{}, Config{}, nil)

	_, err := driver.Scan(context.Background(), txidSpec("hook-1", 100, 100, "tx1"))
	if err == nil {
		t.Fatal("expected an error from the rpc failure")
	}
}

func TestScanReturnsBlockMalformedOnBadBreakdown(t *testing.T) {
	source := &fakeSource{blocks: map[int64]*bitcoinrpc.BlockVerbosity3{100: {}}}
	driver := NewDriver(source, nil, evaluator.NewRegistry(nil), &fakeSink{}, Config{}, nil)

	_, err := driver.Scan(context.Background(), txidSpec("hook-1", 100, 100, "tx1"))
	var malformed *BlockMalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected a BlockMalformedError, got %v", err)
	}
	if malformed.Height != 100 {
		t.Fatalf("expected malformed height 100, got %d", malformed.Height)
	}
}

func TestScanHonoursCancellation(t *testing.T) {
	source := oneBlockSource(100, "blockhash", "tx1")
	driver := NewDriver(source, nil, evaluator.NewRegistry(nil), &fakeSink{}, Config{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := driver.Scan(ctx, txidSpec("hook-1", 100, 100, "tx1"))
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if summary.BlocksScanned != 0 {
		t.Fatalf("expected 0 blocks scanned before cancellation, got %d", summary.BlocksScanned)
	}
}

func TestScanSkipsHeightsExcludedByBlocksAllowList(t *testing.T) {
	source := oneBlockSource(100, "blockhash", "tx1")
	sink := &fakeSink{}
	driver := NewDriver(source, nil, evaluator.NewRegistry(nil), sink, Config{}, nil)

	spec := txidSpec("hook-1", 100, 100, "tx1")
	spec.Blocks = []uint64{999}

	summary, err := driver.Scan(context.Background(), spec)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if summary.ActionsTriggered != 0 {
		t.Fatalf("expected 0 actions triggered, got %d", summary.ActionsTriggered)
	}
	if len(sink.occurrences) != 0 {
		t.Fatalf("expected no dispatched occurrences, got %d", len(sink.occurrences))
	}
}

func TestScanRecordsDispatchFailureWithoutAbortingOtherHeights(t *testing.T) {
	source := &fakeSource{
		blocks: map[int64]*bitcoinrpc.BlockVerbosity3{
			100: {Hash: "h100", Height: 100, Tx: []bitcoinrpc.TxVerbosity3{{Txid: "tx1"}}},
			101: {Hash: "h101", Height: 101, Tx: []bitcoinrpc.TxVerbosity3{{Txid: "tx1"}}},
		},
	}
	sink := &fakeSink{dispatchErr: errors.New("sink unavailable")}
	driver := NewDriver(source, nil, evaluator.NewRegistry(nil), sink, Config{}, nil)

	summary, err := driver.Scan(context.Background(), txidSpec("hook-1", 100, 101, "tx1"))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if summary.BlocksScanned != 2 {
		t.Fatalf("expected 2 blocks scanned, got %d", summary.BlocksScanned)
	}
	if len(summary.DispatchFailures) != 2 {
		t.Fatalf("expected 2 recorded dispatch failures, got %d", len(summary.DispatchFailures))
	}
}
