// Package replay implements the Bitcoin Replay Driver of spec.md §4.5: a
// single-threaded scan loop that fetches a height range from a Bitcoin
// node, standardises each block, evaluates it against one projected
// chainhook, and dispatches the resulting occurrences to a sink.
package replay

import (
	"context"
	"fmt"
	"log"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/stacks-network/chainhook-engine/pkg/action"
	"github.com/stacks-network/chainhook-engine/pkg/bitcoinrpc"
	"github.com/stacks-network/chainhook-engine/pkg/chainhook"
	"github.com/stacks-network/chainhook-engine/pkg/evaluator"
	"github.com/stacks-network/chainhook-engine/pkg/matcher"
	"github.com/stacks-network/chainhook-engine/pkg/model"
	"github.com/stacks-network/chainhook-engine/pkg/ordinalcache"
)

// BlockSource is the subset of *bitcoinrpc.Client the driver depends on;
// narrowing to an interface lets tests drive the scan loop with a fake
// node instead of a live one.
type BlockSource interface {
	BlockChainInfo(ctx context.Context) (*btcjson.GetBlockChainInfoResult, error)
	BlockHash(ctx context.Context, height int64) (*chainhash.Hash, error)
	Block(ctx context.Context, hash *chainhash.Hash, height int64) (*bitcoinrpc.BlockVerbosity3, error)
}

// Sink is the external side of action dispatch: issuing an HTTP POST,
// appending to a file, or handing a Data occurrence to an in-process
// consumer. The driver never retries a failed Dispatch, per spec.md §4.6.
type Sink interface {
	Dispatch(ctx context.Context, occ action.Occurrence) error
}

// Summary is the result of one Scan call, per spec.md §4.5 step 5.
type Summary struct {
	BlocksScanned    uint64
	ActionsTriggered uint64
	DispatchFailures []ActionDispatchError
}

// Config configures a Driver's behaviour across every Scan call.
type Config struct {
	// FanOut bounds concurrent block downloads during ordinal cache
	// catch-up; 0 falls back to the package default of 8.
	FanOut int
	// TipConfirmationLag is subtracted from the chain tip when an
	// open-ended end_block is resolved. At 0 (the zero value and the
	// config default) the tip itself is scanned.
	TipConfirmationLag uint64
}

func (c Config) withDefaults() Config {
	if c.FanOut <= 0 {
		c.FanOut = 8
	}
	return c
}

// Driver runs spec.md §4.5's scan-replay loop for a single Bitcoin
// chainhook specification. A Driver is not safe for concurrent Scan calls
// against the same Registry/cache; the embedding environment is expected
// to run one Driver per specification, per spec.md §5.
type Driver struct {
	source   BlockSource
	cache    *ordinalcache.Store // nil when no ordinal-aware hook needs it
	registry *evaluator.Registry
	sink     Sink
	cfg      Config
	logger   *log.Logger
}

// NewDriver builds a Driver. cache may be nil; Scan fails with
// ordinalcache.ErrCacheUnavailable only if an OrdinalsProtocol predicate
// actually needs it.
func NewDriver(source BlockSource, cache *ordinalcache.Store, registry *evaluator.Registry, sink Sink, cfg Config, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.New(log.Writer(), "[replay] ", log.LstdFlags)
	}
	return &Driver{source: source, cache: cache, registry: registry, sink: sink, cfg: cfg.withDefaults(), logger: logger}
}

// Scan runs spec.md §4.5's steps 1-5 for one chainhook specification
// already projected onto a network, or fails with ErrConfigInvalid when
// spec itself fails validation or names no start_block.
func (d *Driver) Scan(ctx context.Context, spec chainhook.BitcoinChainhookSpecification) (Summary, error) {
	if err := spec.Validate(); err != nil {
		return Summary{}, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	if spec.StartBlock == nil {
		return Summary{}, fmt.Errorf("%w: start_block is required", ErrConfigInvalid)
	}
	start := *spec.StartBlock

	end, err := d.resolveEndBlock(ctx, spec.EndBlock)
	if err != nil {
		return Summary{}, err
	}

	ordinalAware := spec.Predicate.Kind == chainhook.BitcoinKindOrdinalsProtocol
	var storage *Storage
	var inscriptions map[uint64][]ordinalcache.Traversal
	if ordinalAware {
		storage = NewStorage()
		inscriptions, err = d.prepareOrdinalCache(ctx, start, end)
		if err != nil {
			return Summary{}, err
		}
	}

	hook := evaluator.HookSpec[model.BitcoinBlock]{
		UUID:                  spec.UUID,
		Enabled:                spec.Enabled,
		ExpireAfterOccurrence: spec.ExpireAfterOccurrence,
		TxCount: func(block model.BitcoinBlock) int { return len(block.Transactions) },
	}

	summary := Summary{}
	for height := start; height <= end; height++ {
		select {
		case <-ctx.Done():
			return summary, ErrCancelled
		default:
		}
		if !spec.InRange(height) {
			summary.BlocksScanned++
			continue
		}

		block, err := d.fetchAndStandardize(ctx, height)
		if err != nil {
			return summary, err
		}

		var feed *matcher.OrdinalsFeed
		if ordinalAware {
			feed = storage.Absorb(inscriptions[height])
			storage.AugmentTransfers(block, feed)
		}

		hook.Match = func(b model.BitcoinBlock, txIndex int) bool {
			return matcher.MatchBitcoin(spec.Predicate, spec.Network, b.Transactions[txIndex], feed)
		}

		event := evaluator.ChainEvent[model.BitcoinBlock]{Apply: []model.BitcoinBlock{block}}
		triggers, _ := evaluator.Evaluate(event, []evaluator.HookSpec[model.BitcoinBlock]{hook}, d.registry)

		for _, trigger := range triggers {
			occ, err := action.CompileBitcoin(trigger, spec)
			if err != nil {
				summary.DispatchFailures = append(summary.DispatchFailures, ActionDispatchError{UUID: spec.UUID, Reason: err})
				d.logger.Printf("compile failed for %s at height %d: %v", spec.UUID, height, err)
				continue
			}
			if err := d.sink.Dispatch(ctx, occ); err != nil {
				summary.DispatchFailures = append(summary.DispatchFailures, ActionDispatchError{UUID: spec.UUID, Reason: err})
				d.logger.Printf("dispatch failed for %s at height %d: %v", spec.UUID, height, err)
				continue
			}
			summary.ActionsTriggered++
		}

		summary.BlocksScanned++
	}

	return summary, nil
}

func (d *Driver) resolveEndBlock(ctx context.Context, configured *uint64) (uint64, error) {
	if configured != nil {
		return *configured, nil
	}
	info, err := d.source.BlockChainInfo(ctx)
	if err != nil {
		return 0, fmt.Errorf("replay: resolve chain tip: %w", err)
	}
	tip := uint64(info.Blocks)
	if tip < d.cfg.TipConfirmationLag {
		return 0, fmt.Errorf("%w: chain tip %d shorter than confirmation lag %d", ErrConfigInvalid, tip, d.cfg.TipConfirmationLag)
	}
	return tip - d.cfg.TipConfirmationLag, nil
}

func (d *Driver) fetchAndStandardize(ctx context.Context, height uint64) (model.BitcoinBlock, error) {
	hash, err := d.source.BlockHash(ctx, int64(height))
	if err != nil {
		return model.BitcoinBlock{}, err
	}
	raw, err := d.source.Block(ctx, hash, int64(height))
	if err != nil {
		return model.BitcoinBlock{}, err
	}
	block, err := standardizeBlock(raw)
	if err != nil {
		return model.BitcoinBlock{}, &BlockMalformedError{Height: height, Err: err}
	}
	return block, nil
}

// prepareOrdinalCache implements spec.md §4.5 step 3's ordinal-aware
// branch: consult the cache for end, catch up if stale, then return every
// inscription in [start, end].
func (d *Driver) prepareOrdinalCache(ctx context.Context, start, end uint64) (map[uint64][]ordinalcache.Traversal, error) {
	if d.cache == nil {
		return nil, ordinalcache.ErrCacheUnavailable
	}

	_, err := d.cache.FindCompactedBlockAt(ctx, end)
	stale := err == ordinalcache.ErrCompactedBlockNotFound
	if err != nil && !stale {
		return nil, err
	}

	if stale {
		latest, err := d.cache.FindLatestCompactedBlockKnown(ctx)
		if err != nil && err != ordinalcache.ErrCacheEmpty {
			return nil, err
		}
		catchupStart := start
		if err == nil {
			catchupStart = latest + 1
		}
		if err := d.cache.FetchAndCacheBlocks(ctx, catchupStart, end, d.cfg.FanOut, d.fetchCompactedBlock); err != nil {
			return nil, err
		}
	}

	return d.cache.FindAllInscriptions(ctx, start, end)
}

// fetchCompactedBlock is the ordinalcache.FetchBlockFunc driving catch-up:
// fetch and standardise the block, then derive its inscription traversals.
func (d *Driver) fetchCompactedBlock(ctx context.Context, height uint64) (*ordinalcache.CompactedBlock, error) {
	block, err := d.fetchAndStandardize(ctx, height)
	if err != nil {
		return nil, err
	}
	return compactBlock(block), nil
}
