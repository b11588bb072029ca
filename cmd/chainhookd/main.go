package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stacks-network/chainhook-engine/pkg/bitcoinrpc"
	"github.com/stacks-network/chainhook-engine/pkg/chainhook"
	"github.com/stacks-network/chainhook-engine/pkg/config"
	"github.com/stacks-network/chainhook-engine/pkg/dispatch"
	"github.com/stacks-network/chainhook-engine/pkg/evaluator"
	"github.com/stacks-network/chainhook-engine/pkg/ordinalcache"
	"github.com/stacks-network/chainhook-engine/pkg/replay"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	var (
		specPath = flag.String("specifications", "", "path to the chainhook specification YAML file (overrides CHAINHOOK_SPECIFICATIONS_PATH)")
		network  = flag.String("network", "mainnet", "Bitcoin network to evaluate chainhooks against")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *specPath != "" {
		cfg.SpecificationsPath = *specPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	rpcClient, err := bitcoinrpc.NewClient(bitcoinrpc.Config{
		Host:           cfg.BitcoinRPCHost,
		User:           cfg.BitcoinRPCUser,
		Pass:           cfg.BitcoinRPCPass,
		DisableTLS:     cfg.BitcoinRPCDisableTLS,
		MaxRetries:     cfg.BitcoinRPCMaxRetries,
		RetryBaseDelay: cfg.BitcoinRPCRetryBase,
		RetryMaxDelay:  cfg.BitcoinRPCRetryMax,
	})
	if err != nil {
		log.Fatalf("failed to connect to bitcoin node: %v", err)
	}
	defer rpcClient.Close()
	log.Printf("connected to bitcoin node at %s", cfg.BitcoinRPCHost)

	var cache *ordinalcache.Store
	if cfg.OrdinalCacheURL != "" {
		cache, err = ordinalcache.Open(context.Background(), cfg.OrdinalCacheURL,
			ordinalcache.WithLogger(log.New(log.Writer(), "[ordinalcache] ", log.LstdFlags)))
		if err != nil {
			if cfg.OrdinalCacheRequired {
				log.Fatalf("ordinal cache required but unavailable: %v", err)
			}
			log.Printf("ordinal cache unavailable, running degraded (ordinals_protocol hooks will fail): %v", err)
			cache = nil
		} else {
			defer cache.Close()
			log.Printf("connected to ordinal cache")
		}
	} else if cfg.OrdinalCacheRequired {
		log.Fatalf("ordinal cache required but ORDINAL_CACHE_DATABASE_URL is empty")
	}

	specFile, err := config.LoadSpecifications(cfg.SpecificationsPath)
	if err != nil {
		log.Fatalf("failed to load chainhook specifications: %v", err)
	}

	bitcoinSpecs, err := specFile.BitcoinFor(chainhook.BitcoinNetwork(*network))
	if err != nil {
		log.Fatalf("failed to project chainhook specifications onto %s: %v", *network, err)
	}
	if len(bitcoinSpecs) == 0 {
		log.Printf("no bitcoin chainhooks configured for network %s, nothing to do", *network)
	}

	registry := evaluator.NewRegistry(nil)
	sink := dispatch.NewSink(dispatch.WithLogger(log.New(log.Writer(), "[dispatch] ", log.LstdFlags)))

	ctx, cancel := context.WithCancel(context.Background())

	metricsReg := prometheus.NewRegistry()
	metrics := newScanMetrics(metricsReg)
	serveMetrics(cfg.MetricsAddr, metricsReg)
	serveHealth(ctx, cfg.HealthAddr)

	var wg sync.WaitGroup
	for _, spec := range bitcoinSpecs {
		spec := spec
		driver := replay.NewDriver(rpcClient, cache, registry, sink, replay.Config{
			FanOut:             cfg.OrdinalCacheFanOut,
			TipConfirmationLag: cfg.TipConfirmationLag,
		}, log.New(log.Writer(), "["+spec.UUID+"] ", log.LstdFlags))

		wg.Add(1)
		go func() {
			defer wg.Done()
			runHook(ctx, driver, spec, cfg.ScanPollInterval, metrics)
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down, waiting for in-flight scans to finish")
	cancel()
	wg.Wait()
	log.Printf("chainhookd stopped")
}

// runHook drives one chainhook specification to completion. A bounded
// specification (end_block set) is scanned once; an open-ended one is
// scanned repeatedly, advancing start_block past whatever the previous pass
// covered and waiting pollInterval between passes, until ctx is cancelled.
func runHook(ctx context.Context, driver *replay.Driver, spec chainhook.BitcoinChainhookSpecification, pollInterval time.Duration, metrics *scanMetrics) {
	if spec.EndBlock != nil {
		summary, err := driver.Scan(ctx, spec)
		logScanResult(spec.UUID, summary, err)
		metrics.observe(spec.UUID, summary, err)
		return
	}

	next := *spec.StartBlock
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		iteration := spec
		iteration.StartBlock = &next

		summary, err := driver.Scan(ctx, iteration)
		logScanResult(spec.UUID, summary, err)
		metrics.observe(spec.UUID, summary, err)
		if err != nil {
			if err == replay.ErrCancelled {
				return
			}
		} else {
			next += summary.BlocksScanned
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(pollInterval):
		}
	}
}

func logScanResult(uuid string, summary replay.Summary, err error) {
	if err != nil {
		log.Printf("hook %s: scan failed: %v", uuid, err)
		return
	}
	log.Printf("hook %s: scanned %d blocks, triggered %d actions, %d dispatch failures",
		uuid, summary.BlocksScanned, summary.ActionsTriggered, len(summary.DispatchFailures))
}
