package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stacks-network/chainhook-engine/pkg/chainhook"
)

const sampleSpecYAML = `
bitcoin:
  - uuid: hook-1
    name: watch txid
    version: 1
    networks:
      mainnet:
        enabled: true
        predicate:
          kind: txid
          txid:
            equals: "abc123"
        action:
          kind: noop
stacks:
  - uuid: hook-2
    name: watch print event
    version: 1
    networks:
      mainnet:
        enabled: true
        predicate:
          kind: print_event
          print_event:
            contract_identifier: "*"
            contains: "*"
        action:
          kind: noop
`

func writeSampleSpecFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "specifications.yaml")
	if err := os.WriteFile(path, []byte(sampleSpecYAML), 0o644); err != nil {
		t.Fatalf("write sample spec file: %v", err)
	}
	return path
}

func TestLoadSpecificationsParsesBitcoinAndStacks(t *testing.T) {
	file, err := LoadSpecifications(writeSampleSpecFile(t))
	if err != nil {
		t.Fatalf("load specifications: %v", err)
	}
	if len(file.Bitcoin) != 1 || len(file.Stacks) != 1 {
		t.Fatalf("expected 1 bitcoin and 1 stacks specification, got %d/%d", len(file.Bitcoin), len(file.Stacks))
	}
}

func TestBitcoinForProjectsOnlyMatchingNetwork(t *testing.T) {
	file, err := LoadSpecifications(writeSampleSpecFile(t))
	if err != nil {
		t.Fatalf("load specifications: %v", err)
	}

	mainnet, err := file.BitcoinFor(chainhook.BitcoinMainnet)
	if err != nil {
		t.Fatalf("project mainnet: %v", err)
	}
	if len(mainnet) != 1 {
		t.Fatalf("expected 1 mainnet specification, got %d", len(mainnet))
	}

	testnet, err := file.BitcoinFor(chainhook.BitcoinTestnet)
	if err != nil {
		t.Fatalf("project testnet: %v", err)
	}
	if len(testnet) != 0 {
		t.Fatalf("expected 0 testnet specifications, got %d", len(testnet))
	}
}

func TestStacksForProjectsOnlyMatchingNetwork(t *testing.T) {
	file, err := LoadSpecifications(writeSampleSpecFile(t))
	if err != nil {
		t.Fatalf("load specifications: %v", err)
	}

	mainnet, err := file.StacksFor(chainhook.StacksMainnet)
	if err != nil {
		t.Fatalf("project mainnet: %v", err)
	}
	if len(mainnet) != 1 {
		t.Fatalf("expected 1 mainnet specification, got %d", len(mainnet))
	}
}
