package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stacks-network/chainhook-engine/pkg/chainhook"
)

// SpecificationFile is the on-disk shape of the YAML document at
// SpecificationsPath: one list of Bitcoin chainhooks and one of Stacks
// chainhooks, each in the persisted multi-network "full specification"
// form pkg/chainhook.Select projects per-network.
type SpecificationFile struct {
	Bitcoin []chainhook.BitcoinChainhookFullSpecification `yaml:"bitcoin"`
	Stacks  []chainhook.StacksChainhookFullSpecification  `yaml:"stacks"`
}

// LoadSpecifications reads and parses the chainhook specification file at
// path. It does not validate individual specifications against a network;
// that happens lazily when a caller projects one onto a network via
// Select, since the same file may back several differently-networked
// replay drivers.
func LoadSpecifications(path string) (*SpecificationFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read specifications file %s: %w", path, err)
	}

	var file SpecificationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: parse specifications file %s: %w", path, err)
	}
	return &file, nil
}

// BitcoinFor projects every Bitcoin full specification in the file onto
// network, skipping (rather than failing on) specifications that don't
// target it.
func (f *SpecificationFile) BitcoinFor(network chainhook.BitcoinNetwork) ([]chainhook.BitcoinChainhookSpecification, error) {
	var out []chainhook.BitcoinChainhookSpecification
	for _, full := range f.Bitcoin {
		spec, err := full.Select(network)
		if err == chainhook.ErrNoSpecificationForNetwork {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: specification %s: %w", full.UUID, err)
		}
		out = append(out, *spec)
	}
	return out, nil
}

// StacksFor projects every Stacks full specification in the file onto
// network, skipping specifications that don't target it.
func (f *SpecificationFile) StacksFor(network chainhook.StacksNetwork) ([]chainhook.StacksChainhookSpecification, error) {
	var out []chainhook.StacksChainhookSpecification
	for _, full := range f.Stacks {
		spec, err := full.Select(network)
		if err == chainhook.ErrNoSpecificationForNetwork {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: specification %s: %w", full.UUID, err)
		}
		out = append(out, *spec)
	}
	return out, nil
}
