package matcher

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/stacks-network/chainhook-engine/pkg/chainhook"
	"github.com/stacks-network/chainhook-engine/pkg/model"
)

// addressFamily names the four output-script templates spec.md §4.1 asks
// the matcher to resolve an address for.
type addressFamily int

const (
	familyP2PKH addressFamily = iota
	familyP2SH
	familyP2WPKH
	familyP2WSH
)

func chaincfgParams(network chainhook.BitcoinNetwork) *chaincfg.Params {
	switch network {
	case chainhook.BitcoinMainnet:
		return &chaincfg.MainNetParams
	case chainhook.BitcoinTestnet:
		return &chaincfg.TestNet3Params
	case chainhook.BitcoinRegtest:
		return &chaincfg.RegressionNetParams
	case chainhook.BitcoinSignet:
		return &chaincfg.SigNetParams
	default:
		return &chaincfg.MainNetParams
	}
}

// resolveOutputAddress decodes out's scriptPubKey and, if it matches
// wantFamily's template, returns the network-encoded address string.
func resolveOutputAddress(out model.BitcoinTxOut, wantFamily addressFamily, network chainhook.BitcoinNetwork) (string, bool) {
	script, err := model.DecodeHex(out.ScriptPubKeyHex)
	if err != nil {
		return "", false
	}
	params := chaincfgParams(network)

	switch wantFamily {
	case familyP2PKH:
		hash, ok := matchTemplate(script, 0x76, 0xa9, 0x14, 20, 0x88, 0xac)
		if !ok {
			return "", false
		}
		addr, err := btcutil.NewAddressPubKeyHash(hash, params)
		if err != nil {
			return "", false
		}
		return addr.EncodeAddress(), true

	case familyP2SH:
		hash, ok := matchSingleOpcodeTemplate(script, 0xa9, 0x14, 20, 0x87)
		if !ok {
			return "", false
		}
		addr, err := btcutil.NewAddressScriptHashFromHash(hash, params)
		if err != nil {
			return "", false
		}
		return addr.EncodeAddress(), true

	case familyP2WPKH:
		hash, ok := matchWitnessTemplate(script, 0x00, 20)
		if !ok {
			return "", false
		}
		addr, err := btcutil.NewAddressWitnessPubKeyHash(hash, params)
		if err != nil {
			return "", false
		}
		return addr.EncodeAddress(), true

	case familyP2WSH:
		hash, ok := matchWitnessTemplate(script, 0x00, 32)
		if !ok {
			return "", false
		}
		addr, err := btcutil.NewAddressWitnessScriptHash(hash, params)
		if err != nil {
			return "", false
		}
		return addr.EncodeAddress(), true
	}
	return "", false
}

// matchTemplate checks script against a fixed byte template where the hash
// of length hashLen sits right after the opcodes preceding it, e.g.
// matchTemplate(script, 0x76, 0xa9, 0x14, 20, 0x88, 0xac) for P2PKH.
func matchTemplate(script []byte, prefix1, prefix2, lenByte byte, hashLen int, suffix ...byte) ([]byte, bool) {
	want := 2 + 1 + hashLen + len(suffix)
	if len(script) != want {
		return nil, false
	}
	if script[0] != prefix1 || script[1] != prefix2 || script[2] != lenByte {
		return nil, false
	}
	hash := script[3 : 3+hashLen]
	tail := script[3+hashLen:]
	for i, b := range suffix {
		if tail[i] != b {
			return nil, false
		}
	}
	return hash, true
}

// matchSingleOpcodeTemplate checks script against a template with a single
// opcode byte before the length-prefixed hash, e.g. P2SH's
// OP_HASH160 <20> <hash> OP_EQUAL.
func matchSingleOpcodeTemplate(script []byte, prefix, lenByte byte, hashLen int, suffix ...byte) ([]byte, bool) {
	want := 1 + 1 + hashLen + len(suffix)
	if len(script) != want {
		return nil, false
	}
	if script[0] != prefix || script[1] != lenByte {
		return nil, false
	}
	hash := script[2 : 2+hashLen]
	tail := script[2+hashLen:]
	for i, b := range suffix {
		if tail[i] != b {
			return nil, false
		}
	}
	return hash, true
}

// matchWitnessTemplate checks a segwit v0 output: OP_0 <len> <hash>.
func matchWitnessTemplate(script []byte, version byte, hashLen int) ([]byte, bool) {
	if len(script) != 2+hashLen {
		return nil, false
	}
	if script[0] != version || int(script[1]) != hashLen {
		return nil, false
	}
	return script[2:], true
}
