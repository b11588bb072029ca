// Package model holds the neutral, chain-agnostic representation of
// Bitcoin and Stacks blocks, transactions and events that the matcher and
// evaluator consume. Blocks and transactions reference each other only by
// identifier (never by pointer), so a payload can be assembled later by
// resolving an index into a slice — see spec.md §9's cyclic-reference note.
package model

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// hexEncode renders raw bytes as lowercase hex without a 0x prefix.
func hexEncode(b []byte) string {
	return hex.EncodeToString(b)
}

// BlockIdentifier names a block by height and 0x-prefixed lowercase hash,
// independent of which chain it belongs to.
type BlockIdentifier struct {
	Index uint64
	Hash  string
}

// NormalizeHex lower-cases a hex string and ensures it carries the 0x
// prefix every identifier in this package and in the occurrence payload
// uses, per spec.md §3/§6.
func NormalizeHex(s string) string {
	s = strings.ToLower(s)
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return s
}

// DecodeHex strips an optional 0x prefix and decodes the remaining hex
// digits, using go-ethereum's hexutil for the actual conversion.
func DecodeHex(s string) ([]byte, error) {
	s = strings.ToLower(s)
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}
