package model

// BitcoinTxIn is one input of a standardised Bitcoin transaction: the
// previous output it spends and, for witness transactions, the witness
// stack (the last element is what §4.1's WitnessScript predicate inspects).
type BitcoinTxIn struct {
	PreviousTxid string
	PreviousVout uint32
	Witness      []string // hex-encoded witness stack elements, outermost first
}

// LastWitnessElement returns the final witness stack element (the witness
// script for a typical P2WSH spend), or "" when the input carries no
// witness data.
func (in BitcoinTxIn) LastWitnessElement() string {
	if len(in.Witness) == 0 {
		return ""
	}
	return in.Witness[len(in.Witness)-1]
}

// BitcoinTxOut is one output of a standardised Bitcoin transaction.
type BitcoinTxOut struct {
	ScriptPubKeyHex string
	ValueSats       uint64
}

// OpReturnPayload returns the OP_RETURN payload (the bytes after the
// opcode and its length prefix) and true, or ("", false) when this output
// is not an OP_RETURN output (its script does not start with 0x6a).
func (out BitcoinTxOut) OpReturnPayload() (string, bool) {
	script, err := DecodeHex(out.ScriptPubKeyHex)
	if err != nil || len(script) < 1 || script[0] != 0x6a {
		return "", false
	}
	payload := script[1:]
	// Skip the length-prefix byte(s) a standard OP_RETURN push carries.
	if len(payload) > 0 {
		switch {
		case payload[0] <= 0x4b:
			payload = payload[1:]
		case len(payload) > 1 && (payload[0] == 0x4c):
			payload = payload[2:]
		}
	}
	return NormalizeHex(hexEncode(payload)), true
}

// BitcoinTransaction is a standardised Bitcoin transaction: identifier,
// on-chain index within its block, and the inputs/outputs the matcher
// inspects.
type BitcoinTransaction struct {
	Txid    string
	Index   int
	Inputs  []BitcoinTxIn
	Outputs []BitcoinTxOut
}

// BitcoinBlock is a standardised Bitcoin block: identity, parent linkage by
// identifier only, and its ordered transactions.
type BitcoinBlock struct {
	BlockIdentifier       BlockIdentifier
	ParentBlockIdentifier BlockIdentifier
	Timestamp             int64
	Transactions          []BitcoinTransaction
}

// BitcoinChainEvent is the Bitcoin instantiation of spec.md's ChainEvent:
// either an apply-only ChainUpdatedWithBlocks (Rollback empty) or a
// ChainUpdatedWithReorg (both sides populated).
type BitcoinChainEvent struct {
	BlocksToRollback []BitcoinBlock
	BlocksToApply    []BitcoinBlock
}
