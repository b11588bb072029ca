package matcher

import (
	"github.com/stacks-network/chainhook-engine/pkg/chainhook"
	"github.com/stacks-network/chainhook-engine/pkg/model"
)

// DefaultStacksMarker is the ASCII marker spec.md §6 says prefixes every
// Stacks-protocol OP_RETURN payload on Bitcoin (`X2[` for mainnet/testnet
// in the reference implementation).
const DefaultStacksMarker = "X2["

var opcodeOperations = map[byte]chainhook.StacksProtocolOperation{
	'[': chainhook.OperationBlockCommit,
	'!': chainhook.OperationKeyRegister,
	'$': chainhook.OperationPreStx,
	'-': chainhook.OperationTransferStx,
	'~': chainhook.OperationStackStx,
	'_': chainhook.OperationDelegateStx,
	';': chainhook.OperationVoteForAggregateKey,
}

// parseStacksAnchor recognizes the marker+opcode header of a Stacks anchor
// OP_RETURN payload and returns the operation it names. The operation's
// packed fields are not decoded here: nothing in spec.md's matching
// semantics needs their values, only the operation identity.
func parseStacksAnchor(payloadHex string, marker string) (chainhook.StacksProtocolOperation, bool) {
	raw, err := model.DecodeHex(payloadHex)
	if err != nil {
		return "", false
	}
	if len(raw) < len(marker)+1 {
		return "", false
	}
	if string(raw[:len(marker)]) != marker {
		return "", false
	}
	op, ok := opcodeOperations[raw[len(marker)]]
	return op, ok
}

// matchStacksProtocol reports whether tx carries an OP_RETURN anchor of the
// requested operation (or any recognized operation, when Operation is "*").
func matchStacksProtocol(tx model.BitcoinTransaction, want *chainhook.StacksProtocolMatch) bool {
	for _, out := range tx.Outputs {
		payload, ok := out.OpReturnPayload()
		if !ok {
			continue
		}
		op, recognized := parseStacksAnchor(payload, DefaultStacksMarker)
		if !recognized {
			continue
		}
		if want.Operation == chainhook.StacksProtocolOperation(chainhook.Wildcard) || want.Operation == op {
			return true
		}
	}
	return false
}
