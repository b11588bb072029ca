package model

// StacksEventKind tags which variant of StacksEvent is populated.
type StacksEventKind string

const (
	StacksEventFt    StacksEventKind = "ft"
	StacksEventNft   StacksEventKind = "nft"
	StacksEventStx   StacksEventKind = "stx"
	StacksEventPrint StacksEventKind = "print"
)

// FtEventData is a fungible-token event: a mint, transfer or burn of
// AssetIdentifier. Amount is kept as a decimal-digit string to avoid
// precision loss, per spec.md §4.4.
type FtEventData struct {
	AssetIdentifier string
	Action          string // "mint" | "transfer" | "burn"
	Amount          string
	Sender          string
	Recipient       string
}

// NftEventData is a non-fungible-token event.
type NftEventData struct {
	AssetIdentifier string
	Action          string // "mint" | "transfer" | "burn"
	Sender          string
	Recipient       string
}

// StxEventData is a native STX event. "burn" is never produced by a real
// chain observer in this implementation — see spec.md's design note and
// chainhook.StxEventMatch.
type StxEventData struct {
	Action    string // "mint" | "transfer" | "lock" | "burn"
	Amount    string
	Sender    string
	Recipient string
}

// PrintEventData is a `print` Clarity event emitted by a smart contract.
type PrintEventData struct {
	ContractIdentifier string
	Value              string // serialized Clarity value; decoding under DecodeClarityValues happens only in the occurrence payload
}

// StacksEvent is a tagged sum of the four event kinds a Stacks transaction
// can emit; exactly one payload field is populated, selected by Kind.
type StacksEvent struct {
	Kind       StacksEventKind
	FtEvent    *FtEventData
	NftEvent   *NftEventData
	StxEvent   *StxEventData
	PrintEvent *PrintEventData
}

// ContractCallData names a direct contract-call transaction's callee and
// method.
type ContractCallData struct {
	ContractIdentifier string
	Method              string
}

// ContractDeploymentData names a smart-contract deployment transaction's
// deploying principal and the traits (if any) it declares implementing.
type ContractDeploymentData struct {
	Deployer          string
	ImplementedTraits []string
}

// StacksTransaction is a standardised Stacks transaction.
type StacksTransaction struct {
	Txid               string
	Index              int
	ContractCall       *ContractCallData
	ContractDeployment *ContractDeploymentData
	Events             []StacksEvent
}

// StacksBlock is a standardised Stacks block.
type StacksBlock struct {
	BlockIdentifier       BlockIdentifier
	ParentBlockIdentifier BlockIdentifier
	Timestamp             int64
	Transactions          []StacksTransaction
}

// Height is a convenience accessor mirroring BlockIdentifier.Index, used
// by the BlockHeight predicate.
func (b StacksBlock) Height() uint64 { return b.BlockIdentifier.Index }

// StacksChainEvent is the Stacks instantiation of spec.md's ChainEvent.
// Microblock variants mature into the same apply/rollback shape once their
// transactions are confirmed into an anchor block, so no separate type is
// needed here (spec.md §4.3).
type StacksChainEvent struct {
	BlocksToRollback []StacksBlock
	BlocksToApply    []StacksBlock
}
