package chainhook

// BitcoinNetwork is one of the four networks a Bitcoin chainhook can target.
type BitcoinNetwork string

const (
	BitcoinMainnet BitcoinNetwork = "mainnet"
	BitcoinTestnet BitcoinNetwork = "testnet"
	BitcoinRegtest BitcoinNetwork = "regtest"
	BitcoinSignet  BitcoinNetwork = "signet"
)

// BitcoinPredicateKind tags which variant of BitcoinPredicate is populated.
type BitcoinPredicateKind string

const (
	BitcoinKindBlock               BitcoinPredicateKind = "block"
	BitcoinKindTxid                BitcoinPredicateKind = "txid"
	BitcoinKindInputsTxid          BitcoinPredicateKind = "inputs_txid"
	BitcoinKindInputsWitnessScript BitcoinPredicateKind = "inputs_witness_script"
	BitcoinKindOutputsOpReturn     BitcoinPredicateKind = "outputs_op_return"
	BitcoinKindOutputsP2PKH        BitcoinPredicateKind = "outputs_p2pkh"
	BitcoinKindOutputsP2SH         BitcoinPredicateKind = "outputs_p2sh"
	BitcoinKindOutputsP2WPKH       BitcoinPredicateKind = "outputs_p2wpkh"
	BitcoinKindOutputsP2WSH        BitcoinPredicateKind = "outputs_p2wsh"
	BitcoinKindOutputsDescriptor   BitcoinPredicateKind = "outputs_descriptor"
	BitcoinKindStacksProtocol      BitcoinPredicateKind = "stacks_protocol"
	BitcoinKindOrdinalsProtocol    BitcoinPredicateKind = "ordinals_protocol"
)

// InputsTxidMatch matches a transaction that spends a specific previous
// output (txid, vout) in any of its inputs.
type InputsTxidMatch struct {
	Txid string `yaml:"txid" json:"txid"`
	Vout uint32 `yaml:"vout" json:"vout"`
}

// DescriptorMatch resolves an output-descriptor expression to a concrete
// address and compares it against every output of the transaction. Only the
// single-key `addr(...)` descriptor form is resolved; anything else never
// matches (see DESIGN.md for why range descriptors are out of scope).
type DescriptorMatch struct {
	Expression string `yaml:"expression" json:"expression"`
}

// StacksProtocolOperation names a Stacks-anchor operation packed into a
// Bitcoin OP_RETURN payload behind the `X2[` marker (see spec.md §6).
type StacksProtocolOperation string

const (
	OperationBlockCommit         StacksProtocolOperation = "block_commit"           // '['
	OperationKeyRegister         StacksProtocolOperation = "key_register"           // '!'
	OperationPreStx              StacksProtocolOperation = "pre_stx"                // '$'
	OperationTransferStx         StacksProtocolOperation = "transfer_stx"           // '-'
	OperationStackStx            StacksProtocolOperation = "stack_stx"              // '~'
	OperationDelegateStx         StacksProtocolOperation = "delegate_stx"           // '_'
	OperationVoteForAggregateKey StacksProtocolOperation = "vote_for_aggregate_key" // ';'
)

// StacksProtocolMatch matches Bitcoin transactions carrying Stacks anchor
// data of the named operation, or any operation when Operation is "*".
type StacksProtocolMatch struct {
	Operation StacksProtocolOperation `yaml:"operation" json:"operation"`
}

// OrdinalsProtocolMatch matches a transaction that reveals or transfers an
// ordinal inscription. It carries no fields: the feed driving the match is
// constructed by the ordinal cache, not configured on the predicate.
type OrdinalsProtocolMatch struct{}

// BitcoinPredicate is the closed set of predicate shapes a Bitcoin
// chainhook can evaluate against a transaction. Exactly one payload field
// is populated, selected by Kind.
type BitcoinPredicate struct {
	Kind                BitcoinPredicateKind   `yaml:"kind" json:"kind"`
	Txid                *StringMatch           `yaml:"txid,omitempty" json:"txid,omitempty"`
	InputsTxid          *InputsTxidMatch       `yaml:"inputs_txid,omitempty" json:"inputs_txid,omitempty"`
	InputsWitnessScript *StringMatch           `yaml:"inputs_witness_script,omitempty" json:"inputs_witness_script,omitempty"`
	OutputsOpReturn     *StringMatch           `yaml:"outputs_op_return,omitempty" json:"outputs_op_return,omitempty"`
	OutputsAddress      *StringMatch           `yaml:"outputs_address,omitempty" json:"outputs_address,omitempty"`
	OutputsDescriptor   *DescriptorMatch       `yaml:"outputs_descriptor,omitempty" json:"outputs_descriptor,omitempty"`
	StacksProtocol      *StacksProtocolMatch   `yaml:"stacks_protocol,omitempty" json:"stacks_protocol,omitempty"`
	OrdinalsProtocol    *OrdinalsProtocolMatch `yaml:"ordinals_protocol,omitempty" json:"ordinals_protocol,omitempty"`
}

// Validate rejects a predicate whose Kind tag disagrees with its payload.
func (p BitcoinPredicate) Validate() error {
	present := func(ok bool) int {
		if ok {
			return 1
		}
		return 0
	}
	count := present(p.Txid != nil) + present(p.InputsTxid != nil) +
		present(p.InputsWitnessScript != nil) + present(p.OutputsOpReturn != nil) +
		present(p.OutputsAddress != nil) + present(p.OutputsDescriptor != nil) +
		present(p.StacksProtocol != nil) + present(p.OrdinalsProtocol != nil)

	switch p.Kind {
	case BitcoinKindBlock:
		return requireExactly(count, 0)
	case BitcoinKindTxid:
		return requireField(count, p.Txid != nil)
	case BitcoinKindInputsTxid:
		return requireField(count, p.InputsTxid != nil)
	case BitcoinKindInputsWitnessScript:
		return requireField(count, p.InputsWitnessScript != nil)
	case BitcoinKindOutputsOpReturn:
		return requireField(count, p.OutputsOpReturn != nil)
	case BitcoinKindOutputsP2PKH, BitcoinKindOutputsP2SH, BitcoinKindOutputsP2WPKH, BitcoinKindOutputsP2WSH:
		return requireField(count, p.OutputsAddress != nil)
	case BitcoinKindOutputsDescriptor:
		return requireField(count, p.OutputsDescriptor != nil)
	case BitcoinKindStacksProtocol:
		return requireField(count, p.StacksProtocol != nil)
	case BitcoinKindOrdinalsProtocol:
		return requireField(count, p.OrdinalsProtocol != nil)
	default:
		return ErrPredicateKindMismatch
	}
}

func requireField(totalSet int, fieldSet bool) error {
	if totalSet == 1 && fieldSet {
		return nil
	}
	return ErrPredicateKindMismatch
}

func requireExactly(totalSet, want int) error {
	if totalSet == want {
		return nil
	}
	return ErrPredicateKindMismatch
}

// BitcoinChainhookSpecification is a single chainhook projected onto one
// Bitcoin network: the common HookOptions plus the predicate to evaluate.
type BitcoinChainhookSpecification struct {
	HookOptions
	Network   BitcoinNetwork   `yaml:"network" json:"network"`
	Predicate BitcoinPredicate `yaml:"predicate" json:"predicate"`
}

// Validate checks both the common hook invariants and the predicate shape.
func (s BitcoinChainhookSpecification) Validate() error {
	if err := s.HookOptions.Validate(); err != nil {
		return err
	}
	return s.Predicate.Validate()
}

// BitcoinNetworkSpecification is the per-network leaf of a
// BitcoinChainhookFullSpecification: everything about a hook except its
// shared uuid/name/version, which live on the parent.
type BitcoinNetworkSpecification struct {
	StartBlock            *uint64          `yaml:"start_block,omitempty"`
	EndBlock              *uint64          `yaml:"end_block,omitempty"`
	Blocks                []uint64         `yaml:"blocks,omitempty"`
	ExpireAfterOccurrence *uint64          `yaml:"expire_after_occurrence,omitempty"`
	Predicate             BitcoinPredicate `yaml:"predicate"`
	Action                Action           `yaml:"action"`
	Enabled               bool             `yaml:"enabled"`
}

// BitcoinChainhookFullSpecification is the persisted, multi-network form of
// a Bitcoin chainhook: one uuid, one predicate/action/range per network.
type BitcoinChainhookFullSpecification struct {
	UUID     string                                       `yaml:"uuid" json:"uuid"`
	Name     string                                       `yaml:"name" json:"name"`
	Version  uint32                                       `yaml:"version" json:"version"`
	Networks map[BitcoinNetwork]BitcoinNetworkSpecification `yaml:"networks" json:"networks"`
}

// Select projects the full specification onto network, failing with
// ErrNoSpecificationForNetwork when that network isn't configured.
func (f BitcoinChainhookFullSpecification) Select(network BitcoinNetwork) (*BitcoinChainhookSpecification, error) {
	ns, ok := f.Networks[network]
	if !ok {
		return nil, ErrNoSpecificationForNetwork
	}
	spec := &BitcoinChainhookSpecification{
		HookOptions: HookOptions{
			UUID:                  f.UUID,
			StartBlock:            ns.StartBlock,
			EndBlock:              ns.EndBlock,
			Blocks:                ns.Blocks,
			ExpireAfterOccurrence: ns.ExpireAfterOccurrence,
			Action:                ns.Action,
			Enabled:               ns.Enabled,
		},
		Network:   network,
		Predicate: ns.Predicate,
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}
