package chainhook

// StacksNetwork is one of the four networks a Stacks chainhook can target.
type StacksNetwork string

const (
	StacksMainnet StacksNetwork = "mainnet"
	StacksTestnet StacksNetwork = "testnet"
	StacksDevnet  StacksNetwork = "devnet"
	StacksSimnet  StacksNetwork = "simnet"
)

// StacksPredicateKind tags which variant of StacksPredicate is populated.
type StacksPredicateKind string

const (
	StacksKindBlockHeight         StacksPredicateKind = "block_height"
	StacksKindTxid                StacksPredicateKind = "txid"
	StacksKindContractCall        StacksPredicateKind = "contract_call"
	StacksKindContractDeployment  StacksPredicateKind = "contract_deployment"
	StacksKindFtEvent             StacksPredicateKind = "ft_event"
	StacksKindNftEvent            StacksPredicateKind = "nft_event"
	StacksKindStxEvent            StacksPredicateKind = "stx_event"
	StacksKindPrintEvent          StacksPredicateKind = "print_event"
)

// BlockHeightMatch is the four-shape height comparison from spec.md §4.2.
// Exactly one field should be set.
type BlockHeightMatch struct {
	HigherThan *uint64    `yaml:"higher_than,omitempty" json:"higher_than,omitempty"`
	LowerThan  *uint64    `yaml:"lower_than,omitempty" json:"lower_than,omitempty"`
	Equals     *uint64    `yaml:"equals,omitempty" json:"equals,omitempty"`
	Between    *[2]uint64 `yaml:"between,omitempty" json:"between,omitempty"`
}

// Matches reports whether height satisfies the configured comparison.
func (m BlockHeightMatch) Matches(height uint64) bool {
	switch {
	case m.HigherThan != nil:
		return height > *m.HigherThan
	case m.LowerThan != nil:
		return height < *m.LowerThan
	case m.Equals != nil:
		return height == *m.Equals
	case m.Between != nil:
		return height >= m.Between[0] && height <= m.Between[1]
	default:
		return false
	}
}

// ContractCallMatch matches a direct contract-call transaction.
type ContractCallMatch struct {
	ContractIdentifier string `yaml:"contract_identifier" json:"contract_identifier"`
	Method             string `yaml:"method" json:"method"`
}

// TraitKind names a well-known SIP trait for ImplementTrait matching.
// Reserved: spec.md's Open Question marks this variant non-functional in
// the reference implementation, so pkg/matcher never matches an
// ImplementTrait predicate (see matchContractDeployment).
type TraitKind string

const (
	TraitSip09 TraitKind = "sip09"
	TraitSip10 TraitKind = "sip10"
	TraitAny   TraitKind = "any"
)

// ContractDeploymentMatch is the ContractDeployment predicate: either a
// Deployer principal match (or "*"), or a reserved ImplementTrait match.
type ContractDeploymentMatch struct {
	Deployer       string    `yaml:"deployer,omitempty" json:"deployer,omitempty"`
	ImplementTrait TraitKind `yaml:"implement_trait,omitempty" json:"implement_trait,omitempty"`
}

// AssetEventActions is the closed set of FT/NFT event actions a predicate
// can request matches for.
type AssetEventActions []string

// Contains reports whether action is present in the set.
func (a AssetEventActions) Contains(action string) bool {
	for _, want := range a {
		if want == action {
			return true
		}
	}
	return false
}

// AssetEventMatch matches FT or NFT events by asset identifier (wildcard
// allowed) and action.
type AssetEventMatch struct {
	AssetIdentifier string            `yaml:"asset_identifier" json:"asset_identifier"`
	Actions         AssetEventActions `yaml:"actions" json:"actions"`
}

// StxEventMatch matches STX events by action. Per spec.md's design note,
// "burn" is accepted in the wire format but never satisfied by a real STX
// event (the reference implementation marks stx-burn tracking as ignored).
type StxEventMatch struct {
	Actions AssetEventActions `yaml:"actions" json:"actions"`
}

// PrintEventMatch matches a `print` Clarity event by emitting contract
// (wildcard allowed) and a substring of its serialized value ("*" matches
// any value, including an empty one).
type PrintEventMatch struct {
	ContractIdentifier string `yaml:"contract_identifier" json:"contract_identifier"`
	Contains           string `yaml:"contains" json:"contains"`
}

// StacksPredicate is the closed set of predicate shapes a Stacks chainhook
// can evaluate against a transaction and its events.
type StacksPredicate struct {
	Kind               StacksPredicateKind      `yaml:"kind" json:"kind"`
	BlockHeight        *BlockHeightMatch        `yaml:"block_height,omitempty" json:"block_height,omitempty"`
	Txid               *StringMatch             `yaml:"txid,omitempty" json:"txid,omitempty"`
	ContractCall       *ContractCallMatch       `yaml:"contract_call,omitempty" json:"contract_call,omitempty"`
	ContractDeployment *ContractDeploymentMatch `yaml:"contract_deployment,omitempty" json:"contract_deployment,omitempty"`
	FtEvent            *AssetEventMatch         `yaml:"ft_event,omitempty" json:"ft_event,omitempty"`
	NftEvent           *AssetEventMatch         `yaml:"nft_event,omitempty" json:"nft_event,omitempty"`
	StxEvent           *StxEventMatch           `yaml:"stx_event,omitempty" json:"stx_event,omitempty"`
	PrintEvent         *PrintEventMatch         `yaml:"print_event,omitempty" json:"print_event,omitempty"`
}

// Validate rejects a predicate whose Kind tag disagrees with its payload.
func (p StacksPredicate) Validate() error {
	present := func(ok bool) int {
		if ok {
			return 1
		}
		return 0
	}
	count := present(p.BlockHeight != nil) + present(p.Txid != nil) +
		present(p.ContractCall != nil) + present(p.ContractDeployment != nil) +
		present(p.FtEvent != nil) + present(p.NftEvent != nil) +
		present(p.StxEvent != nil) + present(p.PrintEvent != nil)

	switch p.Kind {
	case StacksKindBlockHeight:
		return requireField(count, p.BlockHeight != nil)
	case StacksKindTxid:
		return requireField(count, p.Txid != nil)
	case StacksKindContractCall:
		return requireField(count, p.ContractCall != nil)
	case StacksKindContractDeployment:
		return requireField(count, p.ContractDeployment != nil)
	case StacksKindFtEvent:
		return requireField(count, p.FtEvent != nil)
	case StacksKindNftEvent:
		return requireField(count, p.NftEvent != nil)
	case StacksKindStxEvent:
		return requireField(count, p.StxEvent != nil)
	case StacksKindPrintEvent:
		return requireField(count, p.PrintEvent != nil)
	default:
		return ErrPredicateKindMismatch
	}
}

// StacksChainhookSpecification is a single chainhook projected onto one
// Stacks network.
type StacksChainhookSpecification struct {
	HookOptions
	Network             StacksNetwork   `yaml:"network" json:"network"`
	Predicate           StacksPredicate `yaml:"predicate" json:"predicate"`
	CaptureAllEvents    bool            `yaml:"capture_all_events" json:"capture_all_events"`
	DecodeClarityValues bool            `yaml:"decode_clarity_values" json:"decode_clarity_values"`
}

// Validate checks both the common hook invariants and the predicate shape.
func (s StacksChainhookSpecification) Validate() error {
	if err := s.HookOptions.Validate(); err != nil {
		return err
	}
	return s.Predicate.Validate()
}

// StacksNetworkSpecification is the per-network leaf of a
// StacksChainhookFullSpecification.
type StacksNetworkSpecification struct {
	StartBlock            *uint64         `yaml:"start_block,omitempty"`
	EndBlock              *uint64         `yaml:"end_block,omitempty"`
	Blocks                []uint64        `yaml:"blocks,omitempty"`
	ExpireAfterOccurrence *uint64         `yaml:"expire_after_occurrence,omitempty"`
	Predicate             StacksPredicate `yaml:"predicate"`
	Action                Action          `yaml:"action"`
	Enabled               bool            `yaml:"enabled"`
	CaptureAllEvents      bool            `yaml:"capture_all_events"`
	DecodeClarityValues   bool            `yaml:"decode_clarity_values"`
}

// StacksChainhookFullSpecification is the persisted, multi-network form of
// a Stacks chainhook.
type StacksChainhookFullSpecification struct {
	UUID     string                                     `yaml:"uuid" json:"uuid"`
	Name     string                                     `yaml:"name" json:"name"`
	Version  uint32                                     `yaml:"version" json:"version"`
	Networks map[StacksNetwork]StacksNetworkSpecification `yaml:"networks" json:"networks"`
}

// Select projects the full specification onto network, failing with
// ErrNoSpecificationForNetwork when that network isn't configured.
func (f StacksChainhookFullSpecification) Select(network StacksNetwork) (*StacksChainhookSpecification, error) {
	ns, ok := f.Networks[network]
	if !ok {
		return nil, ErrNoSpecificationForNetwork
	}
	spec := &StacksChainhookSpecification{
		HookOptions: HookOptions{
			UUID:                  f.UUID,
			StartBlock:            ns.StartBlock,
			EndBlock:              ns.EndBlock,
			Blocks:                ns.Blocks,
			ExpireAfterOccurrence: ns.ExpireAfterOccurrence,
			Action:                ns.Action,
			Enabled:               ns.Enabled,
		},
		Network:             network,
		Predicate:           ns.Predicate,
		CaptureAllEvents:    ns.CaptureAllEvents,
		DecodeClarityValues: ns.DecodeClarityValues,
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}
