// Package proof defines the three-step proof chain, builds indy proof
// requests from declarative step definitions, and extracts disclosed
// attribute values from verified presentations.
package proof

import "time"

// Step identifies a stage of the dependent proof sequence.
type Step int

const (
	// StepIdentity proves personal identity against the ministry's schema.
	StepIdentity Step = iota
	// StepCredentialAccess proves possession of a transaction license.
	StepCredentialAccess
	// StepBridgeAccess proves possession of a bridging license and
	// discloses the identity-linking attributes.
	StepBridgeAccess
)

func (s Step) String() string {
	switch s {
	case StepIdentity:
		return "identity"
	case StepCredentialAccess:
		return "credential_access"
	case StepBridgeAccess:
		return "bridge_access"
	default:
		return "unknown"
	}
}

// Schema names of the issuing parties. SchemaCredentialAccess preserves the
// issuer's published spelling; changing it would break restriction matching.
const (
	SchemaIdentity         = "identity schema"
	SchemaCredentialAccess = "cbdc transacation license schema"
	SchemaBridgeAccess     = "cbdc bridging license schema"
)

// Proof display names. The orchestrator gates chain advancement on these.
const (
	NameIdentity         = "Proof of Identity"
	NameCredentialAccess = "Proof of CBDC Access"
	NameBridgeAccess     = "Proof of CBDC Bridge Access"
)

// Identity-linking attributes disclosed by the terminal step.
const (
	AttrPseudonym  = "pseudonym"
	AttrFabricID   = "fabricID"
	AttrEthAddress = "ethAddress"
)

// AttributeRequirement names one attribute the verifier demands, optionally
// restricted to credentials of a given schema.
type AttributeRequirement struct {
	Name       string
	SchemaName string
}

// PredicateRequirement names one numeric constraint proved in zero knowledge.
// Only "<="/">="-style comparators are supported.
type PredicateRequirement struct {
	Name       string
	PType      string
	PValue     int
	SchemaName string
}

// StepDefinition declaratively describes one step of the chain.
// Definitions are immutable once built.
type StepDefinition struct {
	Step       Step
	Name       string
	Version    string
	Attributes []AttributeRequirement
	Predicates []PredicateRequirement
}

// DefaultChain returns the fixed ordered three-step chain. The identity
// step's birthdate predicate is anchored at now minus minimumAge years,
// rendered as a dateint (YYYYMMDD).
func DefaultChain(now time.Time, minimumAge int) []StepDefinition {
	return []StepDefinition{
		{
			Step:    StepIdentity,
			Name:    NameIdentity,
			Version: "1.0",
			Attributes: []AttributeRequirement{
				{Name: "name", SchemaName: SchemaIdentity},
			},
			Predicates: []PredicateRequirement{
				{
					Name:       "birthdate_dateint",
					PType:      "<=",
					PValue:     DateInt(now.AddDate(-minimumAge, 0, 0)),
					SchemaName: SchemaIdentity,
				},
			},
		},
		{
			Step:    StepCredentialAccess,
			Name:    NameCredentialAccess,
			Version: "1.0",
			Attributes: []AttributeRequirement{
				{Name: "credential_type", SchemaName: SchemaCredentialAccess},
			},
		},
		{
			Step:    StepBridgeAccess,
			Name:    NameBridgeAccess,
			Version: "1.0",
			Attributes: []AttributeRequirement{
				{Name: "credential_type", SchemaName: SchemaBridgeAccess},
				{Name: AttrPseudonym, SchemaName: SchemaBridgeAccess},
				{Name: "privateKey", SchemaName: SchemaBridgeAccess},
				{Name: AttrFabricID, SchemaName: SchemaBridgeAccess},
				{Name: AttrEthAddress, SchemaName: SchemaBridgeAccess},
			},
		},
	}
}

// DateInt renders a date as the indy dateint form YYYYMMDD.
func DateInt(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
