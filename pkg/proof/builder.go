package proof

import (
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/acapy"
)

// AttributeReferent returns the request-local key for a requested attribute
// group. Referent naming is fixed rather than randomized so a request built
// twice from the same definition is byte-identical.
func AttributeReferent(name string) string {
	return "0_" + name + "_uuid"
}

// PredicateReferent returns the request-local key for a requested predicate
// group.
func PredicateReferent(name string) string {
	return "0_" + name + "_GE_uuid"
}

// BuildRequest assembles an indy proof request from a step definition.
// It is a pure transformation: restrictions, comparators and thresholds are
// carried through verbatim and no nonce is attached here. A malformed
// definition is a programming error, not a runtime condition.
func BuildRequest(step StepDefinition) acapy.IndyProofRequest {
	attrs := make(map[string]acapy.AttributeSpec, len(step.Attributes))
	for _, a := range step.Attributes {
		spec := acapy.AttributeSpec{Name: a.Name}
		if a.SchemaName != "" {
			spec.Restrictions = []acapy.Restriction{{SchemaName: a.SchemaName}}
		}
		attrs[AttributeReferent(a.Name)] = spec
	}

	preds := make(map[string]acapy.PredicateSpec, len(step.Predicates))
	for _, p := range step.Predicates {
		spec := acapy.PredicateSpec{
			Name:   p.Name,
			PType:  p.PType,
			PValue: p.PValue,
		}
		if p.SchemaName != "" {
			spec.Restrictions = []acapy.Restriction{{SchemaName: p.SchemaName}}
		}
		preds[PredicateReferent(p.Name)] = spec
	}

	return acapy.IndyProofRequest{
		Name:                step.Name,
		Version:             step.Version,
		RequestedAttributes: attrs,
		RequestedPredicates: preds,
	}
}
