package proof

import (
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/acapy"
)

// RevealedValues maps logical attribute names to the raw disclosed values.
type RevealedValues map[string]string

// Get returns the disclosed value for name, or the empty string when the
// holder did not reveal it.
func (v RevealedValues) Get(name string) string {
	return v[name]
}

// ExtractRevealed correlates a presentation with the proof request that
// produced it. It scans the request's requested-attribute groups for their
// logical names and looks up the corresponding revealed value by referent.
// Attributes the holder chose not to disclose (or proved only via a
// predicate) are returned in missing rather than failing the extraction.
func ExtractRevealed(req acapy.IndyProofRequest, pres acapy.IndyPresentation) (values RevealedValues, missing []string) {
	values = make(RevealedValues, len(req.RequestedAttributes))
	for referent, spec := range req.RequestedAttributes {
		revealed, ok := pres.RequestedProof.RevealedAttrs[referent]
		if !ok {
			missing = append(missing, spec.Name)
			continue
		}
		values[spec.Name] = revealed.Raw
	}
	return values, missing
}
