package acapy

import (
	"bytes"
	"encoding/json"
)

// IndyProofRequest is the indy-format proof request sent to and echoed back
// by the exchange agent. Referent keys in the requested maps correlate the
// request with entries in the presentation response.
type IndyProofRequest struct {
	Name                string                   `json:"name"`
	Version             string                   `json:"version"`
	Nonce               string                   `json:"nonce,omitempty"`
	RequestedAttributes map[string]AttributeSpec `json:"requested_attributes"`
	RequestedPredicates map[string]PredicateSpec `json:"requested_predicates"`
}

// AttributeSpec describes one requested attribute group
type AttributeSpec struct {
	Name         string        `json:"name"`
	Restrictions []Restriction `json:"restrictions,omitempty"`
}

// PredicateSpec describes one requested predicate group
type PredicateSpec struct {
	Name         string        `json:"name"`
	PType        string        `json:"p_type"`
	PValue       int           `json:"p_value"`
	Restrictions []Restriction `json:"restrictions,omitempty"`
}

// Restriction limits which credentials may satisfy a requested group
type Restriction struct {
	SchemaName string `json:"schema_name,omitempty"`
	CredDefID  string `json:"cred_def_id,omitempty"`
}

// SendProofRequestBody is the body for /present-proof-2.0/send-request
type SendProofRequestBody struct {
	ConnectionID        string              `json:"connection_id"`
	PresentationRequest PresentationRequest `json:"presentation_request"`
}

// PresentationRequest wraps the indy-format request
type PresentationRequest struct {
	Indy IndyProofRequest `json:"indy"`
}

// IndyPresentation is the indy-format presentation received from the holder
type IndyPresentation struct {
	RequestedProof RequestedProof   `json:"requested_proof"`
	Identifiers    []CredIdentifier `json:"identifiers"`
}

// RequestedProof carries the disclosed values of a presentation keyed by referent
type RequestedProof struct {
	RevealedAttrs map[string]RevealedAttr `json:"revealed_attrs"`
}

// RevealedAttr is one disclosed attribute value
type RevealedAttr struct {
	Raw     string `json:"raw"`
	Encoded string `json:"encoded,omitempty"`
}

// CredIdentifier names the schema and credential definition behind a presented claim
type CredIdentifier struct {
	SchemaID  string `json:"schema_id"`
	CredDefID string `json:"cred_def_id"`
}

// VerifyResponse is the reply from verify-presentation
type VerifyResponse struct {
	Verified StringBool `json:"verified"`
	State    string     `json:"state,omitempty"`
}

// StringBool decodes the agent's stringly-typed booleans. The admin API is
// documented to return "true"/"false" strings, but a native boolean is
// accepted too; anything that is not affirmative decodes to false.
type StringBool bool

// UnmarshalJSON implements json.Unmarshaler
func (b *StringBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte(`true`)), bytes.Equal(data, []byte(`"true"`)):
		*b = true
	default:
		*b = false
	}
	return nil
}

// MarshalJSON implements json.Marshaler, preserving the agent's string form
func (b StringBool) MarshalJSON() ([]byte, error) {
	if b {
		return json.Marshal("true")
	}
	return json.Marshal("false")
}

// CredentialOffer is the body for /issue-credential-2.0/send-offer
type CredentialOffer struct {
	ConnectionID      string            `json:"connection_id"`
	CredDefID         string            `json:"cred_def_id"`
	Comment           string            `json:"comment,omitempty"`
	AutoRemove        bool              `json:"auto_remove"`
	CredentialPreview CredentialPreview `json:"credential_preview"`
	Trace             bool              `json:"trace"`
	Filter            OfferFilter       `json:"filter"`
}

// CredentialPreview previews the attributes of an offered credential
type CredentialPreview struct {
	Type       string             `json:"@type"`
	Attributes []PreviewAttribute `json:"attributes"`
}

// PreviewAttribute is one name/value pair of a credential preview
type PreviewAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// OfferFilter selects the credential format of an offer
type OfferFilter struct {
	Indy IndyOfferFilter `json:"indy"`
}

// IndyOfferFilter pins the offer to a credential definition
type IndyOfferFilter struct {
	CredDefID string `json:"cred_def_id"`
}
