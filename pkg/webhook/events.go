// Package webhook receives the exchange agent's notification callbacks,
// decodes and validates them into typed per-topic payloads and dispatches
// them to a handler.
package webhook

import (
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/acapy"
)

// Webhook topics delivered by the exchange agent.
const (
	TopicConnections        = "connections"
	TopicIssueCredential    = "issue_credential_v2_0"
	TopicIssueCredentialFmt = "issue_credential_v2_0_indy"
	TopicPresentProof       = "present_proof_v2_0"
	TopicBasicMessages      = "basicmessages"
	TopicOutOfBand          = "out_of_band"
)

// RFC 23 connection states consumed by the controllers.
const (
	ConnectionStateInvitationSent = "invitation-sent"
	ConnectionStateCompleted      = "completed"
)

// Credential exchange states consumed by the controllers.
const (
	CredentialStateRequestReceived = "request-received"
	CredentialStateDone            = "done"
)

// Presentation exchange states consumed by the controllers.
const (
	PresentationStateReceived  = "presentation-received"
	PresentationStateDone      = "done"
	PresentationStateAbandoned = "abandoned"
)

// ConnectionEvent is a connections-topic notification.
type ConnectionEvent struct {
	ConnectionID string `json:"connection_id" validate:"required"`
	State        string `json:"state"`
	RFC23State   string `json:"rfc23_state" validate:"required"`
}

// CredentialEvent is an issue_credential_v2_0-topic notification.
type CredentialEvent struct {
	CredExID  string `json:"cred_ex_id" validate:"required"`
	State     string `json:"state" validate:"required"`
	AutoIssue bool   `json:"auto_issue"`
}

// PresentationEvent is a present_proof_v2_0-topic notification. The indy
// request and presentation are only populated once the exchange carries them.
type PresentationEvent struct {
	PresExID string   `json:"pres_ex_id" validate:"required"`
	State    string   `json:"state" validate:"required"`
	ByFormat ByFormat `json:"by_format"`
}

// ByFormat carries the format-specific views of a presentation exchange.
type ByFormat struct {
	PresRequest PresRequestFormat `json:"pres_request"`
	Pres        PresFormat        `json:"pres"`
}

// PresRequestFormat wraps the indy proof request echoed with the exchange.
type PresRequestFormat struct {
	Indy acapy.IndyProofRequest `json:"indy"`
}

// PresFormat wraps the indy presentation received from the holder.
type PresFormat struct {
	Indy acapy.IndyPresentation `json:"indy"`
}

// BasicMessageEvent is a basicmessages-topic notification.
type BasicMessageEvent struct {
	Content string `json:"content" validate:"required"`
}
