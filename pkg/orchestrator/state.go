package orchestrator

import "github.com/nomad-at-you/ssi-cbdc-bridging/pkg/proof"

// State is the position of a session in the proof chain. Transitions are
// driven by a step index, so an illegal jump cannot be expressed.
type State int

const (
	// StateAwaitingConnection waits for the counterparty to accept the invitation.
	StateAwaitingConnection State = iota
	// StateAwaitingIdentity waits for the Identity presentation.
	StateAwaitingIdentity
	// StateAwaitingCredentialAccess waits for the CredentialAccess presentation.
	StateAwaitingCredentialAccess
	// StateAwaitingBridgeAccess waits for the BridgeAccess presentation.
	StateAwaitingBridgeAccess
	// StateCompleted is terminal: the chain finished and the address mapping
	// was registered.
	StateCompleted
	// StateCompletedLedgerFailed is terminal: the chain finished but the
	// gateway submission failed after retries.
	StateCompletedLedgerFailed
)

func (s State) String() string {
	switch s {
	case StateAwaitingConnection:
		return "awaiting_connection"
	case StateAwaitingIdentity:
		return "awaiting_identity"
	case StateAwaitingCredentialAccess:
		return "awaiting_credential_access"
	case StateAwaitingBridgeAccess:
		return "awaiting_bridge_access"
	case StateCompleted:
		return "completed"
	case StateCompletedLedgerFailed:
		return "completed_ledger_failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the chain has finished.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCompletedLedgerFailed
}

func stateForStep(step proof.Step) State {
	switch step {
	case proof.StepIdentity:
		return StateAwaitingIdentity
	case proof.StepCredentialAccess:
		return StateAwaitingCredentialAccess
	default:
		return StateAwaitingBridgeAccess
	}
}
