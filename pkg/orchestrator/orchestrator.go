// Package orchestrator drives the three-step proof chain for one
// counterparty session: Identity, then CredentialAccess, then BridgeAccess,
// each gated on a positive verification of the previous step. Completing the
// terminal step registers the disclosed address mapping with the ledger
// gateway.
package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/nomad-at-you/ssi-cbdc-bridging/internal/metrics"
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/acapy"
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/proof"
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/webhook"
)

// AdminClient defines the exchange-agent operations the session needs.
type AdminClient interface {
	IssueCredential(ctx context.Context, credExID, comment string) error
	VerifyPresentation(ctx context.Context, presExID string) (bool, error)
	SendProofRequest(ctx context.Context, connectionID string, req acapy.IndyProofRequest) error
}

// LedgerClient defines the gateway operation invoked on chain completion.
type LedgerClient interface {
	SubmitAddressMapping(ctx context.Context, user, fabricID, ethAddress string) error
}

// Session holds the per-counterparty orchestration state. One session serves
// one connection for its lifetime; nothing survives a restart.
type Session struct {
	admin  AdminClient
	ledger LedgerClient
	chain  []proof.StepDefinition
	logger *zap.Logger

	autoStart bool

	mu           sync.Mutex
	state        State
	stepIdx      int
	started      bool
	connectionID string

	ready     chan struct{}
	readyOnce sync.Once
}

// SessionOption configures a session.
type SessionOption func(*Session)

// WithAutoStart controls whether the Identity proof request is sent as soon
// as the connection completes. Disabled, the chain waits for StartChain.
func WithAutoStart(auto bool) SessionOption {
	return func(s *Session) { s.autoStart = auto }
}

// NewSession creates a session in StateAwaitingConnection. The ledger client
// may be nil for parties that never complete a chain (the issuers).
func NewSession(admin AdminClient, ledger LedgerClient, chain []proof.StepDefinition, logger *zap.Logger, opts ...SessionOption) *Session {
	s := &Session{
		admin:     admin,
		ledger:    ledger,
		chain:     chain,
		logger:    logger,
		autoStart: true,
		state:     StateAwaitingConnection,
		ready:     make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// State returns the current chain state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ConnectionID returns the captured counterparty connection identifier.
func (s *Session) ConnectionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectionID
}

// ConnectionReady returns a channel closed exactly once, when the
// counterparty connection completes.
func (s *Session) ConnectionReady() <-chan struct{} {
	return s.ready
}

// HandleConnection captures the connection identifier on the first
// invitation-sent notification (first writer wins) and resolves the
// connection-ready signal exactly once when that connection completes.
func (s *Session) HandleConnection(ctx context.Context, ev webhook.ConnectionEvent) error {
	s.logger.Info("Connection state",
		zap.String("connection_id", ev.ConnectionID),
		zap.String("state", ev.State),
		zap.String("rfc23_state", ev.RFC23State))

	s.mu.Lock()
	if s.connectionID == "" && ev.RFC23State == webhook.ConnectionStateInvitationSent {
		s.connectionID = ev.ConnectionID
		s.logger.Info("Tracking connection", zap.String("connection_id", ev.ConnectionID))
	}
	completed := s.connectionID != "" &&
		ev.ConnectionID == s.connectionID &&
		ev.RFC23State == webhook.ConnectionStateCompleted
	s.mu.Unlock()

	if !completed {
		return nil
	}

	var first bool
	s.readyOnce.Do(func() {
		first = true
		s.mu.Lock()
		if s.state == StateAwaitingConnection && len(s.chain) > 0 {
			s.state = stateForStep(s.chain[0].Step)
		}
		s.mu.Unlock()
		close(s.ready)
	})
	if !first {
		// A repeated completion for an already-resolved signal.
		return nil
	}

	s.logger.Info("Connected", zap.String("connection_id", ev.ConnectionID))
	if s.autoStart && len(s.chain) > 0 {
		return s.StartChain(ctx)
	}
	return nil
}

// StartChain sends the Identity proof request. It requires a completed
// connection and a chain that has not started yet.
func (s *Session) StartChain(ctx context.Context) error {
	select {
	case <-s.ready:
	default:
		return fmt.Errorf("connection not ready")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.chain) == 0 {
		return fmt.Errorf("no proof chain configured")
	}
	if s.started {
		return fmt.Errorf("chain already started (state %s)", s.state)
	}
	if err := s.sendStepLocked(ctx, s.chain[0]); err != nil {
		// A failed send leaves the chain unstarted so the trigger can be retried.
		return err
	}
	s.started = true
	return nil
}

// HandlePresentation reacts to presentation-exchange notifications. On
// presentation-received it verifies the presentation, gates it against the
// active step's proof name and either advances the chain or, on the terminal
// step, extracts the disclosed identity-linking attributes and registers
// the address mapping.
func (s *Session) HandlePresentation(ctx context.Context, ev webhook.PresentationEvent) error {
	s.logger.Info("Presentation exchange state",
		zap.String("pres_ex_id", ev.PresExID),
		zap.String("state", ev.State))

	if ev.State != webhook.PresentationStateReceived {
		return nil
	}

	verified, err := s.admin.VerifyPresentation(ctx, ev.PresExID)
	if err != nil {
		return fmt.Errorf("verify presentation %s: %w", ev.PresExID, err)
	}
	metrics.PresentationsVerified.WithLabelValues(strconv.FormatBool(verified)).Inc()

	req := ev.ByFormat.PresRequest.Indy
	pres := ev.ByFormat.Pres.Indy

	// The verify call suspended; unrelated deliveries may have interleaved.
	// All gating decisions are made against the now-active step under lock.
	s.mu.Lock()
	defer s.mu.Unlock()

	active, ok := s.activeStepLocked()
	if !ok {
		s.logger.Info("Presentation outside an active chain, ignoring",
			zap.String("name", req.Name),
			zap.Stringer("state", s.state))
		return nil
	}
	if req.Name != active.Name {
		if s.chainStepName(req.Name) {
			s.logger.Warn("Out-of-order proof for inactive step, ignoring",
				zap.String("name", req.Name),
				zap.String("expected", active.Name))
		} else {
			s.logger.Info("Received unrelated proof, ignoring", zap.String("name", req.Name))
		}
		return nil
	}

	s.logRevealed(req, pres)

	if !verified {
		s.logger.Warn("Presentation failed verification, chain stalled",
			zap.String("name", req.Name),
			zap.String("pres_ex_id", ev.PresExID))
		return nil
	}

	if active.Step != proof.StepBridgeAccess {
		next := s.chain[s.stepIdx+1]
		if err := s.sendStepLocked(ctx, next); err != nil {
			return err
		}
		s.stepIdx++
		s.state = stateForStep(next.Step)
		return nil
	}

	return s.completeLocked(ctx, req, pres)
}

// completeLocked runs the terminal transition: extract the identity-linking
// attributes and register the mapping. A missing attribute is substituted by
// an empty value rather than aborting.
func (s *Session) completeLocked(ctx context.Context, req acapy.IndyProofRequest, pres acapy.IndyPresentation) error {
	values, _ := proof.ExtractRevealed(req, pres)
	user := values.Get(proof.AttrPseudonym)
	fabricID := values.Get(proof.AttrFabricID)
	ethAddress := values.Get(proof.AttrEthAddress)

	if err := s.ledger.SubmitAddressMapping(ctx, user, fabricID, ethAddress); err != nil {
		s.logger.Error("Address-mapping registration failed",
			zap.String("user", user),
			zap.Error(err))
		s.state = StateCompletedLedgerFailed
		metrics.ChainCompletions.WithLabelValues("ledger_failed").Inc()
		return nil
	}

	s.logger.Info("Address mapping registered",
		zap.String("user", user),
		zap.String("fabric_id", fabricID),
		zap.String("eth_address", ethAddress))
	s.state = StateCompleted
	metrics.ChainCompletions.WithLabelValues("completed").Inc()
	return nil
}

// HandleCredential reacts to credential-exchange notifications. When the
// holder's request arrives and the exchange is not auto-issuing, the
// credential is issued explicitly.
func (s *Session) HandleCredential(ctx context.Context, ev webhook.CredentialEvent) error {
	s.logger.Info("Credential exchange state",
		zap.String("cred_ex_id", ev.CredExID),
		zap.String("state", ev.State))

	if ev.State != webhook.CredentialStateRequestReceived || ev.AutoIssue {
		return nil
	}

	comment := fmt.Sprintf("Issuing credential, exchange %s", ev.CredExID)
	if err := s.admin.IssueCredential(ctx, ev.CredExID, comment); err != nil {
		return fmt.Errorf("issue credential %s: %w", ev.CredExID, err)
	}
	metrics.CredentialsIssued.Inc()
	return nil
}

// HandleBasicMessage logs the received message content.
func (s *Session) HandleBasicMessage(_ context.Context, ev webhook.BasicMessageEvent) error {
	s.logger.Info("Received message", zap.String("content", ev.Content))
	return nil
}

// activeStepLocked returns the step the chain currently awaits.
func (s *Session) activeStepLocked() (proof.StepDefinition, bool) {
	if s.state == StateAwaitingConnection || s.state.Terminal() || s.stepIdx >= len(s.chain) {
		return proof.StepDefinition{}, false
	}
	return s.chain[s.stepIdx], true
}

func (s *Session) chainStepName(name string) bool {
	for _, def := range s.chain {
		if def.Name == name {
			return true
		}
	}
	return false
}

func (s *Session) sendStepLocked(ctx context.Context, def proof.StepDefinition) error {
	req := proof.BuildRequest(def)
	if err := s.admin.SendProofRequest(ctx, s.connectionID, req); err != nil {
		return fmt.Errorf("send %s proof request: %w", def.Step, err)
	}
	metrics.ProofRequestsSent.WithLabelValues(def.Step.String()).Inc()
	s.logger.Info("Proof request sent",
		zap.Stringer("step", def.Step),
		zap.String("name", def.Name))
	return nil
}

// logRevealed prints each requested attribute with its disclosed value, or a
// placeholder when the holder did not reveal it, plus the schema and
// credential-definition identifiers of the presented claims.
func (s *Session) logRevealed(req acapy.IndyProofRequest, pres acapy.IndyPresentation) {
	values, missing := proof.ExtractRevealed(req, pres)
	for name, value := range values {
		s.logger.Info("Revealed attribute",
			zap.String("name", name),
			zap.String("value", value))
	}
	for _, name := range missing {
		s.logger.Info("Revealed attribute",
			zap.String("name", name),
			zap.String("value", "(attribute not revealed)"))
	}
	for _, id := range pres.Identifiers {
		s.logger.Debug("Presented claim",
			zap.String("schema_id", id.SchemaID),
			zap.String("cred_def_id", id.CredDefID))
	}
}
