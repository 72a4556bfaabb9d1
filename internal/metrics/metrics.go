package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEventsTotal counts webhook notifications received by topic
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridging_webhook_events_total",
			Help: "Total number of webhook notifications received",
		},
		[]string{"topic"},
	)

	// DuplicateNotifications counts notifications suppressed by the state registry
	DuplicateNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridging_duplicate_notifications_total",
			Help: "Total number of duplicate exchange notifications suppressed",
		},
		[]string{"topic"},
	)

	// ProofRequestsSent counts proof requests sent by chain step
	ProofRequestsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridging_proof_requests_sent_total",
			Help: "Total number of proof requests sent",
		},
		[]string{"step"},
	)

	// PresentationsVerified counts presentation verification results
	PresentationsVerified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridging_presentations_verified_total",
			Help: "Total number of presentation verification calls by result",
		},
		[]string{"result"},
	)

	// CredentialsIssued counts credentials issued on request-received
	CredentialsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridging_credentials_issued_total",
			Help: "Total number of credentials issued",
		},
	)

	// ChainCompletions counts terminal chain outcomes
	ChainCompletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridging_chain_completions_total",
			Help: "Total number of proof chains reaching a terminal state",
		},
		[]string{"outcome"},
	)

	// GatewaySubmissions counts ledger gateway submissions by status
	GatewaySubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridging_gateway_submissions_total",
			Help: "Total number of address-mapping submissions to the ledger gateway",
		},
		[]string{"status"},
	)

	// TrackedExchanges tracks the number of exchanges in the state registry
	TrackedExchanges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bridging_tracked_exchanges",
			Help: "Number of exchange identifiers tracked by the state registry",
		},
	)
)
