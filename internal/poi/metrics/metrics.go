package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the credential engine. Construct
// once per process; promauto registers on the default registry.
type Metrics struct {
	ChallengesIssued *prometheus.CounterVec
	ChallengesPassed *prometheus.CounterVec
	ChallengesFailed *prometheus.CounterVec

	CredentialsIssued  prometheus.Counter
	CredentialsRenewed prometheus.Counter
	CredentialsDecayed prometheus.Counter
	CredentialsRevoked prometheus.Counter

	ReputationUpdates prometheus.Counter
}

// New creates and registers all engine metrics.
func New() *Metrics {
	return &Metrics{
		ChallengesIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agentproof_challenges_issued_total",
			Help: "Challenges issued, by flow (initial or maintenance)",
		}, []string{"flow"}),
		ChallengesPassed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agentproof_challenges_passed_total",
			Help: "Challenges answered correctly, by flow",
		}, []string{"flow"}),
		ChallengesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agentproof_challenges_failed_total",
			Help: "Challenges failed, by flow and outcome (wrong_answer or expired)",
		}, []string{"flow", "outcome"}),
		CredentialsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentproof_credentials_issued_total",
			Help: "Credentials issued by first-time verification",
		}),
		CredentialsRenewed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentproof_credentials_renewed_total",
			Help: "Credential renewals via maintenance verification",
		}),
		CredentialsDecayed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentproof_credentials_decayed_total",
			Help: "Credentials decayed after the grace period lapsed",
		}),
		CredentialsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentproof_credentials_revoked_total",
			Help: "Credentials revoked administratively",
		}),
		ReputationUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentproof_reputation_updates_total",
			Help: "Reputation adjustments applied (reward, penalty, or reset)",
		}),
	}
}

// Flow label values.
const (
	FlowInitial     = "initial"
	FlowMaintenance = "maintenance"
)

// FlowLabel maps the maintenance flag onto the flow label.
func FlowLabel(maintenance bool) string {
	if maintenance {
		return FlowMaintenance
	}
	return FlowInitial
}
