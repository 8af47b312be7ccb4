// Package events carries the lifecycle notifications emitted on every state
// transition of the credential engine. External tooling (status dashboards,
// auto-maintenance daemons) consumes them to drive polling and automation
// without re-deriving state.
//
// Emission is fail-open: a lost notification never fails the operation that
// produced it. State remains authoritative in the stores.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind names a lifecycle transition. One event is emitted per transition.
type Kind string

const (
	KindChallengeIssued   Kind = "challenge_issued"
	KindChallengePassed   Kind = "challenge_passed"
	KindChallengeFailed   Kind = "challenge_failed"
	KindCredentialIssued  Kind = "credential_issued"
	KindCredentialRenewed Kind = "credential_renewed"
	KindCredentialDecayed Kind = "credential_decayed"
	KindCredentialRevoked Kind = "credential_revoked"
	KindReputationUpdated Kind = "reputation_updated"
)

// Event is a single lifecycle notification. Fields beyond ID/Kind/Agent/At
// are populated per kind; unset fields are omitted on the wire, except
// Reputation, which always serializes so consumers can tell a reset to zero
// apart from an absent field.
type Event struct {
	ID    string    `json:"id"`
	Kind  Kind      `json:"kind"`
	Agent string    `json:"agent"`
	At    time.Time `json:"at"`

	// Challenge fields.
	ChallengeType string `json:"challenge_type,omitempty"`
	Seed          string `json:"seed,omitempty"`
	Deadline      uint64 `json:"deadline,omitempty"`
	Maintenance   bool   `json:"maintenance,omitempty"`
	Outcome       string `json:"outcome,omitempty"`

	// Credential fields.
	ExpiresAt        uint64 `json:"expires_at,omitempty"`
	MaintenanceCount uint64 `json:"maintenance_count,omitempty"`
	Reputation       int    `json:"reputation"`
	Reason           string `json:"reason,omitempty"`
}

// New stamps a fresh event with an ID and emission time.
func New(kind Kind, agent string) Event {
	return Event{
		ID:    uuid.NewString(),
		Kind:  kind,
		Agent: agent,
		At:    time.Now().UTC(),
	}
}

// Publisher fans events out to a sink. Emit must not block the caller beyond
// an enqueue and must not fail the producing operation.
type Publisher interface {
	Emit(ctx context.Context, event Event)
	Close() error
}

// Noop discards all events.
type Noop struct{}

func (Noop) Emit(context.Context, Event) {}
func (Noop) Close() error                { return nil }
