// Package service implements the credential lifecycle engine: challenge
// issuance, answer verification, the credential state machine, reputation,
// cooldowns, and global statistics.
//
// Mutating operations are serialized by a single mutex, mirroring the
// one-operation-at-a-time execution model of the ledger the protocol is
// designed for: no caller ever observes a half-updated challenge or
// credential record.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"agentproof/internal/chain"
	"agentproof/internal/poi/metrics"
	"agentproof/internal/poi/models"
	"agentproof/internal/poi/puzzle"
	"agentproof/internal/poi/store"
	dErrors "agentproof/pkg/domain-errors"
	"agentproof/pkg/platform/events"
	"agentproof/pkg/platform/sentinel"
)

// Stores bundles the persistence seams the engine writes through.
type Stores struct {
	Challenges  store.ChallengeStore
	Credentials store.CredentialStore
	Cooldowns   store.CooldownStore
	Stats       store.StatsStore
}

// Service is the credential lifecycle engine.
type Service struct {
	stores   Stores
	source   chain.Source
	registry chain.Registry

	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher events.Publisher
	tracer    trace.Tracer

	// Serializes mutating operations across all agents. Store-level locks
	// alone cannot make a challenge write, cooldown touch, and counter
	// increment one atomic unit.
	mu sync.Mutex
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPublisher(publisher events.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

// New constructs the engine. All stores and both chain collaborators are
// required.
func New(stores Stores, source chain.Source, registry chain.Registry, opts ...Option) (*Service, error) {
	if stores.Challenges == nil || stores.Credentials == nil || stores.Cooldowns == nil || stores.Stats == nil {
		return nil, errors.New("all lifecycle stores are required")
	}
	if source == nil {
		return nil, errors.New("chain source is required")
	}
	if registry == nil {
		return nil, errors.New("registry is required")
	}

	svc := &Service{
		stores:    stores,
		source:    source,
		registry:  registry,
		logger:    slog.Default(),
		publisher: events.Noop{},
		tracer:    otel.Tracer("agentproof/poi"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// IssuedChallenge is what the caller needs to solve off-process: the seed,
// the answer family, and the block deadline.
type IssuedChallenge struct {
	Seed        common.Hash       `json:"seed"`
	Type        models.PuzzleType `json:"type"`
	Deadline    uint64            `json:"deadline"`
	Maintenance bool              `json:"maintenance"`
}

// Outcome distinguishes the terminal results of a completed challenge.
type Outcome string

const (
	OutcomePassed      Outcome = "passed"
	OutcomeWrongAnswer Outcome = "wrong_answer"
	OutcomeExpired     Outcome = "expired"
)

// VerificationResult reports a completed verification. Success=false is not
// an error: the failure is durably recorded (counters, reputation penalty)
// rather than rolled back, which is exactly what distinguishes it from a
// precondition rejection.
type VerificationResult struct {
	Success    bool               `json:"success"`
	Outcome    Outcome            `json:"outcome"`
	Credential *models.Credential `json:"credential,omitempty"`
}

// RequestChallenge issues a first-time verification challenge.
func (s *Service) RequestChallenge(ctx context.Context, agent common.Address) (IssuedChallenge, error) {
	return s.issue(ctx, agent, false)
}

// RequestMaintenanceChallenge issues a renewal challenge for an existing
// credential inside its maintenance window.
func (s *Service) RequestMaintenanceChallenge(ctx context.Context, agent common.Address) (IssuedChallenge, error) {
	return s.issue(ctx, agent, true)
}

func issueSpanName(maintenance bool) string {
	if maintenance {
		return "poi.RequestMaintenanceChallenge"
	}
	return "poi.RequestChallenge"
}

func (s *Service) issue(ctx context.Context, agent common.Address, maintenance bool) (IssuedChallenge, error) {
	ctx, span := s.tracer.Start(ctx, issueSpanName(maintenance))
	defer span.End()

	head, err := s.source.Head(ctx)
	if err != nil {
		return IssuedChallenge{}, dErrors.Wrap(err, dErrors.CodeInternal, "read chain head")
	}

	balance, err := s.registry.BalanceOf(ctx, agent)
	if err != nil {
		return IssuedChallenge{}, dErrors.Wrap(err, dErrors.CodeInternal, "check registry membership")
	}
	if balance.Sign() <= 0 {
		return IssuedChallenge{}, dErrors.New(dErrors.CodeNotRegisteredAgent, "agent is not a registered member")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cooldown := models.CooldownInitial
	if maintenance {
		cooldown = models.CooldownMaintenance
	}
	last, err := s.stores.Cooldowns.LastAttempt(ctx, agent)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return IssuedChallenge{}, dErrors.Wrap(err, dErrors.CodeInternal, "read cooldown marker")
	}
	if err == nil && head.Time < last+models.Seconds(cooldown) {
		return IssuedChallenge{}, dErrors.New(dErrors.CodeCooldownNotElapsed, "cooldown has not elapsed since the last request")
	}

	if maintenance {
		cred, err := s.stores.Credentials.Find(ctx, agent)
		if errors.Is(err, sentinel.ErrNotFound) {
			return IssuedChallenge{}, dErrors.New(dErrors.CodeNoCredentialToMaintain, "no credential to maintain")
		}
		if err != nil {
			return IssuedChallenge{}, dErrors.Wrap(err, dErrors.CodeInternal, "read credential")
		}
		if !cred.Valid {
			// A record that exists but is no longer valid has already
			// completed its terminal transition; re-entry requires a fresh
			// initial verification.
			return IssuedChallenge{}, dErrors.New(dErrors.CodeCredentialAlreadyDecayed, "credential has already decayed")
		}
		if cred.PastGrace(head.Time) {
			if err := s.decayLocked(ctx, cred); err != nil {
				return IssuedChallenge{}, dErrors.Wrap(err, dErrors.CodeInternal, "decay credential")
			}
			return IssuedChallenge{}, dErrors.New(dErrors.CodeCredentialAlreadyDecayed, "credential decayed past its grace period")
		}
		if !cred.InMaintenanceWindow(head.Time) {
			return IssuedChallenge{}, dErrors.New(dErrors.CodeCredentialNotExpiringSoon, "credential is not expiring soon")
		}
	}

	existing, err := s.stores.Challenges.Find(ctx, agent)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return IssuedChallenge{}, dErrors.Wrap(err, dErrors.CodeInternal, "read challenge")
	}
	if err == nil && existing.LiveAt(head.Number) {
		return IssuedChallenge{}, dErrors.New(dErrors.CodeChallengeAlreadyActive, "an unexpired challenge is already outstanding")
	}

	// The issued counter keeps seeds distinct within one block; the entropy
	// keeps them unpredictable before the request is ordered.
	snap, err := s.stores.Stats.Snapshot(ctx)
	if err != nil {
		return IssuedChallenge{}, dErrors.Wrap(err, dErrors.CodeInternal, "read stats")
	}
	seed := puzzle.DeriveSeed(head.Entropy, head.Time, agent, snap.ChallengesIssued)

	window := models.DeadlineWindowInitial
	if maintenance {
		window = models.DeadlineWindowMaintenance
	}
	challenge := models.Challenge{
		Agent:         agent,
		Type:          puzzle.TypeFromSeed(seed),
		Seed:          seed,
		Deadline:      head.Number + window,
		IssuedAtBlock: head.Number,
		IssuedAtTime:  head.Time,
		Maintenance:   maintenance,
	}

	if err := s.stores.Challenges.Save(ctx, challenge); err != nil {
		return IssuedChallenge{}, dErrors.Wrap(err, dErrors.CodeInternal, "save challenge")
	}
	if err := s.stores.Cooldowns.Touch(ctx, agent, head.Time); err != nil {
		return IssuedChallenge{}, dErrors.Wrap(err, dErrors.CodeInternal, "advance cooldown marker")
	}
	if err := s.stores.Stats.Incr(ctx, store.CounterIssued); err != nil {
		return IssuedChallenge{}, dErrors.Wrap(err, dErrors.CodeInternal, "count issuance")
	}
	if s.metrics != nil {
		s.metrics.ChallengesIssued.WithLabelValues(metrics.FlowLabel(maintenance)).Inc()
	}

	event := events.New(events.KindChallengeIssued, agent.Hex())
	event.ChallengeType = challenge.Type.String()
	event.Seed = seed.Hex()
	event.Deadline = challenge.Deadline
	event.Maintenance = maintenance
	s.publisher.Emit(ctx, event)

	s.logger.InfoContext(ctx, "challenge issued",
		"agent", agent.Hex(),
		"type", challenge.Type.String(),
		"deadline", challenge.Deadline,
		"maintenance", maintenance,
	)

	return IssuedChallenge{
		Seed:        seed,
		Type:        challenge.Type,
		Deadline:    challenge.Deadline,
		Maintenance: maintenance,
	}, nil
}

// SubmitAnswer verifies the answer against the live challenge. Precondition
// failures return an error; a wrong or late answer returns Success=false with
// the failure durably recorded.
func (s *Service) SubmitAnswer(ctx context.Context, agent common.Address, answer common.Hash) (VerificationResult, error) {
	ctx, span := s.tracer.Start(ctx, "poi.SubmitAnswer")
	defer span.End()

	head, err := s.source.Head(ctx)
	if err != nil {
		return VerificationResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "read chain head")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, err := s.stores.Challenges.Find(ctx, agent)
	if errors.Is(err, sentinel.ErrNotFound) {
		return VerificationResult{}, dErrors.New(dErrors.CodeNoChallengeActive, "no challenge active for agent")
	}
	if err != nil {
		return VerificationResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "read challenge")
	}
	if !challenge.Exists() || challenge.Completed {
		return VerificationResult{}, dErrors.New(dErrors.CodeNoChallengeActive, "no challenge active for agent")
	}

	if challenge.ExpiredAt(head.Number) {
		return s.recordFailure(ctx, challenge, OutcomeExpired)
	}

	// Recompute from the issuance-time snapshot, never the current head, so
	// verification replays identically anywhere in the window.
	expected, err := puzzle.Expected(challenge.Type, challenge.Seed, challenge.Agent, challenge.IssuedAtBlock, challenge.IssuedAtTime)
	if err != nil {
		return VerificationResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "recompute expected answer")
	}
	if answer != expected {
		return s.recordFailure(ctx, challenge, OutcomeWrongAnswer)
	}

	challenge.Completed = true
	if err := s.stores.Challenges.Save(ctx, challenge); err != nil {
		return VerificationResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "complete challenge")
	}
	if err := s.stores.Stats.Incr(ctx, store.CounterPassed); err != nil {
		return VerificationResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "count pass")
	}
	if s.metrics != nil {
		s.metrics.ChallengesPassed.WithLabelValues(metrics.FlowLabel(challenge.Maintenance)).Inc()
	}

	event := events.New(events.KindChallengePassed, agent.Hex())
	event.ChallengeType = challenge.Type.String()
	event.Maintenance = challenge.Maintenance
	event.Outcome = string(OutcomePassed)
	s.publisher.Emit(ctx, event)

	var cred models.Credential
	if challenge.Maintenance {
		cred, err = s.renewCredential(ctx, challenge, head)
	} else {
		cred, err = s.issueCredential(ctx, challenge, head)
	}
	if err != nil {
		return VerificationResult{}, err
	}

	return VerificationResult{Success: true, Outcome: OutcomePassed, Credential: &cred}, nil
}

// recordFailure completes the challenge as failed and persists the outcome.
// This path intentionally does not abort: the protocol wants failed attempts
// to count against reputation and statistics rather than vanish.
func (s *Service) recordFailure(ctx context.Context, challenge models.Challenge, outcome Outcome) (VerificationResult, error) {
	challenge.Completed = true
	if err := s.stores.Challenges.Save(ctx, challenge); err != nil {
		return VerificationResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "complete challenge")
	}
	if err := s.stores.Stats.Incr(ctx, store.CounterFailed); err != nil {
		return VerificationResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "count failure")
	}
	if s.metrics != nil {
		s.metrics.ChallengesFailed.WithLabelValues(metrics.FlowLabel(challenge.Maintenance), string(outcome)).Inc()
	}

	if challenge.Maintenance {
		if err := s.penalizeLocked(ctx, challenge.Agent); err != nil {
			return VerificationResult{}, err
		}
	}

	event := events.New(events.KindChallengeFailed, challenge.Agent.Hex())
	event.ChallengeType = challenge.Type.String()
	event.Maintenance = challenge.Maintenance
	event.Outcome = string(outcome)
	s.publisher.Emit(ctx, event)

	s.logger.InfoContext(ctx, "challenge failed",
		"agent", challenge.Agent.Hex(),
		"outcome", string(outcome),
		"maintenance", challenge.Maintenance,
	)

	return VerificationResult{Success: false, Outcome: outcome}, nil
}

// penalizeLocked applies the failed-maintenance reputation deduction. No
// other credential state changes: the agent may retry until the grace period
// lapses.
func (s *Service) penalizeLocked(ctx context.Context, agent common.Address) error {
	cred, err := s.stores.Credentials.Find(ctx, agent)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "read credential")
	}
	if !cred.Valid {
		return nil
	}

	cred.Reputation = models.ClampReputation(cred.Reputation - models.ReputationPenalty)
	if err := s.stores.Credentials.Save(ctx, cred); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "save reputation penalty")
	}
	if s.metrics != nil {
		s.metrics.ReputationUpdates.Inc()
	}

	event := events.New(events.KindReputationUpdated, agent.Hex())
	event.Reputation = cred.Reputation
	s.publisher.Emit(ctx, event)
	return nil
}

func (s *Service) issueCredential(ctx context.Context, challenge models.Challenge, head chain.Head) (models.Credential, error) {
	cred := models.Credential{
		Agent:         challenge.Agent,
		IssuedAt:      head.Time,
		ExpiresAt:     head.Time + models.Seconds(models.ValidityPeriod),
		ChallengeType: challenge.Type,
		BlockSolved:   head.Number,
		Valid:         true,
		Reputation:    models.ReputationInitial,
	}
	if err := s.stores.Credentials.Save(ctx, cred); err != nil {
		return models.Credential{}, dErrors.Wrap(err, dErrors.CodeInternal, "save credential")
	}
	if s.metrics != nil {
		s.metrics.CredentialsIssued.Inc()
	}

	event := events.New(events.KindCredentialIssued, cred.Agent.Hex())
	event.ChallengeType = cred.ChallengeType.String()
	event.ExpiresAt = cred.ExpiresAt
	event.Reputation = cred.Reputation
	s.publisher.Emit(ctx, event)

	s.logger.InfoContext(ctx, "credential issued",
		"agent", cred.Agent.Hex(),
		"expires_at", cred.ExpiresAt,
	)
	return cred, nil
}

func (s *Service) renewCredential(ctx context.Context, challenge models.Challenge, head chain.Head) (models.Credential, error) {
	cred, err := s.stores.Credentials.Find(ctx, challenge.Agent)
	if err != nil {
		return models.Credential{}, dErrors.Wrap(err, dErrors.CodeInternal, "read credential")
	}
	if !cred.Valid {
		// Decayed or revoked between issuance and submission. Decay is
		// one-way: a correct answer must not resurrect the credential.
		s.logger.WarnContext(ctx, "maintenance passed on invalidated credential",
			"agent", cred.Agent.Hex(),
		)
		return cred, nil
	}

	cred.ExpiresAt = head.Time + models.Seconds(models.ValidityPeriod)
	cred.LastMaintained = head.Time
	cred.MaintenanceCount++
	cred.Reputation = models.ClampReputation(cred.Reputation + models.ReputationReward)
	if err := s.stores.Credentials.Save(ctx, cred); err != nil {
		return models.Credential{}, dErrors.Wrap(err, dErrors.CodeInternal, "save renewal")
	}
	if err := s.stores.Stats.Incr(ctx, store.CounterRenewals); err != nil {
		return models.Credential{}, dErrors.Wrap(err, dErrors.CodeInternal, "count renewal")
	}
	if s.metrics != nil {
		s.metrics.CredentialsRenewed.Inc()
		s.metrics.ReputationUpdates.Inc()
	}

	event := events.New(events.KindCredentialRenewed, cred.Agent.Hex())
	event.ExpiresAt = cred.ExpiresAt
	event.MaintenanceCount = cred.MaintenanceCount
	event.Reputation = cred.Reputation
	s.publisher.Emit(ctx, event)

	repEvent := events.New(events.KindReputationUpdated, cred.Agent.Hex())
	repEvent.Reputation = cred.Reputation
	s.publisher.Emit(ctx, repEvent)

	s.logger.InfoContext(ctx, "credential renewed",
		"agent", cred.Agent.Hex(),
		"expires_at", cred.ExpiresAt,
		"maintenance_count", cred.MaintenanceCount,
		"reputation", cred.Reputation,
	)
	return cred, nil
}

// TriggerDecay forces Grace → Decayed when the grace period has lapsed.
// Callable by anyone; a credential that is absent, already invalid, or still
// renewable makes this a no-op.
func (s *Service) TriggerDecay(ctx context.Context, agent common.Address) error {
	ctx, span := s.tracer.Start(ctx, "poi.TriggerDecay")
	defer span.End()

	head, err := s.source.Head(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "read chain head")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.stores.Credentials.Find(ctx, agent)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "read credential")
	}
	if !cred.Valid || !cred.PastGrace(head.Time) {
		return nil
	}

	if err := s.decayLocked(ctx, cred); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "decay credential")
	}
	return nil
}

// decayLocked persists the one-way terminal transition: valid=false,
// reputation reset. Re-entry requires a brand-new initial verification.
func (s *Service) decayLocked(ctx context.Context, cred models.Credential) error {
	cred.Valid = false
	cred.Reputation = models.ReputationMin
	if err := s.stores.Credentials.Save(ctx, cred); err != nil {
		return err
	}
	if err := s.stores.Stats.Incr(ctx, store.CounterDecayed); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.CredentialsDecayed.Inc()
		s.metrics.ReputationUpdates.Inc()
	}

	event := events.New(events.KindCredentialDecayed, cred.Agent.Hex())
	event.Reputation = cred.Reputation
	s.publisher.Emit(ctx, event)

	repEvent := events.New(events.KindReputationUpdated, cred.Agent.Hex())
	repEvent.Reputation = cred.Reputation
	s.publisher.Emit(ctx, repEvent)

	s.logger.InfoContext(ctx, "credential decayed", "agent", cred.Agent.Hex())
	return nil
}

// RevokeCredential invalidates a credential unconditionally, bypassing decay
// semantics. Reputation is kept for fraud forensics. Access control is the
// integrating system's responsibility.
func (s *Service) RevokeCredential(ctx context.Context, agent common.Address, reason string) error {
	ctx, span := s.tracer.Start(ctx, "poi.RevokeCredential")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.stores.Credentials.Find(ctx, agent)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "no credential to revoke")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "read credential")
	}

	cred.Valid = false
	if err := s.stores.Credentials.Save(ctx, cred); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "save revocation")
	}
	if s.metrics != nil {
		s.metrics.CredentialsRevoked.Inc()
	}

	event := events.New(events.KindCredentialRevoked, agent.Hex())
	event.Reason = reason
	s.publisher.Emit(ctx, event)

	s.logger.WarnContext(ctx, "credential revoked",
		"agent", agent.Hex(),
		"reason", reason,
	)
	return nil
}

// HasValidPoI reports whether the agent holds a valid, unexpired credential.
func (s *Service) HasValidPoI(ctx context.Context, agent common.Address) (bool, error) {
	head, cred, err := s.credentialAt(ctx, agent)
	if err != nil {
		return false, err
	}
	return cred.HasValidPoI(head.Time), nil
}

// IsInGracePeriod reports whether the credential is expired but still
// renewable. Derived at query time; nothing is stored.
func (s *Service) IsInGracePeriod(ctx context.Context, agent common.Address) (bool, error) {
	head, cred, err := s.credentialAt(ctx, agent)
	if err != nil {
		return false, err
	}
	return cred.InGracePeriod(head.Time), nil
}

// DaysUntilExpiry returns whole days remaining, 0 if expired or invalid.
func (s *Service) DaysUntilExpiry(ctx context.Context, agent common.Address) (uint64, error) {
	head, cred, err := s.credentialAt(ctx, agent)
	if err != nil {
		return 0, err
	}
	return cred.DaysUntilExpiry(head.Time), nil
}

// IsVerifiedIntelligentAgent reports registry membership plus a valid PoI.
func (s *Service) IsVerifiedIntelligentAgent(ctx context.Context, agent common.Address) (bool, error) {
	balance, err := s.registry.BalanceOf(ctx, agent)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "check registry membership")
	}
	if balance.Sign() <= 0 {
		return false, nil
	}
	return s.HasValidPoI(ctx, agent)
}

func (s *Service) credentialAt(ctx context.Context, agent common.Address) (chain.Head, models.Credential, error) {
	head, err := s.source.Head(ctx)
	if err != nil {
		return chain.Head{}, models.Credential{}, dErrors.Wrap(err, dErrors.CodeInternal, "read chain head")
	}
	cred, err := s.stores.Credentials.Find(ctx, agent)
	if errors.Is(err, sentinel.ErrNotFound) {
		return head, models.Credential{}, nil
	}
	if err != nil {
		return chain.Head{}, models.Credential{}, dErrors.Wrap(err, dErrors.CodeInternal, "read credential")
	}
	return head, cred, nil
}

// GetCredential returns the stored credential record.
func (s *Service) GetCredential(ctx context.Context, agent common.Address) (models.Credential, error) {
	cred, err := s.stores.Credentials.Find(ctx, agent)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Credential{}, dErrors.New(dErrors.CodeNotFound, "no credential for agent")
	}
	if err != nil {
		return models.Credential{}, dErrors.Wrap(err, dErrors.CodeInternal, "read credential")
	}
	return cred, nil
}

// GetChallenge returns the agent's challenge record, live or completed.
func (s *Service) GetChallenge(ctx context.Context, agent common.Address) (models.Challenge, error) {
	challenge, err := s.stores.Challenges.Find(ctx, agent)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Challenge{}, dErrors.New(dErrors.CodeNotFound, "no challenge for agent")
	}
	if err != nil {
		return models.Challenge{}, dErrors.Wrap(err, dErrors.CodeInternal, "read challenge")
	}
	return challenge, nil
}

// GetStats returns the global terminal-event counters.
func (s *Service) GetStats(ctx context.Context) (models.Stats, error) {
	snap, err := s.stores.Stats.Snapshot(ctx)
	if err != nil {
		return models.Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "read stats")
	}
	return snap, nil
}
