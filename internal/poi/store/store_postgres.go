package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	_ "github.com/lib/pq"

	"agentproof/internal/poi/models"
	"agentproof/pkg/platform/sentinel"
)

// Schema for the Postgres-backed stores. Applied idempotently at startup;
// production deployments can run it through their own migration tooling
// instead.
const schema = `
CREATE TABLE IF NOT EXISTS challenges (
    agent            TEXT PRIMARY KEY,
    puzzle_type      SMALLINT NOT NULL,
    seed             TEXT NOT NULL,
    deadline         BIGINT NOT NULL,
    issued_at_block  BIGINT NOT NULL,
    issued_at_time   BIGINT NOT NULL,
    completed        BOOLEAN NOT NULL DEFAULT FALSE,
    maintenance      BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS credentials (
    agent             TEXT PRIMARY KEY,
    issued_at         BIGINT NOT NULL,
    expires_at        BIGINT NOT NULL,
    challenge_type    SMALLINT NOT NULL,
    block_solved      BIGINT NOT NULL,
    valid             BOOLEAN NOT NULL,
    maintenance_count BIGINT NOT NULL DEFAULT 0,
    last_maintained   BIGINT NOT NULL DEFAULT 0,
    reputation        INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS cooldowns (
    agent        TEXT PRIMARY KEY,
    last_attempt BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS stats (
    counter TEXT PRIMARY KEY,
    value   BIGINT NOT NULL DEFAULT 0
);
`

// EnsureSchema creates the tables used by the Postgres stores.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// PostgresChallengeStore persists challenge records in PostgreSQL.
type PostgresChallengeStore struct {
	db *sql.DB
}

func NewPostgresChallengeStore(db *sql.DB) *PostgresChallengeStore {
	return &PostgresChallengeStore{db: db}
}

func (s *PostgresChallengeStore) Save(ctx context.Context, ch models.Challenge) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO challenges (agent, puzzle_type, seed, deadline, issued_at_block, issued_at_time, completed, maintenance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (agent) DO UPDATE SET
			puzzle_type = EXCLUDED.puzzle_type,
			seed = EXCLUDED.seed,
			deadline = EXCLUDED.deadline,
			issued_at_block = EXCLUDED.issued_at_block,
			issued_at_time = EXCLUDED.issued_at_time,
			completed = EXCLUDED.completed,
			maintenance = EXCLUDED.maintenance`,
		ch.Agent.Hex(), int16(ch.Type), ch.Seed.Hex(), int64(ch.Deadline),
		int64(ch.IssuedAtBlock), int64(ch.IssuedAtTime), ch.Completed, ch.Maintenance)
	if err != nil {
		return fmt.Errorf("save challenge: %w", err)
	}
	return nil
}

func (s *PostgresChallengeStore) Find(ctx context.Context, agent common.Address) (models.Challenge, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT puzzle_type, seed, deadline, issued_at_block, issued_at_time, completed, maintenance
		FROM challenges WHERE agent = $1`, agent.Hex())

	var (
		typ                              int16
		seed                             string
		deadline, issuedBlock, issuedTime int64
		completed, maintenance           bool
	)
	err := row.Scan(&typ, &seed, &deadline, &issuedBlock, &issuedTime, &completed, &maintenance)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Challenge{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Challenge{}, fmt.Errorf("find challenge: %w", err)
	}
	return models.Challenge{
		Agent:         agent,
		Type:          models.PuzzleType(typ),
		Seed:          common.HexToHash(seed),
		Deadline:      uint64(deadline),
		IssuedAtBlock: uint64(issuedBlock),
		IssuedAtTime:  uint64(issuedTime),
		Completed:     completed,
		Maintenance:   maintenance,
	}, nil
}

// PostgresCredentialStore persists credentials in PostgreSQL.
type PostgresCredentialStore struct {
	db *sql.DB
}

func NewPostgresCredentialStore(db *sql.DB) *PostgresCredentialStore {
	return &PostgresCredentialStore{db: db}
}

func (s *PostgresCredentialStore) Save(ctx context.Context, cred models.Credential) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (agent, issued_at, expires_at, challenge_type, block_solved, valid, maintenance_count, last_maintained, reputation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (agent) DO UPDATE SET
			issued_at = EXCLUDED.issued_at,
			expires_at = EXCLUDED.expires_at,
			challenge_type = EXCLUDED.challenge_type,
			block_solved = EXCLUDED.block_solved,
			valid = EXCLUDED.valid,
			maintenance_count = EXCLUDED.maintenance_count,
			last_maintained = EXCLUDED.last_maintained,
			reputation = EXCLUDED.reputation`,
		cred.Agent.Hex(), int64(cred.IssuedAt), int64(cred.ExpiresAt), int16(cred.ChallengeType),
		int64(cred.BlockSolved), cred.Valid, int64(cred.MaintenanceCount), int64(cred.LastMaintained), cred.Reputation)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *PostgresCredentialStore) Find(ctx context.Context, agent common.Address) (models.Credential, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT issued_at, expires_at, challenge_type, block_solved, valid, maintenance_count, last_maintained, reputation
		FROM credentials WHERE agent = $1`, agent.Hex())

	var (
		issuedAt, expiresAt, blockSolved, maintCount, lastMaint int64
		typ                                                     int16
		valid                                                   bool
		reputation                                              int
	)
	err := row.Scan(&issuedAt, &expiresAt, &typ, &blockSolved, &valid, &maintCount, &lastMaint, &reputation)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Credential{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Credential{}, fmt.Errorf("find credential: %w", err)
	}
	return models.Credential{
		Agent:            agent,
		IssuedAt:         uint64(issuedAt),
		ExpiresAt:        uint64(expiresAt),
		ChallengeType:    models.PuzzleType(typ),
		BlockSolved:      uint64(blockSolved),
		Valid:            valid,
		MaintenanceCount: uint64(maintCount),
		LastMaintained:   uint64(lastMaint),
		Reputation:       reputation,
	}, nil
}

// PostgresCooldownStore persists last-attempt markers in PostgreSQL.
type PostgresCooldownStore struct {
	db *sql.DB
}

func NewPostgresCooldownStore(db *sql.DB) *PostgresCooldownStore {
	return &PostgresCooldownStore{db: db}
}

func (s *PostgresCooldownStore) Touch(ctx context.Context, agent common.Address, at uint64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cooldowns (agent, last_attempt) VALUES ($1, $2)
		ON CONFLICT (agent) DO UPDATE SET last_attempt = EXCLUDED.last_attempt`,
		agent.Hex(), int64(at))
	if err != nil {
		return fmt.Errorf("touch cooldown: %w", err)
	}
	return nil
}

func (s *PostgresCooldownStore) LastAttempt(ctx context.Context, agent common.Address) (uint64, error) {
	var at int64
	err := s.db.QueryRowContext(ctx,
		`SELECT last_attempt FROM cooldowns WHERE agent = $1`, agent.Hex()).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("find cooldown: %w", err)
	}
	return uint64(at), nil
}

// PostgresStatsStore accumulates global counters in PostgreSQL.
type PostgresStatsStore struct {
	db *sql.DB
}

func NewPostgresStatsStore(db *sql.DB) *PostgresStatsStore {
	return &PostgresStatsStore{db: db}
}

func (s *PostgresStatsStore) Incr(ctx context.Context, counter Counter) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stats (counter, value) VALUES ($1, 1)
		ON CONFLICT (counter) DO UPDATE SET value = stats.value + 1`,
		string(counter))
	if err != nil {
		return fmt.Errorf("increment %s: %w", counter, err)
	}
	return nil
}

func (s *PostgresStatsStore) Snapshot(ctx context.Context) (models.Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT counter, value FROM stats`)
	if err != nil {
		return models.Stats{}, fmt.Errorf("read stats: %w", err)
	}
	defer rows.Close()

	var stats models.Stats
	for rows.Next() {
		var counter string
		var value int64
		if err := rows.Scan(&counter, &value); err != nil {
			return models.Stats{}, fmt.Errorf("scan stats row: %w", err)
		}
		switch Counter(counter) {
		case CounterIssued:
			stats.ChallengesIssued = uint64(value)
		case CounterPassed:
			stats.ChallengesPassed = uint64(value)
		case CounterFailed:
			stats.ChallengesFailed = uint64(value)
		case CounterRenewals:
			stats.Renewals = uint64(value)
		case CounterDecayed:
			stats.Decayed = uint64(value)
		}
	}
	return stats, rows.Err()
}
