package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. Domain timing constants
// (validity, grace, cooldowns) live in internal/poi/models; this covers only
// deployment concerns.
type Server struct {
	Addr     string
	LogLevel string

	// Chain access. The registry contract is the membership gate: an agent is
	// registered iff balanceOf(agent) > 0. An empty RPC URL selects the
	// simulated dev chain, which admits every agent.
	ChainRPCURL     string
	RegistryAddress string

	// Optional backing stores. Empty values fall back to in-memory stores.
	RedisURL    string
	PostgresDSN string

	// Optional Kafka event sink. Empty brokers fall back to log-only events.
	KafkaBrokers []string
	KafkaTopic   string

	// Attestation token signing.
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	ShutdownTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:            envOr("AGENTPROOF_ADDR", ":8080"),
		LogLevel:        envOr("AGENTPROOF_LOG_LEVEL", "info"),
		ChainRPCURL:     os.Getenv("AGENTPROOF_CHAIN_RPC_URL"),
		RegistryAddress: os.Getenv("AGENTPROOF_REGISTRY_ADDRESS"),
		RedisURL:        os.Getenv("AGENTPROOF_REDIS_URL"),
		PostgresDSN:     os.Getenv("AGENTPROOF_POSTGRES_DSN"),
		KafkaTopic:      envOr("AGENTPROOF_KAFKA_TOPIC", "agentproof.events"),
		JWTIssuer:       envOr("AGENTPROOF_JWT_ISSUER", "agentproof"),
		JWTAudience:     envOr("AGENTPROOF_JWT_AUDIENCE", "agentproof-clients"),
		ShutdownTimeout: 10 * time.Second,
	}

	if brokers := os.Getenv("AGENTPROOF_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	cfg.JWTSigningKey = os.Getenv("AGENTPROOF_JWT_SIGNING_KEY")
	if cfg.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
