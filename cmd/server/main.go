package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"agentproof/internal/attestation"
	"agentproof/internal/chain"
	"agentproof/internal/chain/ethereum"
	"agentproof/internal/chain/simulated"
	"agentproof/internal/platform/config"
	"agentproof/internal/platform/httpserver"
	"agentproof/internal/platform/logger"
	redisplatform "agentproof/internal/platform/redis"
	"agentproof/internal/poi/metrics"
	"agentproof/internal/poi/service"
	"agentproof/internal/poi/store"
	httptransport "agentproof/internal/transport/http"
	"agentproof/pkg/platform/events"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in internal/poi.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, registry, closeChain, err := buildChain(ctx, cfg, log)
	if err != nil {
		log.Error("initialize chain access", "error", err)
		os.Exit(1)
	}
	defer closeChain()

	stores, cleanup, err := buildStores(ctx, cfg, log)
	if err != nil {
		log.Error("initialize stores", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	publisher, runPublisher := buildPublisher(cfg, log)
	defer publisher.Close()

	svc, err := service.New(stores, source, registry,
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
		service.WithPublisher(publisher),
	)
	if err != nil {
		log.Error("initialize service", "error", err)
		os.Exit(1)
	}

	issuer := attestation.NewIssuer(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	handler := httptransport.New(svc, issuer, source, log)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting agentproof gateway", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if runPublisher != nil {
		g.Go(func() error {
			if err := runPublisher(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// buildChain dials the configured RPC endpoint, or falls back to the
// wall-clock simulated chain when none is set so the gateway runs locally
// without a node.
func buildChain(ctx context.Context, cfg config.Server, log *slog.Logger) (chain.Source, chain.Registry, func(), error) {
	if cfg.ChainRPCURL == "" {
		log.Warn("no chain RPC configured, using simulated chain; every agent counts as registered")
		sim := simulated.New()
		return sim, sim, func() {}, nil
	}

	if !common.IsHexAddress(cfg.RegistryAddress) {
		return nil, nil, nil, fmt.Errorf("registry address %q is not a hex address", cfg.RegistryAddress)
	}
	client, err := ethereum.Dial(ctx, cfg.ChainRPCURL, common.HexToAddress(cfg.RegistryAddress))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("dial chain rpc %s: %w", cfg.ChainRPCURL, err)
	}
	return client, client, client.Close, nil
}

// buildStores picks the persistence backend: Postgres when a DSN is set,
// Redis when a URL is set, in-memory otherwise.
func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) (service.Stores, func(), error) {
	switch {
	case cfg.PostgresDSN != "":
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return service.Stores{}, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return service.Stores{}, nil, err
		}
		if err := store.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return service.Stores{}, nil, err
		}
		log.Info("using postgres stores")
		return service.Stores{
			Challenges:  store.NewPostgresChallengeStore(db),
			Credentials: store.NewPostgresCredentialStore(db),
			Cooldowns:   store.NewPostgresCooldownStore(db),
			Stats:       store.NewPostgresStatsStore(db),
		}, func() { db.Close() }, nil

	case cfg.RedisURL != "":
		client, err := redisplatform.New(cfg.RedisURL)
		if err != nil {
			return service.Stores{}, nil, err
		}
		log.Info("using redis stores")
		return service.Stores{
			Challenges:  store.NewRedisChallengeStore(client.Client),
			Credentials: store.NewRedisCredentialStore(client.Client),
			Cooldowns:   store.NewRedisCooldownStore(client.Client),
			Stats:       store.NewRedisStatsStore(client.Client),
		}, func() { client.Close() }, nil

	default:
		log.Info("using in-memory stores")
		return service.Stores{
			Challenges:  store.NewInMemoryChallengeStore(),
			Credentials: store.NewInMemoryCredentialStore(),
			Cooldowns:   store.NewInMemoryCooldownStore(),
			Stats:       store.NewInMemoryStatsStore(),
		}, func() {}, nil
	}
}

// buildPublisher picks the event sink: Kafka when brokers are configured,
// structured logs otherwise. The second return is the background flush loop
// for sinks that need one.
func buildPublisher(cfg config.Server, log *slog.Logger) (events.Publisher, func(context.Context) error) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NewLogging(log), nil
	}
	kafka, err := events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	if err != nil {
		log.Warn("kafka unavailable, falling back to log events", "error", err)
		return events.NewLogging(log), nil
	}
	log.Info("publishing events to kafka", "topic", cfg.KafkaTopic)
	return kafka, kafka.Run
}
