// Command server runs the deal clearing engine: athlete and issuer
// registration, the attestation store, the compliance gate, and the
// attestation-gated payout lifecycle, all behind one HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"nilgate/internal/athlete"
	"nilgate/internal/attestation"
	"nilgate/internal/audit"
	"nilgate/internal/chain"
	"nilgate/internal/compliance"
	compliancemetrics "nilgate/internal/compliance/metrics"
	dealmetrics "nilgate/internal/deal/metrics"
	dealservice "nilgate/internal/deal/service"
	dealstore "nilgate/internal/deal/store"
	"nilgate/internal/events"
	"nilgate/internal/issuer"
	"nilgate/internal/notify"
	"nilgate/internal/orchestrator"
	"nilgate/internal/payout"
	payoutmetrics "nilgate/internal/payout/metrics"
	"nilgate/internal/platform/config"
	"nilgate/internal/platform/httpserver"
	"nilgate/internal/platform/logger"
	platformmetrics "nilgate/internal/platform/metrics"
	"nilgate/internal/platform/ratelimit"
	"nilgate/internal/platform/redis"
	"nilgate/internal/platform/tracing"
	httptransport "nilgate/internal/transport/http"
	"nilgate/pkg/platform/circuit"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, "nilgate", cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracing init failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Stores: postgres when configured, in-memory otherwise. The in-memory
	// variants serve local runs and tests; semantics are identical.
	var (
		athleteStore     athlete.Store
		attestationStore attestation.Store
		dStore           dealstore.Store
		payoutStore      payout.Store
		issuerStore      issuer.Store
		auditStore       audit.Store
	)
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres pool init failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
		athleteStore = athlete.NewPostgresStore(pool)
		attestationStore = attestation.NewPostgresStore(pool)
		dStore = dealstore.NewPostgresStore(pool)
		payoutStore = payout.NewPostgresStore(pool)
		issuerStore = issuer.NewPostgresStore(pool)
		auditStore = audit.NewPostgresStore(pool)
		log.Info("using postgres stores")
	} else {
		athleteStore = athlete.NewInMemoryStore()
		attestationStore = attestation.NewInMemoryStore()
		dStore = dealstore.NewInMemoryStore()
		payoutStore = payout.NewInMemoryStore()
		issuerStore = issuer.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		log.Warn("postgres not configured; using in-memory stores")
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		attestationStore = attestation.NewCachedStore(attestationStore, redisClient.Client, cfg.Redis.CacheTTL, log)
		log.Info("attestation read cache enabled")
	}

	policies := compliance.DefaultPolicySet()
	if cfg.PolicyFile != "" {
		policies, err = compliance.LoadPolicyFile(cfg.PolicyFile)
		if err != nil {
			log.Error("policy file load failed", "file", cfg.PolicyFile, "error", err)
			os.Exit(1)
		}
	}
	log.Info("compliance policy loaded", "version", policies.Version)

	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("kafka publisher init failed", "error", err)
			os.Exit(1)
		}
		publisher = kp
		log.Info("lifecycle events to kafka", "topic", cfg.KafkaTopic)
	} else {
		publisher = events.NewMemorySink()
		log.Warn("kafka not configured; lifecycle events stay in process")
	}
	defer publisher.Close()

	// The audit trail rides the same event stream as the broker publisher.
	trail := audit.NewTrail(auditStore, log)
	go func() { _ = trail.Run(ctx) }()
	publisher = events.NewFanout(publisher, trail)

	var chainClient chain.Client = chain.NewSimulatedClient()
	chainClient = chain.NewBreakerClient(chainClient, circuit.New("chain"), log)

	attestationSvc := attestation.NewService(attestationStore, log)
	athleteSvc := athlete.NewService(athleteStore, log)
	ledger := dealservice.NewLedger(dStore, log, dealservice.WithMetrics(dealmetrics.New()))
	evaluator := compliance.NewEvaluator(policies, attestationSvc, log,
		compliance.WithMetrics(compliancemetrics.New()))
	engine := payout.NewEngine(ledger, payoutStore, chainClient, cfg.ChainTimeout, log,
		payout.WithMetrics(payoutmetrics.New()))

	tokenSvc := issuer.NewTokenService(cfg.JWTSigningKey, cfg.IssuerTokenTTL)
	issuerSvc := issuer.NewService(issuerStore, tokenSvc, log)

	lifecycle := orchestrator.NewService(
		ledger,
		athleteSvc,
		evaluator,
		engine,
		chainClient,
		publisher,
		cfg.ChainTimeout,
		cfg.NotifyTimeout,
		log,
		orchestrator.WithNotifier(notify.NewLoggingNotifier(log)),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Deals:        httptransport.NewDealHandler(lifecycle, log),
		Athletes:     httptransport.NewAthleteHandler(athleteSvc, log),
		Attestations: httptransport.NewAttestationHandler(attestationSvc, log),
		Issuers:      httptransport.NewIssuerHandler(issuerSvc, log),
		Audit:        httptransport.NewAuditHandler(trail),
		TokenValid:   tokenSvc,
		Metrics:      platformmetrics.NewHTTP(),
		Logger:       log,
	})

	if cfg.RateLimit > 0 {
		limiter := ratelimit.NewLimiter(cfg.RateLimit, cfg.RateLimitWindow)
		router = limiter.Middleware(router)
		log.Info("rate limiting enabled", "limit", cfg.RateLimit, "window", cfg.RateLimitWindow.String())
	}

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
