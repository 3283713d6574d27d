package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"surety/internal/bond"
	"surety/internal/geofence"
	"surety/internal/identity"
	"surety/internal/jobs"
	"surety/internal/ledger"
	"surety/internal/platform/config"
	"surety/internal/platform/httpserver"
	"surety/internal/platform/logger"
	"surety/internal/platform/metrics"
	httptransport "surety/internal/transport/http"
	"surety/internal/wage"
	"surety/pkg/platform/audit/publisher"
	auditkv "surety/pkg/platform/audit/store/kv"
	"surety/pkg/platform/circuit"
	"surety/pkg/platform/middleware/auth"
	"surety/pkg/platform/middleware/ratelimit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	hashKey := flag.String("hash-api-key", "", "print the bcrypt hash for an oracle API key and exit")
	flag.Parse()
	if *hashKey != "" {
		hash, err := auth.HashAPIKey(*hashKey)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.UsesDevSigningKey() {
		log.Warn("using the development JWT signing key")
	}

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	reg := metrics.New()

	kv, closeKV, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeKV()

	sites, err := loadSites(cfg.SitesPath)
	if err != nil {
		return err
	}
	wages, err := wage.NewCalculator(wage.Policy{
		WorkerBP:    cfg.Wage.WorkerBP,
		InsuranceBP: cfg.Wage.InsuranceBP,
		SavingsBP:   cfg.Wage.SavingsBP,
		ProtocolBP:  cfg.Wage.ProtocolBP,
	})
	if err != nil {
		return err
	}

	auditor := publisher.NewPublisher(auditkv.New(kv),
		publisher.WithAsyncBuffer(1024),
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics(reg)),
	)
	defer auditor.Close()

	content, err := openContentStore(ctx, cfg)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	chain, closeChain, err := openChain(gctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeChain()

	identitySvc := identity.NewService(identity.NewRepository(kv),
		identity.WithLogger(log),
		identity.WithContentPublisher(content),
	)
	ledgerSvc := ledger.NewService(ledger.NewStore(kv), chain,
		ledger.WithLogger(log),
		ledger.WithMetrics(ledger.NewMetrics(reg)),
		ledger.WithAuditPublisher(auditor),
		ledger.WithRetryConcurrency(cfg.Ledger.RetryConcurrency),
		ledger.WithBreaker(circuit.New("ledger-chain",
			circuit.WithFailureThreshold(cfg.Ledger.BreakerThreshold),
			circuit.WithCooldown(cfg.Ledger.BreakerCooldown),
		)),
	)
	if cfg.Ledger.Backend == config.LedgerKafka {
		client, err := ledger.NewKafkaClient(cfg.Ledger.Brokers, cfg.Ledger.ConsumerGroup, cfg.Ledger.ReceiptTopic)
		if err != nil {
			return fmt.Errorf("kafka receipt consumer: %w", err)
		}
		defer client.Close()
		consumer := ledger.NewReceiptConsumer(client, ledgerSvc, log)
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	bondSvc := bond.New(bond.NewRepository(kv), identitySvc,
		bond.WithLogger(log),
		bond.WithMetrics(bond.NewMetrics(reg)),
		bond.WithAuditPublisher(auditor),
		bond.WithTracer(otel.Tracer("surety/internal/bond")),
		bond.WithLedger(ledgerSvc),
		bond.WithSites(sites),
		bond.WithWageCalculator(wages),
		bond.WithLockTimeout(cfg.LockTimeout),
	)
	jobSvc := jobs.NewService(jobs.NewRepository(kv), bondSvc,
		jobs.WithLogger(log),
		jobs.WithAuditPublisher(auditor),
		jobs.WithSites(sites),
	)

	authn := auth.NewAuthenticator(
		auth.NewTokenService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer),
		auth.WithOracleKeyHash(cfg.Auth.OracleKeyHash),
		auth.WithLogger(log),
		auth.WithAuditPublisher(auditor),
	)
	limitMetrics := ratelimit.NewMetrics(reg)
	limiterOpts := []ratelimit.Option{
		ratelimit.WithLogger(log),
		ratelimit.WithMetrics(limitMetrics),
		ratelimit.WithAuditPublisher(auditor),
	}

	handler := httptransport.NewHandler(bondSvc, identitySvc, jobSvc, ledgerSvc,
		httptransport.WithLogger(log),
		httptransport.WithSites(sites),
		httptransport.WithWageCalculator(wages),
	)
	router := httptransport.NewRouter(handler, httptransport.RouterConfig{
		Auth:        authn,
		PublicLimit: ratelimit.New("public", cfg.RateLimit.PublicRPS, cfg.RateLimit.PublicBurst, limiterOpts...),
		OracleLimit: ratelimit.New("oracle", cfg.RateLimit.OracleRPS, cfg.RateLimit.OracleBurst, limiterOpts...),
		Metrics:     reg,
		Ready:       readiness(kv),
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	g.Go(func() error {
		log.Info("starting surety",
			"addr", cfg.Server.Addr,
			"storage", cfg.Storage.Backend,
			"ledger", cfg.Ledger.Backend,
			"content_store", cfg.ContentStore.Backend,
		)
		return httpserver.Run(gctx, srv, cfg.Server.ShutdownTimeout)
	})
	return g.Wait()
}

func loadSites(path string) (*geofence.Sites, error) {
	if path == "" {
		return geofence.NewSites()
	}
	return geofence.LoadSites(path)
}
