package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"sospeso/internal/audit"
	jwttoken "sospeso/internal/jwt_token"
	"sospeso/internal/platform/config"
	"sospeso/internal/platform/httpserver"
	"sospeso/internal/platform/logger"
	platformredis "sospeso/internal/platform/redis"
	"sospeso/internal/sospeso/handler"
	"sospeso/internal/sospeso/metrics"
	"sospeso/internal/sospeso/service"
	"sospeso/internal/sospeso/store"
	httptransport "sospeso/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vouchers, cleanupStore, err := buildStore(ctx, cfg)
	if err != nil {
		log.Error("store setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanupStore()

	publisher, inbox, cleanupAudit, err := buildAuditPublisher(ctx, cfg)
	if err != nil {
		log.Error("audit setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanupAudit()

	svcOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
		service.WithAuditPublisher(audit.NewChannelPublisher(inbox, log)),
	}
	if cfg.UnitPrice > 0 {
		svcOpts = append(svcOpts, service.WithUnitPrice(cfg.UnitPrice))
	}
	svc := service.New(vouchers, svcOpts...)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "sospeso", "sospeso-api")
	sospesoHandler := handler.New(svc, log, jwttoken.NewJWTServiceAdapter(jwtService))
	router := httptransport.NewRouter(sospesoHandler)
	srv := httpserver.New(cfg.Addr, router)

	worker := audit.NewWorker(publisher, inbox, log)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting sospeso server", "addr", cfg.Addr)
		return httpserver.Run(groupCtx, srv, 10*time.Second)
	})
	group.Go(func() error {
		return worker.Run(groupCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// buildStore selects the voucher store: Postgres when a DSN is configured,
// in-memory otherwise, with a Redis read-through cache layered on when
// available.
func buildStore(ctx context.Context, cfg config.Config) (store.Store, func(), error) {
	cleanup := func() {}

	var vouchers store.Store
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := store.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		vouchers = store.NewPostgres(db)
		cleanup = func() { db.Close() }
	} else {
		vouchers = store.NewInMemory()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if redisClient != nil {
		vouchers = store.NewCache(vouchers, redisClient.Client)
		inner := cleanup
		cleanup = func() {
			redisClient.Close()
			inner()
		}
	}

	return vouchers, cleanup, nil
}

// buildAuditPublisher selects the audit sink: Kafka when brokers are
// configured, an in-process store otherwise. Events always flow through the
// inbox channel so command handling never blocks on the sink.
func buildAuditPublisher(ctx context.Context, cfg config.Config) (audit.Publisher, chan audit.Event, func(), error) {
	inbox := make(chan audit.Event, 256)

	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := audit.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, nil, nil, err
		}
		return kafkaPublisher, inbox, kafkaPublisher.Close, nil
	}

	return audit.NewStorePublisher(audit.NewInMemoryStore()), inbox, func() {}, nil
}
