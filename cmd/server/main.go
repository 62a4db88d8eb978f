package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"lineage/internal/duplicate/cache"
	duphandler "lineage/internal/duplicate/handler"
	dupmetrics "lineage/internal/duplicate/metrics"
	dupservice "lineage/internal/duplicate/service"
	mergehandler "lineage/internal/merge/handler"
	mergeservice "lineage/internal/merge/service"
	personhandler "lineage/internal/person/handler"
	personmetrics "lineage/internal/person/metrics"
	personservice "lineage/internal/person/service"
	personstore "lineage/internal/person/store"
	"lineage/internal/platform/config"
	"lineage/internal/platform/httpserver"
	"lineage/internal/platform/logger"
	"lineage/internal/platform/middleware"
	platformredis "lineage/internal/platform/redis"
	relhandler "lineage/internal/relationship/handler"
	relmetrics "lineage/internal/relationship/metrics"
	relservice "lineage/internal/relationship/service"
	relstore "lineage/internal/relationship/store"
	"lineage/internal/token"
	audit "lineage/pkg/platform/audit"
	"lineage/pkg/platform/audit/publisher"
	auditmem "lineage/pkg/platform/audit/store/memory"
	auditpg "lineage/pkg/platform/audit/store/postgres"
	"lineage/pkg/platform/audit/worker"
	"lineage/pkg/platform/httputil"
)

// auditTee streams events to Kafka while a worker persists them to the
// local outbox. The inbox send never blocks the request path.
type auditTee struct {
	kafka *publisher.KafkaPublisher
	inbox chan<- audit.Event
}

func (t *auditTee) Emit(ctx context.Context, event audit.Event) error {
	select {
	case t.inbox <- event:
	default:
	}
	return t.kafka.Emit(ctx, event)
}

// main wires storage, audit, and the HTTP surface, and keeps the server
// lifecycle small. Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage. Without POSTGRES_URL everything runs in memory, which is
	// enough for local development and demos.
	var (
		persons    personservice.PersonStore
		rels       relservice.RelationshipStore
		personOpts []personservice.Option
		pool       *pgxpool.Pool
		outboxDB   *sql.DB
		auditStore audit.Store
	)
	if cfg.PostgresURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("failed to open postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		persons = personstore.NewPostgres(pool)
		rels = relstore.NewPostgres(pool)

		outboxDB, err = sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("failed to open audit outbox connection", "error", err)
			os.Exit(1)
		}
		defer outboxDB.Close()
		auditStore = auditpg.New(outboxDB)
	} else {
		log.Warn("POSTGRES_URL not set, using in-memory stores")
		memRels := relstore.NewInMemory()
		persons = personstore.NewInMemory()
		rels = memRels
		personOpts = append(personOpts, personservice.WithRelationshipCascader(memRels))
		auditStore = auditmem.NewInMemoryStore()
	}

	// Audit. With brokers configured events stream to Kafka and a worker
	// mirrors them into the outbox store; otherwise they go straight to
	// the store through an async publisher.
	var (
		auditEmitter interface {
			Emit(ctx context.Context, event audit.Event) error
		}
		outboxWorker *worker.Worker
		auditInbox   chan audit.Event
	)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub, err := publisher.NewKafkaPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("failed to start kafka audit publisher", "error", err)
			os.Exit(1)
		}
		defer kafkaPub.Close()
		auditInbox = make(chan audit.Event, 256)
		outboxWorker = worker.NewWorker(auditStore, auditInbox, log)
		auditEmitter = &auditTee{kafka: kafkaPub, inbox: auditInbox}
	} else {
		pub := publisher.NewPublisher(auditStore,
			publisher.WithAsyncBuffer(256),
			publisher.WithLogger(log))
		defer pub.Close()
		auditEmitter = pub
	}

	// Scan cache: shared Redis when configured, per-process otherwise.
	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	var scanCache cache.Cache
	if rdb != nil {
		defer rdb.Close()
		scanCache = cache.NewRedis(rdb.Client)
	} else {
		scanCache = cache.NewInMemory()
	}

	dupSvc := dupservice.New(persons,
		dupservice.WithLogger(log),
		dupservice.WithCache(scanCache, cfg.ScanCacheTTL),
		dupservice.WithAuditPublisher(auditEmitter),
		dupservice.WithMetrics(dupmetrics.New()))
	personSvc := personservice.New(persons, append(personOpts,
		personservice.WithLogger(log),
		personservice.WithAuditPublisher(auditEmitter),
		personservice.WithMetrics(personmetrics.New()),
		personservice.WithScanCacheInvalidator(dupSvc))...)
	relSvc := relservice.New(rels, persons,
		relservice.WithLogger(log),
		relservice.WithAuditPublisher(auditEmitter),
		relservice.WithMetrics(relmetrics.New()))
	mergeSvc := mergeservice.New(persons, rels,
		mergeservice.WithLogger(log),
		mergeservice.WithAuditPublisher(auditEmitter))

	tokenSvc := token.NewService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Get("/healthz", healthHandler(pool, rdb))
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(api chi.Router) {
		api.Use(middleware.RequireAuth(tokenSvc, log))
		personhandler.New(personSvc, log).Register(api)
		relhandler.New(relSvc, log).Register(api)
		duphandler.New(dupSvc, log).Register(api)
		mergehandler.New(mergeSvc, log).Register(api)
	})

	srv := httpserver.New(cfg.Server.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting lineage server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if outboxWorker != nil {
		g.Go(func() error {
			if err := outboxWorker.Run(gctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// healthHandler reports liveness plus the state of backing stores.
func healthHandler(pool *pgxpool.Pool, rdb *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				body["postgres"] = "down"
				status = http.StatusServiceUnavailable
			} else {
				body["postgres"] = "up"
			}
		}
		if rdb != nil {
			if err := rdb.Health(ctx); err != nil {
				body["redis"] = "down"
				status = http.StatusServiceUnavailable
			} else {
				body["redis"] = "up"
			}
		}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		httputil.WriteJSON(w, status, body)
	}
}
