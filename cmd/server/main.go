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
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"keyledger/internal/account"
	"keyledger/internal/asset"
	"keyledger/internal/events"
	"keyledger/internal/events/publishers/kafka"
	"keyledger/internal/events/publishers/stream"
	"keyledger/internal/events/store/postgres"
	"keyledger/internal/events/worker"
	"keyledger/internal/ledger"
	lockmetrics "keyledger/internal/lock/metrics"
	"keyledger/internal/platform/config"
	"keyledger/internal/platform/httpserver"
	"keyledger/internal/platform/logger"
	"keyledger/internal/platform/metrics"
	redisclient "keyledger/internal/platform/redis"
	"keyledger/internal/registry/adapters"
	"keyledger/internal/registry/archive"
	"keyledger/internal/registry/models"
	registry "keyledger/internal/registry/service"
	httptransport "keyledger/internal/transport/http"
)

const (
	eventStream     = "keyledger:events"
	shutdownTimeout = 10 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("keyledger stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var sinks events.MultiSink

	var outbox *postgres.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		outbox = postgres.New(db)
		if err := outbox.Migrate(ctx); err != nil {
			return err
		}
		sinks = append(sinks, outbox)
	}

	var tombstones archive.Store = archive.NewInMemoryStore()
	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		sinks = append(sinks, stream.New(rdb, eventStream, stream.WithMaxLen(cfg.Redis.StreamMaxLen)))
		tombstones = archive.NewRedisStore(rdb)
	}

	coord := ledger.New(
		ledger.WithSink(sinks),
		ledger.WithLogger(log),
		ledger.WithMetrics(metrics.New(reg)),
		ledger.WithTracer(otel.Tracer("keyledger/ledger")),
	)
	accounts := account.NewDirectory()
	bank := asset.NewBank(coord, asset.WithPaymentNotifier(accounts))
	tokens := asset.NewDirectory()

	svc := registry.New(cfg.RegistryAddress, cfg.RegistryOwner, coord, bank,
		registry.WithLogger(log),
		registry.WithMetrics(lockmetrics.New(reg)),
		registry.WithTokenDirectory(adapters.NewAssetAdapter(tokens)),
		registry.WithAccounts(accounts),
		registry.WithArchive(tombstones),
		registry.WithDefaults(models.Defaults{
			BaseTokenURI: cfg.DefaultBaseTokenURI,
			TokenSymbol:  cfg.DefaultTokenSymbol,
		}),
	)

	var relay *worker.Worker
	if outbox != nil && len(cfg.Kafka.Brokers) > 0 {
		client, err := kafka.NewClient(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.Topic, 1, 1); err != nil {
			return err
		}
		relay = worker.NewWorker(outbox, kafka.New(client, cfg.Kafka.Topic, kafka.WithLogger(log)),
			worker.WithLogger(log),
			worker.WithInterval(cfg.Outbox.Interval),
			worker.WithBatchSize(cfg.Outbox.BatchSize),
		)
	}

	router := httptransport.NewRouter(httptransport.NewPoolHandler(svc, log), reg)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting keyledger", "addr", cfg.Addr, "registry", svc.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if relay != nil {
		log.Info("outbox relay enabled", "topic", cfg.Kafka.Topic)
		g.Go(func() error {
			if err := relay.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}
