package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"microauth/internal/callertoken"
	"microauth/internal/platform/config"
	"microauth/internal/platform/database"
	"microauth/internal/platform/health"
	"microauth/internal/platform/kafka/producer"
	"microauth/internal/platform/logger"
	"microauth/internal/platform/redis"
	httptransport "microauth/internal/transport/http"
	"microauth/internal/walletauth/handler"
	"microauth/internal/walletauth/metrics"
	"microauth/internal/walletauth/notifier"
	"microauth/internal/walletauth/registry"
	"microauth/internal/walletauth/service"
	"microauth/internal/walletauth/store"
	"microauth/internal/walletauth/tracer"
	"microauth/pkg/platform/middleware/request"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if config.IsHelp(err) {
			fmt.Fprintln(os.Stdout, err)
			return
		}
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// closer releases a dependency at shutdown.
type closer func()

// run wires dependencies and blocks until ctx is cancelled or a component fails.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("initializing microauth",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"store", cfg.StoreBackend,
		"kafka_enabled", cfg.KafkaEnabled(),
	)
	if cfg.UsingDevSigningKey() {
		log.Warn("using built-in caller token signing key; set JWT_SIGNING_KEY outside development")
	}

	var closers []closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	hc := health.New(cfg.Environment)

	st, redisClient, cleanup, err := buildStore(ctx, cfg, log, hc)
	if err != nil {
		return err
	}
	closers = append(closers, cleanup...)

	regMetrics := metrics.New()
	notifiers := notifier.NewMulti(log,
		notifier.NewLog(log),
		notifier.NewMetrics(regMetrics),
	)
	if cfg.KafkaEnabled() {
		prod, err := producer.New(cfg.Kafka, log)
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		closers = append(closers, func() { prod.Close(cfg.ShutdownTimeout) })
		hc.RegisterCheck("kafka", prod.Health)
		notifiers.Add(notifier.NewKafka(prod, cfg.Kafka.Topic, log))
	}

	svc, err := service.Bootstrap(ctx, st, cfg.AdminAddress,
		[]registry.Option{
			registry.WithNotifier(notifiers),
			registry.WithLogger(log),
		},
		service.WithMetrics(regMetrics),
		service.WithTracer(tracer.NewOTel()),
		service.WithLogger(log),
	)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidAddress) {
			return fmt.Errorf("bootstrap registry: a valid --admin-address is required for a new registry: %w", err)
		}
		return fmt.Errorf("bootstrap registry: %w", err)
	}

	tokens := callertoken.NewService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.TTL)
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
		Tokens:         tokens,
		Health:         hc,
		Metrics:        request.NewMetrics(),
		Gatherer:       prometheus.DefaultGatherer,
		Handlers:       []httptransport.Routes{handler.New(svc, log)},
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	if redisClient != nil {
		g.Go(func() error {
			return redisClient.RunPoolStats(gctx, cfg.Redis.StatsInterval)
		})
	}

	return g.Wait()
}

// buildStore opens the configured backend and registers its health check.
func buildStore(ctx context.Context, cfg *config.Config, log *slog.Logger, hc *health.Handler) (service.Store, *redis.Client, []closer, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		if cfg.MigrateOnStart {
			if err := database.Migrate(cfg.Database.URL, log); err != nil {
				return nil, nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("database: %w", err)
		}
		hc.RegisterCheck("postgres", pool.Health)
		closeDB := func() {
			if err := pool.Close(); err != nil {
				log.Warn("failed to close database pool", "error", err)
			}
		}
		return store.NewPostgres(pool.DB()), nil, []closer{closeDB}, nil

	case config.StoreRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("redis: %w", err)
		}
		hc.RegisterCheck("redis", client.Health)
		closeRedis := func() {
			if err := client.Close(); err != nil {
				log.Warn("failed to close redis client", "error", err)
			}
		}
		return store.NewRedis(client.Client, cfg.Redis.KeyPrefix), client, []closer{closeRedis}, nil

	default:
		st := store.NewInMemory()
		hc.RegisterCheck("store", st.Health)
		return st, nil, nil, nil
	}
}
