package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"

	"github.com/Spok95/construction-api/internal/api"
	"github.com/Spok95/construction-api/internal/config"
	"github.com/Spok95/construction-api/internal/domain/materials"
	"github.com/Spok95/construction-api/internal/domain/orders"
	"github.com/Spok95/construction-api/internal/domain/reports"
	"github.com/Spok95/construction-api/internal/infra/db"
	"github.com/Spok95/construction-api/internal/infra/events"
	httpx "github.com/Spok95/construction-api/internal/infra/http"
	"github.com/Spok95/construction-api/internal/infra/idempotency"
	"github.com/Spok95/construction-api/internal/infra/logger"
	"github.com/Spok95/construction-api/migrations"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	goose.SetBaseFS(migrations.FS)
	return goose.Up(sqlDB, ".")
}

func main() {
	_ = gotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/example.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	matRepo := materials.NewRepo(pool)
	orderRepo := orders.NewRepo(pool)
	reportRepo := reports.NewRepo(pool)

	var publisher orders.EventPublisher
	if cfg.Kafka.Enabled {
		p := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() { _ = p.Close() }()
		publisher = p
		log.Info("kafka publisher enabled", "topic", cfg.Kafka.Topic)
	}

	var guard api.IdempotencyGuard
	if cfg.Redis.Enabled {
		g := idempotency.NewGuard(cfg.Redis.Addr)
		defer func() { _ = g.Close() }()
		guard = g
		log.Info("idempotency guard enabled", "addr", cfg.Redis.Addr)
	}

	lifecycle := orders.NewLifecycle(orderRepo, orders.NewValidator(matRepo), publisher, log)

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled)
	api.Register(srv.Echo(), api.Handlers{
		Catalog:     matRepo,
		Orders:      lifecycle,
		Reports:     reportRepo,
		Idempotency: guard,
		Log:         log,
	})

	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
