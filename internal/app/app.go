package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"PizzaScanner/internal/config"
	"PizzaScanner/internal/domain"
	"PizzaScanner/internal/httpapi"
	"PizzaScanner/internal/infrastructure/fetcher"
	"PizzaScanner/internal/infrastructure/parser"
	"PizzaScanner/internal/infrastructure/scheduler"
	"PizzaScanner/internal/infrastructure/storage"
	"PizzaScanner/internal/infrastructure/telegram"
	"PizzaScanner/internal/logging"
	"PizzaScanner/internal/ports"
	"PizzaScanner/internal/usecase"
	"PizzaScanner/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	store      *storage.Store
	pipeline   *usecase.Pipeline
	reconciler *usecase.OrphanReconciler
	scheduler  *usecase.Scheduler
}

// New opens the store and builds every adapter and use case.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, err := storage.Open(ctx, storage.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}
	store := storage.New(db, cfg.Database.Driver)
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	page, err := fetcher.New(fetcher.Options{
		URL:               cfg.Upstream.URL,
		UserAgent:         cfg.Upstream.UserAgent,
		CacheTTL:          cfg.Upstream.CacheTTL,
		RequestsPerMinute: cfg.Upstream.RequestsPerMinute,
	}, baseLogger.With("component", "fetcher"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	registry := parser.DefaultRegistry(baseLogger.With("component", "extractor"))
	source, err := parser.NewStrategySource(registry, cfg.Extractor.Strategy, page, baseLogger.With("component", "source"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	aggregator := usecase.NewStatisticsAggregator(usecase.StatisticsAggregatorDeps{
		Menus:       store.Menus(),
		Ingredients: store.Ingredients(),
		Statistics:  store.Statistics(),
		Workers:     cfg.Statistics.Workers,
		Logger:      baseLogger.With("component", "statistics"),
	})

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:      source,
		Menus:       store.Menus(),
		Ingredients: store.Ingredients(),
		Statistics:  store.Statistics(),
		Transactor:  store,
		Aggregator:  aggregator,
		Notifier:    notifier,
		Logger:      baseLogger.With("component", "pipeline"),
	})

	reconciler := usecase.NewOrphanReconciler(usecase.OrphanReconcilerDeps{
		Menus:       store.Menus(),
		Ingredients: store.Ingredients(),
		Statistics:  store.Statistics(),
		Aggregator:  aggregator,
		Logger:      baseLogger.With("component", "orphans"),
	})

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	cron, err := scheduler.NewCronScheduler(
		cfg.Scheduler.CronExpression,
		loc,
		baseLogger.With("component", "scheduler"),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Application{
		cfg:        cfg,
		logger:     baseLogger,
		store:      store,
		pipeline:   pipeline,
		reconciler: reconciler,
		scheduler:  usecase.NewScheduler(cron, pipeline, baseLogger.With("component", "prefetch")),
	}, nil
}

// Handler returns the HTTP surface.
func (a *Application) Handler() http.Handler {
	return httpapi.NewRouter(a.pipeline, a.logger.With("component", "http"))
}

// Serve runs the HTTP API and the prefetch scheduler until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.Handler(),
		ErrorLog:          logger.New("http", a.logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := a.scheduler.Stop(shutdownCtx); err != nil {
			a.logger.Warn("stop scheduler", "error", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Fetch runs one menu lookup.
func (a *Application) Fetch(ctx context.Context, startLabel, endLabel string) (usecase.MenuResult, error) {
	return a.pipeline.Menu(ctx, startLabel, endLabel)
}

// Reconcile runs one orphan cleanup pass.
func (a *Application) Reconcile(ctx context.Context) (usecase.OrphanReport, error) {
	return a.reconciler.Reconcile(ctx)
}

// Stats returns statistics for names, or every statistic when names is empty.
func (a *Application) Stats(ctx context.Context, names []string) ([]domain.IngredientStatistic, error) {
	if len(names) == 0 {
		return a.store.Statistics().All(ctx)
	}
	return a.pipeline.Statistics(ctx, names)
}

// Close releases the database handle.
func (a *Application) Close() error {
	return a.store.Close()
}
