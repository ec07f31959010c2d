package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"PizzaScanner/internal/domain"
	"PizzaScanner/internal/ports"
)

// ErrPersistence marks a failed store operation.
var ErrPersistence = errors.New("persistence failed")

const defaultStatisticWorkers = 4

// StatisticFailure is one statistic that could not be written.
type StatisticFailure struct {
	Ingredient string
	Err        error
}

// BatchResult reports the outcome of one statistics reconciliation.
type BatchResult struct {
	// TotalMenuDays is the denominator every percentage in this batch was computed with.
	TotalMenuDays int
	Created       []string
	Written       []domain.IngredientStatistic
	Failed        []StatisticFailure
}

// Err joins every per-statistic failure, or returns nil.
func (r BatchResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, fmt.Errorf("statistic %s: %w", f.Ingredient, f.Err))
	}
	return errors.Join(errs...)
}

// StatisticsAggregatorDeps wires the stores the aggregator reads and writes.
type StatisticsAggregatorDeps struct {
	Menus       ports.MenuRepository
	Ingredients ports.IngredientRepository
	Statistics  ports.StatisticRepository
	Workers     int
	Logger      *slog.Logger
}

// StatisticsAggregator recomputes ingredient statistics from the occurrence store.
// It assumes a single writer: nothing else changes menu days while it runs.
type StatisticsAggregator struct {
	menus       ports.MenuRepository
	ingredients ports.IngredientRepository
	statistics  ports.StatisticRepository
	workers     int
	logger      *slog.Logger
}

// NewStatisticsAggregator constructs the aggregator.
func NewStatisticsAggregator(deps StatisticsAggregatorDeps) *StatisticsAggregator {
	workers := deps.Workers
	if workers <= 0 {
		workers = defaultStatisticWorkers
	}
	return &StatisticsAggregator{
		menus:       deps.Menus,
		ingredients: deps.Ingredients,
		statistics:  deps.Statistics,
		workers:     workers,
		logger:      deps.Logger,
	}
}

// Reconcile recomputes the statistics of every ingredient referenced by occurrences.
func (a *StatisticsAggregator) Reconcile(ctx context.Context, occurrences []domain.IngredientOccurrence) (BatchResult, error) {
	return a.ReconcileNames(ctx, domain.DistinctNames(occurrences))
}

// ReconcileNames recomputes the statistics of names against all stored history.
// Read failures abort the batch; write failures are collected in the result.
func (a *StatisticsAggregator) ReconcileNames(ctx context.Context, names []string) (BatchResult, error) {
	if len(names) == 0 {
		return BatchResult{}, nil
	}

	total, err := a.menus.Count(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("%w: count menu days: %w", ErrPersistence, err)
	}
	result := BatchResult{TotalMenuDays: total}

	existing, err := a.statistics.FindByIngredients(ctx, names)
	if err != nil {
		return result, fmt.Errorf("%w: load statistics: %w", ErrPersistence, err)
	}
	byName := make(map[string]*domain.IngredientStatistic, len(names))
	for i := range existing {
		byName[existing[i].Ingredient] = &existing[i]
	}

	created := map[string]bool{}
	for _, name := range names {
		if _, ok := byName[name]; ok {
			continue
		}
		byName[name] = &domain.IngredientStatistic{
			Ingredient: name,
			Count:      1,
			Percentage: domain.Percentage(1, total),
		}
		created[name] = true
	}

	counts, err := a.ingredients.CountByName(ctx, names)
	if err != nil {
		return result, fmt.Errorf("%w: aggregate ingredients: %w", ErrPersistence, err)
	}

	pending := make([]domain.IngredientStatistic, 0, len(names))
	for _, name := range names {
		count := counts[name]
		if created[name] && count == 0 {
			continue
		}
		stat := byName[name]
		stat.Count = count
		stat.Percentage = domain.Percentage(count, total)
		pending = append(pending, *stat)
		if created[name] {
			result.Created = append(result.Created, name)
		}
	}

	a.write(ctx, pending, &result)

	sort.Strings(result.Created)
	sort.Slice(result.Written, func(i, j int) bool {
		return result.Written[i].Ingredient < result.Written[j].Ingredient
	})
	a.info("statistics reconciled",
		"total_menu_days", total,
		"created", len(result.Created),
		"written", len(result.Written),
		"failed", len(result.Failed))
	return result, nil
}

func (a *StatisticsAggregator) write(ctx context.Context, pending []domain.IngredientStatistic, result *BatchResult) {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for _, stat := range pending {
		g.Go(func() error {
			err := a.statistics.Save(gctx, stat)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.error("save statistic", "ingredient", stat.Ingredient, "error", err)
				result.Failed = append(result.Failed, StatisticFailure{Ingredient: stat.Ingredient, Err: err})
				return nil
			}
			result.Written = append(result.Written, stat)
			return nil
		})
	}
	_ = g.Wait()
}

func (a *StatisticsAggregator) info(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Info(msg, args...)
	}
}

func (a *StatisticsAggregator) error(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Error(msg, args...)
	}
}
