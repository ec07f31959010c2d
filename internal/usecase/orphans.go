package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"PizzaScanner/internal/ports"
)

// OrphanReport summarises one orphan cleanup.
type OrphanReport struct {
	DeletedOccurrences int
	DeletedStatistics  int
	Refreshed          BatchResult
}

// OrphanReconcilerDeps wires the reconciler.
type OrphanReconcilerDeps struct {
	Menus       ports.MenuRepository
	Ingredients ports.IngredientRepository
	Statistics  ports.StatisticRepository
	Aggregator  *StatisticsAggregator
	Logger      *slog.Logger
}

// OrphanReconciler removes occurrences and statistics that no stored menu day backs.
type OrphanReconciler struct {
	menus       ports.MenuRepository
	ingredients ports.IngredientRepository
	statistics  ports.StatisticRepository
	aggregator  *StatisticsAggregator
	logger      *slog.Logger
}

// NewOrphanReconciler constructs the reconciler.
func NewOrphanReconciler(deps OrphanReconcilerDeps) *OrphanReconciler {
	return &OrphanReconciler{
		menus:       deps.Menus,
		ingredients: deps.Ingredients,
		statistics:  deps.Statistics,
		aggregator:  deps.Aggregator,
		logger:      deps.Logger,
	}
}

// Reconcile deletes orphaned occurrences, then statistics for ingredients that no
// longer occur, then refreshes the survivors against the current menu day count.
func (o *OrphanReconciler) Reconcile(ctx context.Context) (OrphanReport, error) {
	var report OrphanReport

	dates, err := o.menus.Dates(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: list menu dates: %w", ErrPersistence, err)
	}

	report.DeletedOccurrences, err = o.ingredients.DeleteExceptDates(ctx, dates)
	if err != nil {
		return report, fmt.Errorf("%w: delete orphaned occurrences: %w", ErrPersistence, err)
	}

	names, err := o.ingredients.DistinctNames(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: list ingredient names: %w", ErrPersistence, err)
	}

	report.DeletedStatistics, err = o.statistics.DeleteExcept(ctx, names)
	if err != nil {
		return report, fmt.Errorf("%w: delete orphaned statistics: %w", ErrPersistence, err)
	}

	if o.aggregator != nil {
		report.Refreshed, err = o.aggregator.ReconcileNames(ctx, names)
		if err != nil {
			return report, err
		}
	}

	if o.logger != nil {
		o.logger.Info("orphans reconciled",
			"menu_days", len(dates),
			"deleted_occurrences", report.DeletedOccurrences,
			"deleted_statistics", report.DeletedStatistics,
			"refreshed", len(report.Refreshed.Written))
	}
	return report, nil
}
