package ports

import (
	"context"
	"time"

	"PizzaScanner/internal/domain"
)

// PageFetcher downloads the raw menu page.
type PageFetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// MenuSource fetches the menu page and extracts the entries for a window.
type MenuSource interface {
	FetchMenu(ctx context.Context, startLabel, endLabel string) (domain.ExtractedMenu, error)
}

// MenuRepository persists menu days. It does not enforce label uniqueness; callers
// dedup with FindByDateLabels before InsertMany.
type MenuRepository interface {
	FindByDateLabels(ctx context.Context, labels []string) ([]domain.MenuDay, error)
	InsertMany(ctx context.Context, days []domain.MenuDay) (int, error)
	Count(ctx context.Context) (int, error)
	Dates(ctx context.Context) ([]time.Time, error)
}

// IngredientRepository persists one row per ingredient per menu day.
type IngredientRepository interface {
	DeleteByDates(ctx context.Context, dates []time.Time) (int, error)
	InsertMany(ctx context.Context, occurrences []domain.IngredientOccurrence) (int, error)
	CountByName(ctx context.Context, names []string) (map[string]int, error)
	DistinctNames(ctx context.Context) ([]string, error)
	DeleteExceptDates(ctx context.Context, dates []time.Time) (int, error)
}

// StatisticRepository persists per-ingredient aggregates.
type StatisticRepository interface {
	FindByIngredients(ctx context.Context, names []string) ([]domain.IngredientStatistic, error)
	Save(ctx context.Context, stat domain.IngredientStatistic) error
	DeleteExcept(ctx context.Context, names []string) (int, error)
	All(ctx context.Context) ([]domain.IngredientStatistic, error)
}

// MenuWriter groups the repositories that must change together when a week is saved.
type MenuWriter struct {
	Menus       MenuRepository
	Ingredients IngredientRepository
}

// Transactor runs fn against repositories bound to a single transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, w MenuWriter) error) error
}

// Notifier sends operational alerts (e.g. the menu page changed shape).
type Notifier interface {
	PublishAlert(ctx context.Context, message string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
