package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"PizzaScanner/internal/calendar"
	"PizzaScanner/internal/domain"
	"PizzaScanner/internal/ports"
	"PizzaScanner/internal/scanner"
)

var (
	// ErrValidation marks a request the caller must fix.
	ErrValidation = errors.New("invalid request")
	// ErrTargetNotFound is returned when the extracted week does not contain the requested day.
	ErrTargetNotFound = errors.New("requested day not in extracted menu")
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source      ports.MenuSource
	Menus       ports.MenuRepository
	Ingredients ports.IngredientRepository
	Statistics  ports.StatisticRepository
	Transactor  ports.Transactor
	Aggregator  *StatisticsAggregator
	Notifier    ports.Notifier
	Logger      *slog.Logger
}

// Pipeline implements the menu lookup workflow: cache, extract, persist, aggregate.
type Pipeline struct {
	source      ports.MenuSource
	menus       ports.MenuRepository
	ingredients ports.IngredientRepository
	statistics  ports.StatisticRepository
	transactor  ports.Transactor
	aggregator  *StatisticsAggregator
	notifier    ports.Notifier
	logger      *slog.Logger

	// refresh admits one fetch-save-reconcile run at a time.
	refresh chan struct{}
}

// MenuResult is the answer to a menu lookup.
type MenuResult struct {
	Cached bool
	Data   string
}

// SaveResult reports what one week's persistence step wrote.
type SaveResult struct {
	Inserted    []domain.MenuDay
	Occurrences []domain.IngredientOccurrence
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:      deps.Source,
		menus:       deps.Menus,
		ingredients: deps.Ingredients,
		statistics:  deps.Statistics,
		transactor:  deps.Transactor,
		aggregator:  deps.Aggregator,
		notifier:    deps.Notifier,
		logger:      deps.Logger,
		refresh:     make(chan struct{}, 1),
	}
}

// Menu returns the raw ingredient line for startLabel, extracting and storing the
// page's week when it is not cached yet.
func (p *Pipeline) Menu(ctx context.Context, startLabel, endLabel string) (MenuResult, error) {
	if !calendar.IsWeekday(calendar.WeekdayToken(startLabel)) || !calendar.IsWeekday(calendar.WeekdayToken(endLabel)) {
		return MenuResult{}, fmt.Errorf("%w: start and end must begin with a weekday name", ErrValidation)
	}
	if p.menus == nil || p.source == nil {
		return MenuResult{}, fmt.Errorf("pipeline is not configured")
	}

	if result, ok, err := p.cached(ctx, startLabel); err != nil || ok {
		return result, err
	}

	release, err := p.acquire(ctx)
	if err != nil {
		return MenuResult{}, err
	}
	defer release()

	// another request may have stored the week while this one waited
	if result, ok, err := p.cached(ctx, startLabel); err != nil || ok {
		return result, err
	}

	menu, err := p.source.FetchMenu(ctx, startLabel, endLabel)
	if err != nil {
		if scanner.IsStructural(err) {
			p.alert(ctx, err)
		}
		return MenuResult{}, err
	}

	days, err := BuildMenuDays(menu)
	if err != nil {
		p.alert(ctx, err)
		return MenuResult{}, err
	}

	saved, err := p.saveWeek(ctx, days)
	if err != nil {
		return MenuResult{}, err
	}
	p.reconcile(ctx, saved.Occurrences)

	target, ok := findDay(days, startLabel)
	if !ok {
		return MenuResult{}, fmt.Errorf("%w: %q", ErrTargetNotFound, startLabel)
	}
	return MenuResult{Cached: false, Data: target.RawIngredientLine}, nil
}

func (p *Pipeline) acquire(ctx context.Context) (func(), error) {
	select {
	case p.refresh <- struct{}{}:
		return func() { <-p.refresh }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pipeline) cached(ctx context.Context, startLabel string) (MenuResult, bool, error) {
	cached, err := p.menus.FindByDateLabels(ctx, []string{startLabel})
	if err != nil {
		return MenuResult{}, false, fmt.Errorf("%w: lookup %q: %w", ErrPersistence, startLabel, err)
	}
	if len(cached) == 0 {
		return MenuResult{}, false, nil
	}
	if len(cached) > 1 {
		p.warn("duplicate menu days for label", "label", startLabel, "rows", len(cached))
	}
	return MenuResult{Cached: true, Data: cached[0].RawIngredientLine}, true, nil
}

// SaveWeek stores the days not yet known and replaces the ingredient occurrences of
// the newly inserted days, all in one transaction. It waits for any running Menu refresh.
func (p *Pipeline) SaveWeek(ctx context.Context, days []domain.MenuDay) (SaveResult, error) {
	release, err := p.acquire(ctx)
	if err != nil {
		return SaveResult{}, err
	}
	defer release()

	return p.saveWeek(ctx, days)
}

func (p *Pipeline) saveWeek(ctx context.Context, days []domain.MenuDay) (SaveResult, error) {
	var result SaveResult
	if len(days) == 0 {
		return result, nil
	}

	err := p.withinTx(ctx, func(ctx context.Context, w ports.MenuWriter) error {
		labels := make([]string, 0, len(days))
		for _, day := range days {
			labels = append(labels, day.DateLabel)
		}

		existing, err := w.Menus.FindByDateLabels(ctx, labels)
		if err != nil {
			return fmt.Errorf("find existing days: %w", err)
		}
		seen := make(map[string]bool, len(existing)+len(days))
		for _, day := range existing {
			seen[day.DateLabel] = true
		}

		var fresh []domain.MenuDay
		for _, day := range days {
			if seen[day.DateLabel] {
				continue
			}
			seen[day.DateLabel] = true
			fresh = append(fresh, day)
		}
		if len(fresh) == 0 {
			return nil
		}

		if _, err := w.Menus.InsertMany(ctx, fresh); err != nil {
			return fmt.Errorf("insert menu days: %w", err)
		}

		dates := make([]time.Time, 0, len(fresh))
		var occurrences []domain.IngredientOccurrence
		for _, day := range fresh {
			dates = append(dates, day.Date)
			occurrences = append(occurrences, day.Occurrences()...)
		}

		if _, err := w.Ingredients.DeleteByDates(ctx, dates); err != nil {
			return fmt.Errorf("clear occurrences: %w", err)
		}
		if _, err := w.Ingredients.InsertMany(ctx, occurrences); err != nil {
			return fmt.Errorf("insert occurrences: %w", err)
		}

		result = SaveResult{Inserted: fresh, Occurrences: occurrences}
		return nil
	})
	if err != nil {
		return SaveResult{}, fmt.Errorf("%w: save week: %w", ErrPersistence, err)
	}

	p.debug("week saved", "days", len(days), "inserted", len(result.Inserted), "occurrences", len(result.Occurrences))
	return result, nil
}

// Statistics returns the stored statistics for names. Unknown names are omitted.
func (p *Pipeline) Statistics(ctx context.Context, names []string) ([]domain.IngredientStatistic, error) {
	if p.statistics == nil {
		return nil, fmt.Errorf("statistics store is not configured")
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one ingredient is required", ErrValidation)
	}
	stats, err := p.statistics.FindByIngredients(ctx, domain.NormalizeIngredients(names))
	if err != nil {
		return nil, fmt.Errorf("%w: load statistics: %w", ErrPersistence, err)
	}
	return stats, nil
}

// BuildMenuDays turns extracted entries into persistable days.
func BuildMenuDays(menu domain.ExtractedMenu) ([]domain.MenuDay, error) {
	days := make([]domain.MenuDay, 0, len(menu))
	for _, entry := range menu {
		date, err := calendar.Parse(entry.DateLabel)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", scanner.ErrUnexpectedStructure, entry.DateLabel, err)
		}
		ingredients := domain.SplitIngredients(entry.MenuText)
		if len(ingredients) == 0 {
			return nil, fmt.Errorf("%w: %q has no ingredients", scanner.ErrUnexpectedStructure, entry.DateLabel)
		}
		days = append(days, domain.MenuDay{
			Date:              date,
			DateLabel:         entry.DateLabel,
			RawIngredientLine: entry.MenuText,
			Ingredients:       ingredients,
		})
	}
	return days, nil
}

// findDay matches the label exactly, then falls back to the calendar date it names.
func findDay(days []domain.MenuDay, label string) (domain.MenuDay, bool) {
	for _, day := range days {
		if day.DateLabel == label {
			return day, true
		}
	}
	date, err := calendar.Parse(label)
	if err != nil {
		return domain.MenuDay{}, false
	}
	for _, day := range days {
		if day.Date.Equal(date) {
			return day, true
		}
	}
	return domain.MenuDay{}, false
}

func (p *Pipeline) withinTx(ctx context.Context, fn func(ctx context.Context, w ports.MenuWriter) error) error {
	if p.transactor != nil {
		return p.transactor.WithinTx(ctx, fn)
	}
	if p.ingredients == nil {
		return fmt.Errorf("ingredient store is not configured")
	}
	return fn(ctx, ports.MenuWriter{Menus: p.menus, Ingredients: p.ingredients})
}

// reconcile is best effort: the menu is already stored and the caller still gets it.
func (p *Pipeline) reconcile(ctx context.Context, occurrences []domain.IngredientOccurrence) {
	if p.aggregator == nil || len(occurrences) == 0 {
		return
	}
	result, err := p.aggregator.Reconcile(ctx, occurrences)
	if err != nil {
		p.error("reconcile statistics", "error", err)
		return
	}
	if err := result.Err(); err != nil {
		p.warn("some statistics were not written", "failed", len(result.Failed), "error", err)
	}
}

func (p *Pipeline) alert(ctx context.Context, cause error) {
	p.error("menu page could not be extracted", "error", cause)
	if p.notifier == nil {
		return
	}
	msg := fmt.Sprintf("Pizza menu page changed shape: %v", cause)
	if err := p.notifier.PublishAlert(ctx, msg); err != nil {
		p.warn("publish alert", "error", err)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) error(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
