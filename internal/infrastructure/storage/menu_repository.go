package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"PizzaScanner/internal/domain"
	"PizzaScanner/internal/ports"
)

// MenuRepository persists menu days.
type MenuRepository struct {
	c conn
}

var _ ports.MenuRepository = (*MenuRepository)(nil)

// FindByDateLabels returns every stored day whose label is in labels.
func (r *MenuRepository) FindByDateLabels(ctx context.Context, labels []string) ([]domain.MenuDay, error) {
	if len(labels) == 0 {
		return nil, nil
	}

	query, args, err := r.c.sb.
		Select("day", "date_label", "raw_ingredient_line", "ingredients").
		From("menu_days").
		Where(sq.Eq{"date_label": labels}).
		OrderBy("day").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build menu query: %w", err)
	}

	rows, err := r.c.run.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query menu days: %w", err)
	}
	defer rows.Close()

	var days []domain.MenuDay
	for rows.Next() {
		var (
			key         string
			day         domain.MenuDay
			ingredients string
		)
		if err := rows.Scan(&key, &day.DateLabel, &day.RawIngredientLine, &ingredients); err != nil {
			return nil, fmt.Errorf("scan menu day: %w", err)
		}
		if day.Date, err = parseDay(key); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ingredients), &day.Ingredients); err != nil {
			return nil, fmt.Errorf("decode ingredients of %s: %w", day.DateLabel, err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return days, nil
}

// InsertMany stores days as given, without checking for existing labels.
func (r *MenuRepository) InsertMany(ctx context.Context, days []domain.MenuDay) (int, error) {
	if len(days) == 0 {
		return 0, nil
	}

	insert := r.c.sb.Insert("menu_days").Columns("day", "date_label", "raw_ingredient_line", "ingredients")
	for _, day := range days {
		ingredients, err := json.Marshal(day.Ingredients)
		if err != nil {
			return 0, fmt.Errorf("encode ingredients of %s: %w", day.DateLabel, err)
		}
		insert = insert.Values(dayKey(day.Date), day.DateLabel, day.RawIngredientLine, string(ingredients))
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build menu insert: %w", err)
	}
	if _, err := r.c.run.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("insert menu days: %w", err)
	}
	return len(days), nil
}

// Count returns the number of stored menu days.
func (r *MenuRepository) Count(ctx context.Context) (int, error) {
	query, args, err := r.c.sb.Select("COUNT(*)").From("menu_days").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build menu count: %w", err)
	}

	var n int
	if err := r.c.run.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count menu days: %w", err)
	}
	return n, nil
}

// Dates returns the distinct calendar dates that have a menu day.
func (r *MenuRepository) Dates(ctx context.Context) ([]time.Time, error) {
	query, args, err := r.c.sb.Select("DISTINCT day").From("menu_days").OrderBy("day").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build menu dates query: %w", err)
	}

	rows, err := r.c.run.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query menu dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan menu date: %w", err)
		}
		date, err := parseDay(key)
		if err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return dates, nil
}
