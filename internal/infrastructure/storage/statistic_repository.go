package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"PizzaScanner/internal/domain"
	"PizzaScanner/internal/ports"
)

// StatisticRepository persists per-ingredient aggregates.
type StatisticRepository struct {
	c conn
}

var _ ports.StatisticRepository = (*StatisticRepository)(nil)

// FindByIngredients returns the stored statistics for names.
func (r *StatisticRepository) FindByIngredients(ctx context.Context, names []string) ([]domain.IngredientStatistic, error) {
	if len(names) == 0 {
		return []domain.IngredientStatistic{}, nil
	}
	return r.list(ctx, r.c.sb.
		Select("ingredient", "occurrence_count", "percentage").
		From("ingredient_statistics").
		Where(sq.Eq{"ingredient": names}).
		OrderBy("ingredient"))
}

// All returns every statistic, most frequent first.
func (r *StatisticRepository) All(ctx context.Context) ([]domain.IngredientStatistic, error) {
	return r.list(ctx, r.c.sb.
		Select("ingredient", "occurrence_count", "percentage").
		From("ingredient_statistics").
		OrderBy("occurrence_count DESC", "ingredient"))
}

func (r *StatisticRepository) list(ctx context.Context, sel sq.SelectBuilder) ([]domain.IngredientStatistic, error) {
	query, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build statistics query: %w", err)
	}

	rows, err := r.c.run.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query statistics: %w", err)
	}

	stats := []domain.IngredientStatistic{}
	for rows.Next() {
		var stat domain.IngredientStatistic
		if err := rows.Scan(&stat.Ingredient, &stat.Count, &stat.Percentage); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan statistic: %w", err)
		}
		stats = append(stats, stat)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return stats, nil
}

// Save upserts the statistic keyed by ingredient.
func (r *StatisticRepository) Save(ctx context.Context, stat domain.IngredientStatistic) error {
	query, args, err := r.c.sb.
		Insert("ingredient_statistics").
		Columns("ingredient", "occurrence_count", "percentage").
		Values(stat.Ingredient, stat.Count, stat.Percentage).
		Suffix(`ON CONFLICT (ingredient) DO UPDATE
              SET occurrence_count = excluded.occurrence_count,
                  percentage = excluded.percentage`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build statistic upsert: %w", err)
	}

	if _, err := r.c.run.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert statistic %s: %w", stat.Ingredient, err)
	}
	return nil
}

// DeleteExcept removes every statistic whose ingredient is not in names.
// An empty names slice removes everything.
func (r *StatisticRepository) DeleteExcept(ctx context.Context, names []string) (int, error) {
	query, args, err := r.c.sb.
		Delete("ingredient_statistics").
		Where(sq.NotEq{"ingredient": names}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build statistic delete: %w", err)
	}

	res, err := r.c.run.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete statistics: %w", err)
	}
	return affected(res)
}
