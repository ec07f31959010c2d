package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"PizzaScanner/internal/domain"
	"PizzaScanner/internal/ports"
)

// insertBatchSize keeps multi-row inserts well under driver parameter limits.
const insertBatchSize = 500

// IngredientRepository persists ingredient occurrences.
type IngredientRepository struct {
	c conn
}

var _ ports.IngredientRepository = (*IngredientRepository)(nil)

// DeleteByDates removes every occurrence on the given dates.
func (r *IngredientRepository) DeleteByDates(ctx context.Context, dates []time.Time) (int, error) {
	if len(dates) == 0 {
		return 0, nil
	}
	return r.delete(ctx, sq.Eq{"day": dayKeys(dates)})
}

// DeleteExceptDates removes every occurrence whose date is not in dates.
// An empty dates slice removes everything.
func (r *IngredientRepository) DeleteExceptDates(ctx context.Context, dates []time.Time) (int, error) {
	return r.delete(ctx, sq.NotEq{"day": dayKeys(dates)})
}

func (r *IngredientRepository) delete(ctx context.Context, where sq.Sqlizer) (int, error) {
	query, args, err := r.c.sb.Delete("ingredient_occurrences").Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build ingredient delete: %w", err)
	}
	res, err := r.c.run.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete ingredients: %w", err)
	}
	return affected(res)
}

// InsertMany stores occurrences in batches.
func (r *IngredientRepository) InsertMany(ctx context.Context, occurrences []domain.IngredientOccurrence) (int, error) {
	inserted := 0
	for start := 0; start < len(occurrences); start += insertBatchSize {
		end := min(start+insertBatchSize, len(occurrences))

		insert := r.c.sb.Insert("ingredient_occurrences").Columns("day", "name")
		for _, occ := range occurrences[start:end] {
			insert = insert.Values(dayKey(occ.Date), occ.Name)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return inserted, fmt.Errorf("build ingredient insert: %w", err)
		}
		if _, err := r.c.run.ExecContext(ctx, query, args...); err != nil {
			return inserted, fmt.Errorf("insert ingredients: %w", err)
		}
		inserted += end - start
	}
	return inserted, nil
}

// CountByName counts the stored occurrences of each name across all history.
// Names without occurrences are absent from the result.
func (r *IngredientRepository) CountByName(ctx context.Context, names []string) (map[string]int, error) {
	counts := make(map[string]int, len(names))
	if len(names) == 0 {
		return counts, nil
	}

	query, args, err := r.c.sb.
		Select("name", "COUNT(*)").
		From("ingredient_occurrences").
		Where(sq.Eq{"name": names}).
		GroupBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ingredient aggregate: %w", err)
	}

	rows, err := r.c.run.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name  string
			count int
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("scan ingredient count: %w", err)
		}
		counts[name] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return counts, nil
}

// DistinctNames lists every ingredient name that still has an occurrence.
func (r *IngredientRepository) DistinctNames(ctx context.Context) ([]string, error) {
	query, args, err := r.c.sb.Select("DISTINCT name").From("ingredient_occurrences").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ingredient names query: %w", err)
	}

	rows, err := r.c.run.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ingredient names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan ingredient name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return names, nil
}
