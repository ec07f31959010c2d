package storage_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"PizzaScanner/internal/domain"
	"PizzaScanner/internal/ports"
	"PizzaScanner/internal/testutil"
)

func TestMenuRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	menus := testutil.NewStore(t).Menus()

	wed := testutil.Day(t, "Wednesday January 8, 2020", "Tomato, Basil, Mozzarella")
	thu := testutil.Day(t, "Thursday January 9, 2020", "Corn, Onion")

	n, err := menus.InsertMany(ctx, []domain.MenuDay{wed, thu})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	found, err := menus.FindByDateLabels(ctx, []string{wed.DateLabel, "Friday January 10, 2020"})
	require.NoError(t, err)
	require.Equal(t, []domain.MenuDay{wed}, found)

	found, err = menus.FindByDateLabels(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, found)

	count, err := menus.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	dates, err := menus.Dates(ctx)
	require.NoError(t, err)
	require.Equal(t, []time.Time{wed.Date, thu.Date}, dates)

	n, err = menus.InsertMany(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestIngredientRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ingredients := testutil.NewStore(t).Ingredients()

	wed := testutil.Day(t, "Wednesday January 8, 2020", "Tomato, Onion")
	thu := testutil.Day(t, "Thursday January 9, 2020", "Corn, Onion")
	fri := testutil.Day(t, "Friday January 10, 2020", "Garlic")

	n, err := ingredients.InsertMany(ctx, testutil.Occurrences(wed, thu, fri))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	counts, err := ingredients.CountByName(ctx, []string{"onion", "corn", "basil"})
	require.NoError(t, err)
	require.Equal(t, map[string]int{"onion": 2, "corn": 1}, counts)

	names, err := ingredients.DistinctNames(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"corn", "garlic", "onion", "tomato"}, names)

	deleted, err := ingredients.DeleteByDates(ctx, []time.Time{thu.Date})
	require.NoError(t, err)
	require.Equal(t, 2, deleted)

	deleted, err = ingredients.DeleteExceptDates(ctx, []time.Time{wed.Date})
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	names, err = ingredients.DistinctNames(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"onion", "tomato"}, names)

	deleted, err = ingredients.DeleteExceptDates(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 2, deleted)
}

func TestIngredientRepositoryInsertsInBatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ingredients := testutil.NewStore(t).Ingredients()

	date := time.Date(2020, time.January, 8, 0, 0, 0, 0, time.UTC)
	var occurrences []domain.IngredientOccurrence
	for i := 0; i < 1234; i++ {
		occurrences = append(occurrences, domain.IngredientOccurrence{Date: date, Name: fmt.Sprintf("topping-%d", i%7)})
	}

	n, err := ingredients.InsertMany(ctx, occurrences)
	require.NoError(t, err)
	require.Equal(t, 1234, n)

	counts, err := ingredients.CountByName(ctx, []string{"topping-0"})
	require.NoError(t, err)
	require.Equal(t, 177, counts["topping-0"])
}

func TestStatisticRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stats := testutil.NewStore(t).Statistics()

	require.NoError(t, stats.Save(ctx, domain.IngredientStatistic{Ingredient: "onion", Count: 1, Percentage: 0.1}))
	require.NoError(t, stats.Save(ctx, domain.IngredientStatistic{Ingredient: "garlic", Count: 2, Percentage: 0.2}))
	require.NoError(t, stats.Save(ctx, domain.IngredientStatistic{Ingredient: "onion", Count: 3, Percentage: 0.3}))

	found, err := stats.FindByIngredients(ctx, []string{"onion", "basil"})
	require.NoError(t, err)
	require.Equal(t, []domain.IngredientStatistic{{Ingredient: "onion", Count: 3, Percentage: 0.3}}, found)

	all, err := stats.All(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.IngredientStatistic{
		{Ingredient: "onion", Count: 3, Percentage: 0.3},
		{Ingredient: "garlic", Count: 2, Percentage: 0.2},
	}, all)

	deleted, err := stats.DeleteExcept(ctx, []string{"garlic"})
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	found, err = stats.FindByIngredients(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Empty(t, found)
}

func TestWithinTxRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testutil.NewStore(t)
	wed := testutil.Day(t, "Wednesday January 8, 2020", "Tomato, Onion")

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context, w ports.MenuWriter) error {
		if _, err := w.Menus.InsertMany(ctx, []domain.MenuDay{wed}); err != nil {
			return err
		}
		if _, err := w.Ingredients.InsertMany(ctx, wed.Occurrences()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := store.Menus().Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	names, err := store.Ingredients().DistinctNames(ctx)
	require.NoError(t, err)
	require.Empty(t, names)

	err = store.WithinTx(ctx, func(ctx context.Context, w ports.MenuWriter) error {
		_, err := w.Menus.InsertMany(ctx, []domain.MenuDay{wed})
		return err
	})
	require.NoError(t, err)

	count, err = store.Menus().Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
