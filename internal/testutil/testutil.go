// Package testutil provides an in-memory store and fixtures for package tests.
package testutil

import (
	"context"
	"testing"

	"PizzaScanner/internal/calendar"
	"PizzaScanner/internal/domain"
	"PizzaScanner/internal/infrastructure/storage"
)

// NewStore opens a migrated in-memory sqlite store that is closed with the test.
func NewStore(t testing.TB) *storage.Store {
	t.Helper()

	ctx := context.Background()
	db, err := storage.Open(ctx, storage.Options{Driver: storage.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}

	store := storage.New(db, storage.DriverSQLite)
	if err := store.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// Day builds a menu day from a label and a raw ingredient line.
func Day(t testing.TB, label, raw string) domain.MenuDay {
	t.Helper()

	date, err := calendar.Parse(label)
	if err != nil {
		t.Fatal(err)
	}
	return domain.MenuDay{
		Date:              date,
		DateLabel:         label,
		RawIngredientLine: raw,
		Ingredients:       domain.SplitIngredients(raw),
	}
}

// Occurrences explodes days into ingredient rows.
func Occurrences(days ...domain.MenuDay) []domain.IngredientOccurrence {
	var out []domain.IngredientOccurrence
	for _, day := range days {
		out = append(out, day.Occurrences()...)
	}
	return out
}
