package domain

import (
	"math"
	"strings"
	"time"
)

// IngredientSeparator splits a raw menu line into ingredient names.
const IngredientSeparator = ", "

// PercentagePrecision is the number of decimals kept for every stored percentage.
const PercentagePrecision = 2

// MenuEntry is one date/menu pair as found on the menu page.
type MenuEntry struct {
	DateLabel string
	MenuText  string
}

// ExtractedMenu is the ordered output of a menu extractor.
type ExtractedMenu []MenuEntry

// Find returns the entry whose label equals dateLabel.
func (m ExtractedMenu) Find(dateLabel string) (MenuEntry, bool) {
	for _, entry := range m {
		if entry.DateLabel == dateLabel {
			return entry, true
		}
	}
	return MenuEntry{}, false
}

// MenuDay is one persisted day of the pizza menu. DateLabel is its natural key.
type MenuDay struct {
	Date              time.Time
	DateLabel         string
	RawIngredientLine string
	Ingredients       []string
}

// Occurrences explodes the day into one row per ingredient.
func (d MenuDay) Occurrences() []IngredientOccurrence {
	out := make([]IngredientOccurrence, 0, len(d.Ingredients))
	for _, name := range d.Ingredients {
		out = append(out, IngredientOccurrence{Date: d.Date, Name: name})
	}
	return out
}

// IngredientOccurrence records a single ingredient appearing on a single day.
type IngredientOccurrence struct {
	Date time.Time
	Name string
}

// IngredientStatistic aggregates one ingredient over all known menu days.
type IngredientStatistic struct {
	Ingredient string  `json:"ingredient"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SplitIngredients lower-cases a raw menu line and splits it into ingredient names.
func SplitIngredients(raw string) []string {
	parts := strings.Split(strings.ToLower(raw), IngredientSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// NormalizeIngredients lower-cases a list of user supplied names, dropping blanks.
func NormalizeIngredients(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// DistinctNames returns the ingredient names of occurrences in first-seen order.
func DistinctNames(occurrences []IngredientOccurrence) []string {
	seen := make(map[string]struct{}, len(occurrences))
	out := make([]string, 0, len(occurrences))
	for _, occ := range occurrences {
		if _, ok := seen[occ.Name]; ok {
			continue
		}
		seen[occ.Name] = struct{}{}
		out = append(out, occ.Name)
	}
	return out
}

// Percentage computes count/total rounded to PercentagePrecision decimals.
// A zero total yields zero.
func Percentage(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	scale := math.Pow(10, PercentagePrecision)
	return math.Round(float64(count)/float64(total)*scale) / scale
}
