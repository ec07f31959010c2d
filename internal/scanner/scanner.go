package scanner

import (
	"errors"
	"fmt"
	"sort"

	"PizzaScanner/internal/domain"
)

// Extraction failures. Every extractor wraps one of these so callers can classify
// the failure with errors.Is.
var (
	ErrUnexpectedStructure = errors.New("unexpected page structure")
	ErrMalformedFragment   = errors.New("malformed menu fragment")
	ErrStartDateNotFound   = errors.New("start date not found on page")
	ErrEndDateNotFound     = errors.New("end date not found on page")
	ErrUnknownExtractor    = errors.New("extractor is not registered")
)

// Request carries the page and the window the caller is interested in.
type Request struct {
	HTML       string
	StartLabel string
	EndLabel   string
}

// Extractor turns a menu page into date/menu pairs. An extractor either returns a
// complete result or an error; it never returns a partial menu.
type Extractor interface {
	Name() string
	Extract(req Request) (domain.ExtractedMenu, error)
}

// IsStructural reports whether err means the page no longer matches what the
// extractors expect, as opposed to the caller asking for a date that is not on it.
func IsStructural(err error) bool {
	return errors.Is(err, ErrUnexpectedStructure) || errors.Is(err, ErrMalformedFragment)
}

// Registry keeps a mapping from extractor names to their implementations.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: map[string]Extractor{}}
}

// Register adds or replaces an extractor implementation.
func (r *Registry) Register(extractor Extractor) {
	if r.extractors == nil {
		r.extractors = map[string]Extractor{}
	}
	r.extractors[extractor.Name()] = extractor
}

// Resolve returns an extractor by name.
func (r *Registry) Resolve(name string) (Extractor, error) {
	if extractor, ok := r.extractors[name]; ok {
		return extractor, nil
	}
	return nil, fmt.Errorf("%w: %s (known: %v)", ErrUnknownExtractor, name, r.Names())
}

// Names lists the registered extractors in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.extractors))
	for name := range r.extractors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
