package parser

import (
	"context"
	"fmt"
	"log/slog"

	"PizzaScanner/internal/domain"
	"PizzaScanner/internal/ports"
	"PizzaScanner/internal/scanner"
)

// StrategySource implements MenuSource with a page fetcher and the extractor
// selected by configuration.
type StrategySource struct {
	fetcher   ports.PageFetcher
	extractor scanner.Extractor
	logger    *slog.Logger
}

var _ ports.MenuSource = (*StrategySource)(nil)

// NewStrategySource resolves strategy in the registry and wires it with the fetcher.
func NewStrategySource(reg *scanner.Registry, strategy string, fetcher ports.PageFetcher, log *slog.Logger) (*StrategySource, error) {
	if reg == nil {
		return nil, fmt.Errorf("extractor registry is not configured")
	}
	extractor, err := reg.Resolve(strategy)
	if err != nil {
		return nil, err
	}
	return &StrategySource{
		fetcher:   fetcher,
		extractor: extractor,
		logger:    log,
	}, nil
}

// DefaultRegistry registers every extractor this package provides.
func DefaultRegistry(log *slog.Logger) *scanner.Registry {
	reg := scanner.NewRegistry()
	reg.Register(NewStructuralExtractor(log))
	reg.Register(NewSubstringExtractor())
	return reg
}

// FetchMenu downloads the page and runs the configured extractor over it.
func (s *StrategySource) FetchMenu(ctx context.Context, startLabel, endLabel string) (domain.ExtractedMenu, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("page fetcher is not configured")
	}

	s.debug("fetch menu", "extractor", s.extractor.Name(), "start", startLabel, "end", endLabel)

	page, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	menu, err := s.extractor.Extract(scanner.Request{
		HTML:       page,
		StartLabel: startLabel,
		EndLabel:   endLabel,
	})
	if err != nil {
		return nil, fmt.Errorf("extract with %s: %w", s.extractor.Name(), err)
	}
	if len(menu) == 0 {
		return nil, fmt.Errorf("extract with %s: %w: no entries", s.extractor.Name(), scanner.ErrUnexpectedStructure)
	}

	s.debug("menu extracted", "entries", len(menu))
	return menu, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
