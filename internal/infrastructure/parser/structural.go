package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"PizzaScanner/internal/calendar"
	"PizzaScanner/internal/domain"
	"PizzaScanner/internal/scanner"
)

const (
	// StructuralName identifies the tag-counting extractor inside the registry.
	StructuralName = "structural"

	// menuStyle is the inline style the page puts on every date and menu paragraph.
	menuStyle = "white-space:pre-wrap;"

	expectedParagraphs = 2 * len(calendar.MenuWeek)
)

// StructuralExtractor reads the page as a tag tree and expects the six date/menu
// pairs as alternating styled paragraphs.
type StructuralExtractor struct {
	logger *slog.Logger
}

var _ scanner.Extractor = (*StructuralExtractor)(nil)

// NewStructuralExtractor builds the canonical extractor.
func NewStructuralExtractor(logger *slog.Logger) *StructuralExtractor {
	return &StructuralExtractor{logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *StructuralExtractor) Name() string {
	return StructuralName
}

// Extract returns all six entries of the week. The caller picks the one it needs.
func (s *StructuralExtractor) Extract(req scanner.Request) (domain.ExtractedMenu, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(req.HTML))
	if err != nil {
		return nil, fmt.Errorf("%w: parse document: %v", scanner.ErrUnexpectedStructure, err)
	}

	paragraphs := doc.Find("p").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		style, ok := sel.Attr("style")
		return ok && normalizeStyle(style) == menuStyle
	})
	if paragraphs.Length() != expectedParagraphs {
		return nil, fmt.Errorf("%w: found %d menu paragraphs, want %d",
			scanner.ErrUnexpectedStructure, paragraphs.Length(), expectedParagraphs)
	}

	menu := make(domain.ExtractedMenu, 0, len(calendar.MenuWeek))
	for i := 0; i < expectedParagraphs; i += 2 {
		rawLabel := strings.TrimSpace(paragraphs.Eq(i).Text())
		label, err := calendar.Validate(rawLabel, i/2)
		if err != nil {
			return nil, fmt.Errorf("%w: day %d: %w", scanner.ErrUnexpectedStructure, i/2, err)
		}
		if calendar.WeekdayToken(rawLabel) != calendar.WeekdayToken(label) {
			s.warn("weekday corrected", "raw", rawLabel, "label", label)
		}

		text := strings.TrimSpace(paragraphs.Eq(i + 1).Text())
		if text == "" {
			return nil, fmt.Errorf("%w: day %d has no menu text", scanner.ErrUnexpectedStructure, i/2)
		}

		menu = append(menu, domain.MenuEntry{DateLabel: label, MenuText: text})
	}

	return menu, nil
}

func normalizeStyle(style string) string {
	return strings.ToLower(strings.Join(strings.Fields(style), ""))
}

func (s *StructuralExtractor) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
