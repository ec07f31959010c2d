package parser

import (
	"fmt"
	"html"
	"strings"

	"PizzaScanner/internal/calendar"
	"PizzaScanner/internal/domain"
	"PizzaScanner/internal/scanner"
)

// SubstringName identifies the delimiter-search extractor inside the registry.
const SubstringName = "substring"

// SubstringExtractor cuts the menu text out of the raw page between the start and end
// date labels. It only returns the entry for the start label.
type SubstringExtractor struct{}

var _ scanner.Extractor = SubstringExtractor{}

// NewSubstringExtractor builds the fallback extractor.
func NewSubstringExtractor() SubstringExtractor {
	return SubstringExtractor{}
}

// Name identifies the strategy inside the registry.
func (SubstringExtractor) Name() string {
	return SubstringName
}

// Extract locates the window and strips the paragraph markup around the menu text.
// A missing end label is tolerated only when it names the closed day, in which case
// the window runs to the end of the page.
func (SubstringExtractor) Extract(req scanner.Request) (domain.ExtractedMenu, error) {
	if req.StartLabel == "" {
		return nil, fmt.Errorf("%w: empty start label", scanner.ErrStartDateNotFound)
	}
	if req.EndLabel == "" {
		return nil, fmt.Errorf("%w: empty end label", scanner.ErrEndDateNotFound)
	}

	start := strings.Index(req.HTML, req.StartLabel)
	if start < 0 {
		return nil, fmt.Errorf("%w: %q", scanner.ErrStartDateNotFound, req.StartLabel)
	}
	rest := req.HTML[start+len(req.StartLabel):]

	end := strings.Index(rest, req.EndLabel)
	if end < 0 {
		if calendar.WeekdayToken(req.EndLabel) != calendar.ClosedWeekday.String() {
			return nil, fmt.Errorf("%w: %q", scanner.ErrEndDateNotFound, req.EndLabel)
		}
		end = len(rest)
	}

	text, err := stripParagraph(rest[:end])
	if err != nil {
		return nil, err
	}

	return domain.ExtractedMenu{{DateLabel: req.StartLabel, MenuText: text}}, nil
}

// stripParagraph removes one opening <p ...> tag, the closing </p> after it and the
// bracket that ends the opening tag's attributes.
func stripParagraph(fragment string) (string, error) {
	s := strings.TrimSpace(fragment)

	open := strings.Index(s, "<p")
	if open < 0 {
		return "", fmt.Errorf("%w: no opening paragraph tag", scanner.ErrMalformedFragment)
	}
	s = strings.TrimSpace(s[open+len("<p"):])

	closing := strings.Index(s, "</p>")
	if closing < 0 {
		return "", fmt.Errorf("%w: no closing paragraph tag", scanner.ErrMalformedFragment)
	}
	s = strings.TrimSpace(s[:closing])

	bracket := strings.Index(s, ">")
	if bracket < 0 {
		return "", fmt.Errorf("%w: unterminated opening tag", scanner.ErrMalformedFragment)
	}
	s = strings.TrimSpace(s[bracket+1:])

	if s == "" {
		return "", fmt.Errorf("%w: empty menu text", scanner.ErrMalformedFragment)
	}
	return html.UnescapeString(s), nil
}
