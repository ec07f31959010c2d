package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"PizzaScanner/internal/domain"
	"PizzaScanner/internal/scanner"
)

func TestSubstringExtract(t *testing.T) {
	t.Parallel()

	page := menuPage(sampleLabels, sampleMenus)

	for i := 0; i < len(sampleLabels)-1; i++ {
		got, err := NewSubstringExtractor().Extract(scanner.Request{
			HTML:       page,
			StartLabel: sampleLabels[i],
			EndLabel:   sampleLabels[i+1],
		})
		require.NoError(t, err)
		require.Equal(t, domain.ExtractedMenu{{DateLabel: sampleLabels[i], MenuText: sampleMenus[i]}}, got)
	}
}

func TestSubstringExtractLastDayRunsToEnd(t *testing.T) {
	t.Parallel()

	got, err := NewSubstringExtractor().Extract(scanner.Request{
		HTML:       menuPage(sampleLabels, sampleMenus),
		StartLabel: "Monday January 13, 2020",
		EndLabel:   "Tuesday January 14, 2020",
	})
	require.NoError(t, err)
	require.Equal(t, sampleMenus[5], got[0].MenuText)
}

func TestSubstringExtractIsIdempotent(t *testing.T) {
	t.Parallel()

	req := scanner.Request{
		HTML:       menuPage(sampleLabels, sampleMenus),
		StartLabel: sampleLabels[1],
		EndLabel:   sampleLabels[2],
	}
	first, err := NewSubstringExtractor().Extract(req)
	require.NoError(t, err)
	second, err := NewSubstringExtractor().Extract(req)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestSubstringExtractFailures(t *testing.T) {
	t.Parallel()

	page := menuPage(sampleLabels, sampleMenus)

	testCases := []struct {
		name    string
		req     scanner.Request
		wantErr error
	}{
		{
			name:    "start missing",
			req:     scanner.Request{HTML: page, StartLabel: "Wednesday January 15, 2020", EndLabel: sampleLabels[1]},
			wantErr: scanner.ErrStartDateNotFound,
		},
		{
			name:    "empty start",
			req:     scanner.Request{HTML: page, StartLabel: "", EndLabel: sampleLabels[1]},
			wantErr: scanner.ErrStartDateNotFound,
		},
		{
			name:    "end missing on a menu day",
			req:     scanner.Request{HTML: page, StartLabel: sampleLabels[0], EndLabel: "Thursday January 16, 2020"},
			wantErr: scanner.ErrEndDateNotFound,
		},
		{
			name: "no opening tag",
			req: scanner.Request{
				HTML:       "<div>Wednesday January 8, 2020 Tomato, Basil Thursday January 9, 2020</div>",
				StartLabel: sampleLabels[0],
				EndLabel:   sampleLabels[1],
			},
			wantErr: scanner.ErrMalformedFragment,
		},
		{
			name: "no closing tag",
			req: scanner.Request{
				HTML:       `<p>Wednesday January 8, 2020</p><p style="x">Tomato, Basil <p>Thursday January 9, 2020</p>`,
				StartLabel: sampleLabels[0],
				EndLabel:   sampleLabels[1],
			},
			wantErr: scanner.ErrMalformedFragment,
		},
		{
			name: "unterminated opening tag",
			req: scanner.Request{
				HTML:       `<p>Wednesday January 8, 2020</p><p style="x" Tomato</p><p>Thursday January 9, 2020</p>`,
				StartLabel: sampleLabels[0],
				EndLabel:   sampleLabels[1],
			},
			wantErr: scanner.ErrMalformedFragment,
		},
		{
			name: "empty menu",
			req: scanner.Request{
				HTML:       `<p>Wednesday January 8, 2020</p><p style="x">  </p><p>Thursday January 9, 2020</p>`,
				StartLabel: sampleLabels[0],
				EndLabel:   sampleLabels[1],
			},
			wantErr: scanner.ErrMalformedFragment,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewSubstringExtractor().Extract(tc.req)
			require.ErrorIs(t, err, tc.wantErr)
			require.Nil(t, got)
		})
	}
}
