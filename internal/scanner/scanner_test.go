package scanner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"PizzaScanner/internal/domain"
)

type stubExtractor struct{ name string }

func (s stubExtractor) Name() string { return s.name }

func (s stubExtractor) Extract(Request) (domain.ExtractedMenu, error) { return nil, nil }

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubExtractor{name: "structural"})
	reg.Register(stubExtractor{name: "substring"})

	got, err := reg.Resolve("substring")
	require.NoError(t, err)
	require.Equal(t, "substring", got.Name())

	_, err = reg.Resolve("regex")
	require.ErrorIs(t, err, ErrUnknownExtractor)
	require.Equal(t, []string{"structural", "substring"}, reg.Names())
}

func TestIsStructural(t *testing.T) {
	t.Parallel()

	require.True(t, IsStructural(fmt.Errorf("wrap: %w", ErrUnexpectedStructure)))
	require.True(t, IsStructural(ErrMalformedFragment))
	require.False(t, IsStructural(ErrStartDateNotFound))
	require.False(t, IsStructural(nil))
}
