package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"PizzaScanner/internal/domain"
	"PizzaScanner/internal/infrastructure/fetcher"
	"PizzaScanner/internal/scanner"
	"PizzaScanner/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	result   usecase.MenuResult
	stats    []domain.IngredientStatistic
	err      error
	gotStart string
	gotNames []string
}

func (f *fakeService) Menu(_ context.Context, start, _ string) (usecase.MenuResult, error) {
	f.gotStart = start
	return f.result, f.err
}

func (f *fakeService) Statistics(_ context.Context, names []string) ([]domain.IngredientStatistic, error) {
	f.gotNames = names
	return f.stats, f.err
}

func serve(t *testing.T, svc MenuService, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	NewRouter(svc, nil).ServeHTTP(rec, req)
	return rec
}

func menuURL(start, end string) string {
	q := url.Values{}
	if start != "" {
		q.Set("start", start)
	}
	if end != "" {
		q.Set("end", end)
	}
	return "/api/pizza?" + q.Encode()
}

func TestMenuEndpoint(t *testing.T) {
	t.Parallel()

	svc := &fakeService{result: usecase.MenuResult{Cached: true, Data: "Corn, Onion, Feta"}}
	rec := serve(t, svc, menuURL("Friday January 10, 2020", "Saturday January 11, 2020"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"cached":true,"data":"Corn, Onion, Feta"}`, rec.Body.String())
	require.Equal(t, "Friday January 10, 2020", svc.gotStart)
}

func TestMenuEndpointStatuses(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		target string
		err    error
		want   int
	}{
		{name: "missing start", target: menuURL("", "Thursday January 9, 2020"), want: http.StatusBadRequest},
		{name: "missing end", target: menuURL("Wednesday January 8, 2020", ""), want: http.StatusBadRequest},
		{name: "bad weekday", target: menuURL("Someday", "Thursday"), err: fmt.Errorf("%w: weekday", usecase.ErrValidation), want: http.StatusBadRequest},
		{name: "start not on page", target: menuURL("Wednesday", "Thursday"), err: fmt.Errorf("extract: %w", scanner.ErrStartDateNotFound), want: http.StatusBadRequest},
		{name: "target not in week", target: menuURL("Wednesday", "Thursday"), err: fmt.Errorf("%w: %q", usecase.ErrTargetNotFound, "Wednesday"), want: http.StatusInternalServerError},
		{name: "page changed", target: menuURL("Wednesday", "Thursday"), err: fmt.Errorf("extract: %w", scanner.ErrUnexpectedStructure), want: http.StatusInternalServerError},
		{name: "upstream down", target: menuURL("Wednesday", "Thursday"), err: &fetcher.UpstreamError{Status: http.StatusBadGateway}, want: http.StatusInternalServerError},
		{name: "store down", target: menuURL("Wednesday", "Thursday"), err: fmt.Errorf("%w: db", usecase.ErrPersistence), want: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := serve(t, &fakeService{err: tc.err}, tc.target)
			require.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	t.Parallel()

	svc := &fakeService{stats: []domain.IngredientStatistic{{Ingredient: "onion", Count: 3, Percentage: 0.3}}}
	rec := serve(t, svc, "/api/pizza_statistics?ingredients="+url.QueryEscape("Onion, Garlic"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"onion", "garlic"}, svc.gotNames)

	var got []domain.IngredientStatistic
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, svc.stats, got)
}

func TestStatisticsEndpointEmptyAndErrors(t *testing.T) {
	t.Parallel()

	rec := serve(t, &fakeService{}, "/api/pizza_statistics?ingredients=saffron")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = serve(t, &fakeService{}, "/api/pizza_statistics")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, &fakeService{err: errors.New("db gone")}, "/api/pizza_statistics?ingredients=onion")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := serve(t, &fakeService{}, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}
