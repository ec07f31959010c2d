// Package httpapi exposes the menu and statistics lookups over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"PizzaScanner/internal/domain"
	"PizzaScanner/internal/scanner"
	"PizzaScanner/internal/usecase"
)

// MenuService is the use-case surface the router depends on.
type MenuService interface {
	Menu(ctx context.Context, startLabel, endLabel string) (usecase.MenuResult, error)
	Statistics(ctx context.Context, names []string) ([]domain.IngredientStatistic, error)
}

type menuResponse struct {
	Cached bool   `json:"cached"`
	Data   string `json:"data"`
}

type handler struct {
	svc    MenuService
	logger *slog.Logger
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(svc MenuService, logger *slog.Logger) *gin.Engine {
	h := &handler{svc: svc, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), h.requestLog())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api")
	{
		api.GET("/pizza", h.menu)
		api.GET("/pizza_statistics", h.statistics)
	}
	return r
}

// GET /api/pizza?start=Wednesday January 8, 2020&end=Thursday January 9, 2020
func (h *handler) menu(c *gin.Context) {
	start, end := c.Query("start"), c.Query("end")
	if start == "" || end == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	result, err := h.svc.Menu(c.Request.Context(), start, end)
	if err != nil {
		h.fail(c, "menu lookup", err)
		return
	}
	c.JSON(http.StatusOK, menuResponse{Cached: result.Cached, Data: result.Data})
}

// GET /api/pizza_statistics?ingredients=Onion, Garlic
func (h *handler) statistics(c *gin.Context) {
	names := domain.SplitIngredients(c.Query("ingredients"))
	if len(names) == 0 {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	stats, err := h.svc.Statistics(c.Request.Context(), names)
	if err != nil {
		h.fail(c, "statistics lookup", err)
		return
	}
	if stats == nil {
		stats = []domain.IngredientStatistic{}
	}
	c.JSON(http.StatusOK, stats)
}

func (h *handler) fail(c *gin.Context, op string, err error) {
	status := StatusFor(err)
	if h.logger != nil {
		h.logger.Error(op, "status", status, "error", err)
	}
	c.AbortWithStatus(status)
}

// StatusFor maps a use-case error to its HTTP status. Errors the caller can fix
// by changing the request are 400. A week that was extracted but lacks the
// requested day is an extraction failure and, like everything else, is 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrValidation),
		errors.Is(err, scanner.ErrStartDateNotFound),
		errors.Is(err, scanner.ErrEndDateNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		if h.logger == nil {
			return
		}
		h.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(started))
	}
}
