package handler

import (
	"errors"
	"net/http"

	"aitool-service/internal/usage"
	"aitool-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UsageHandler exposes the read-only usage reporting endpoints
type UsageHandler struct {
	stats *usage.StatsService
}

// NewUsageHandler creates a usage handler
func NewUsageHandler(stats *usage.StatsService) *UsageHandler {
	return &UsageHandler{stats: stats}
}

// GetUsageStats returns the company's per-tool usage breakdown for a period
func (h *UsageHandler) GetUsageStats(c echo.Context) error {
	log := logger.FromContext(c)

	_, companyID, ok := identityFromContext(c)
	if !ok {
		log.Error("Failed to get identity from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	period := c.QueryParam("period")
	if period == "" {
		period = usage.PeriodMonth
	}

	stats, err := h.stats.GetUsageStats(c.Request().Context(), companyID, period)
	if err != nil {
		if errors.Is(err, usage.ErrCompanyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		log.Error("Failed to get usage statistics", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to get usage statistics"})
	}

	return c.JSON(http.StatusOK, stats)
}

// GetUserHistory returns the authenticated user's invocation history for a
// period, newest first
func (h *UsageHandler) GetUserHistory(c echo.Context) error {
	log := logger.FromContext(c)

	userID, companyID, ok := identityFromContext(c)
	if !ok {
		log.Error("Failed to get identity from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	period := c.QueryParam("period")
	if period == "" {
		period = usage.PeriodWeek
	}

	history, err := h.stats.GetUserHistory(c.Request().Context(), userID, companyID, period)
	if err != nil {
		log.Error("Failed to get usage history", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to get usage history"})
	}

	return c.JSON(http.StatusOK, history)
}
