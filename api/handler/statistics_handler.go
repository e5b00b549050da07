package handler

import (
	"context"
	"net/http"

	"expensetracker/api/middleware"
	"expensetracker/internal/dto"
	"expensetracker/internal/service"

	"github.com/labstack/echo/v4"
)

type Analytics interface {
	Summary(ctx context.Context, userID int64, period service.Period) (*service.PeriodSummary, error)
	ByCategory(ctx context.Context, userID int64, period service.Period) (*service.PeriodByCategory, error)
}

type StatisticsHandler struct {
	Service Analytics
}

func NewStatisticsHandler(svc Analytics) *StatisticsHandler {
	return &StatisticsHandler{Service: svc}
}

func (h *StatisticsHandler) PeriodSummary(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeMessage(c, http.StatusUnauthorized, msgUnauthorized)
	}
	summary, err := h.Service.Summary(c.Request().Context(), userID, service.Period(c.QueryParam("period")))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSummaryResponse(
		string(summary.Period), summary.Range.Start, summary.Range.End, summary.Total,
	))
}

func (h *StatisticsHandler) PeriodByCategory(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeMessage(c, http.StatusUnauthorized, msgUnauthorized)
	}
	stats, err := h.Service.ByCategory(c.Request().Context(), userID, service.Period(c.QueryParam("period")))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewCategoryStatsResponse(
		string(stats.Period), stats.Range.Start, stats.Range.End, stats.Totals,
	))
}
