package fiber

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"scan-stats-service/internal/report"
	"scan-stats-service/internal/stats/core/domain"
	"scan-stats-service/internal/stats/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type PersonalStatsUseCase interface {
	Execute(ctx context.Context, userID int64) (*domain.PersonalStats, error)
	Dashboard(ctx context.Context, userID int64) (*domain.PersonalStats, *domain.ChartData, error)
}

type ChartUseCase interface {
	Execute(ctx context.Context, userID int64) (*domain.ChartData, error)
}

type ReportUseCase interface {
	Execute(ctx context.Context, in usecase.GetReportInput) (*domain.ReportData, error)
}

// NamesFunc returns the name directory for one request.
type NamesFunc func() report.Names

type StatsHandler struct {
	personalUC PersonalStatsUseCase
	chartUC    ChartUseCase
	reportUC   ReportUseCase
	rule       domain.PremiumRule
	names      NamesFunc
}

func NewStatsHandler(personalUC PersonalStatsUseCase, chartUC ChartUseCase, reportUC ReportUseCase, rule domain.PremiumRule, names NamesFunc) *StatsHandler {
	return &StatsHandler{
		personalUC: personalUC,
		chartUC:    chartUC,
		reportUC:   reportUC,
		rule:       rule,
		names:      names,
	}
}

// GetPersonalStats godoc
// @Summary Personal statistics
// @Description Today, running decade with premium, and all-time figures. format=text returns the chat message
// @Tags Stats
// @Produce json
// @Param id path int true "User id"
// @Param format query string false "json (default) or text"
// @Success 200 {object} PersonalStatsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id}/stats [get]
func (h *StatsHandler) GetPersonalStats(c *fiber.Ctx) error {
	userID, err := userIDParam(c)
	if err != nil {
		return writeError(c, err)
	}

	s, err := h.personalUC.Execute(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}

	name := h.names().Name(userID)
	if wantsText(c) {
		return c.Status(http.StatusOK).JSON(TextResponse{Text: report.PersonalMessage(name, s)})
	}
	return c.Status(http.StatusOK).JSON(toPersonalResponse(name, s))
}

// GetChart godoc
// @Summary Hourly and weekly activity series
// @Tags Stats
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} ChartResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id}/chart [get]
func (h *StatsHandler) GetChart(c *fiber.Ctx) error {
	userID, err := userIDParam(c)
	if err != nil {
		return writeError(c, err)
	}

	chart, err := h.chartUC.Execute(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(toChartResponse(userID, chart))
}

// GetPage godoc
// @Summary Data context of the personal statistics page
// @Tags Stats
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} report.Page
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id}/page [get]
func (h *StatsHandler) GetPage(c *fiber.Ctx) error {
	userID, err := userIDParam(c)
	if err != nil {
		return writeError(c, err)
	}

	s, chart, err := h.personalUC.Dashboard(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(report.BuildPage(h.names().Name(userID), s, chart))
}

// GetTodayReport godoc
// @Summary Today's per-user report
// @Tags Reports
// @Produce json
// @Param format query string false "json (default) or text"
// @Success 200 {object} TodayReportResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports/today [get]
func (h *StatsHandler) GetTodayReport(c *fiber.Ctx) error {
	data, err := h.reportUC.Execute(c.UserContext(), usecase.GetReportInput{Period: usecase.PeriodToday})
	if err != nil {
		return writeError(c, err)
	}

	names := h.names()
	if wantsText(c) {
		return c.Status(http.StatusOK).JSON(TextResponse{Text: report.TodayMessage(data.Today, names)})
	}
	return c.Status(http.StatusOK).JSON(toTodayResponse(data.Today, names))
}

// GetDecadeReport godoc
// @Summary Decade report of the current month
// @Tags Reports
// @Produce json
// @Param num path int true "Decade number (1, 2 or 3)"
// @Param format query string false "json (default) or text"
// @Success 200 {object} DecadeReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports/decade/{num} [get]
func (h *StatsHandler) GetDecadeReport(c *fiber.Ctx) error {
	num, err := strconv.Atoi(c.Params("num"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "decade must be 1, 2 or 3",
		})
	}

	data, err := h.reportUC.Execute(c.UserContext(), usecase.GetReportInput{
		Period:    usecase.PeriodDecade,
		DecadeNum: num,
	})
	if err != nil {
		return writeError(c, err)
	}

	names := h.names()
	if wantsText(c) {
		return c.Status(http.StatusOK).JSON(TextResponse{Text: report.DecadeMessage(data.Decade, h.rule, names)})
	}
	return c.Status(http.StatusOK).JSON(toDecadeResponse(data.Decade, h.rule, names))
}

func userIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, usecase.ErrInvalidUser
	}
	return id, nil
}

func wantsText(c *fiber.Ctx) bool {
	return c.Query("format") == "text"
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidUser),
		errors.Is(err, usecase.ErrInvalidPeriod),
		errors.Is(err, usecase.ErrInvalidDecade):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}
}
