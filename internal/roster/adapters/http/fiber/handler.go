package fiber

import (
	"errors"
	"net/http"
	"strconv"

	"scan-stats-service/internal/clock"
	"scan-stats-service/internal/report"
	"scan-stats-service/internal/roster"

	"github.com/gofiber/fiber/v2"
)

const maxShiftDays = 62

// Directory is the roster holder the handler reads from and reloads.
type Directory interface {
	Snapshot() *roster.Snapshot
	Reload() error
}

type ShiftDayResponse struct {
	Date  string `json:"date"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

type ShiftsResponse struct {
	UserID int64              `json:"user_id"`
	Days   []ShiftDayResponse `json:"days"`
	Text   string             `json:"text"`
}

type ReloadResponse struct {
	Users int `json:"users"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type RosterHandler struct {
	dir         Directory
	clk         clock.Clock
	defaultDays int
}

func NewRosterHandler(dir Directory, clk clock.Clock, defaultDays int) *RosterHandler {
	if defaultDays <= 0 {
		defaultDays = 15
	}
	return &RosterHandler{dir: dir, clk: clk, defaultDays: defaultDays}
}

// GetShifts godoc
// @Summary Upcoming shift schedule of a user
// @Description Starts today; days missing from the roster are off. Users without a schedule get only the text
// @Tags Roster
// @Produce json
// @Param id path int true "User id"
// @Param days query int false "Number of days (default from config)"
// @Success 200 {object} ShiftsResponse
// @Failure 400 {object} ErrorResponse
// @Router /users/{id}/shifts [get]
func (h *RosterHandler) GetShifts(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || userID <= 0 {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid user id",
		})
	}

	days := c.QueryInt("days", h.defaultDays)
	if days <= 0 || days > maxShiftDays {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "days must be between 1 and 62",
		})
	}

	schedule, err := h.dir.Snapshot().ShiftSchedule(userID, clock.Today(h.clk), days)
	if err != nil && !errors.Is(err, roster.ErrUnknownUser) && !errors.Is(err, roster.ErrNoSchedule) {
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{Error: "internal_server_error"})
	}

	resp := ShiftsResponse{
		UserID: userID,
		Days:   make([]ShiftDayResponse, 0, len(schedule)),
		Text:   report.ShiftMessage(schedule, err),
	}
	for _, s := range schedule {
		resp.Days = append(resp.Days, ShiftDayResponse{
			Date:  s.Day.String(),
			Kind:  string(s.Kind),
			Label: report.ShiftLabel(s.Kind),
		})
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// Reload godoc
// @Summary Reload the roster file
// @Description On failure the previously loaded roster stays active
// @Tags Roster
// @Produce json
// @Success 200 {object} ReloadResponse
// @Failure 422 {object} ErrorResponse
// @Router /roster/reload [post]
func (h *RosterHandler) Reload(c *fiber.Ctx) error {
	if err := h.dir.Reload(); err != nil {
		return c.Status(http.StatusUnprocessableEntity).JSON(ErrorResponse{
			Error:   "reload_failed",
			Message: err.Error(),
		})
	}
	return c.Status(http.StatusOK).JSON(ReloadResponse{Users: h.dir.Snapshot().Len()})
}
