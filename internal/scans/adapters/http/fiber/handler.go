package fiber

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"scan-stats-service/internal/scans/core/domain"
	"scan-stats-service/internal/scans/core/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-sql/civil"
)

type RecordScanUseCase interface {
	Execute(ctx context.Context, in usecase.RecordScanInput) (*domain.ScanEvent, error)
}

type ImportHistoryUseCase interface {
	Execute(ctx context.Context, in usecase.ImportHistoryInput) (usecase.ImportHistoryResult, error)
	ImportActivity(ctx context.Context, in usecase.ImportActivityInput) (int, error)
}

type GetActivityUseCase interface {
	Execute(ctx context.Context, userID int64) (civil.Date, bool, error)
}

// AccessFunc reports whether a user may submit scans. Nil allows everyone.
type AccessFunc func(userID int64) bool

type ScanHandler struct {
	recordUC   RecordScanUseCase
	importUC   ImportHistoryUseCase
	activityUC GetActivityUseCase
	allowed    AccessFunc
}

func NewScanHandler(recordUC RecordScanUseCase, importUC ImportHistoryUseCase, activityUC GetActivityUseCase, allowed AccessFunc) *ScanHandler {
	return &ScanHandler{
		recordUC:   recordUC,
		importUC:   importUC,
		activityUC: activityUC,
		allowed:    allowed,
	}
}

// CreateScan godoc
// @Summary Submit a scan
// @Description Extracts a scooter identifier from the text and appends a scan event
// @Tags Scans
// @Accept json
// @Produce json
// @Param request body CreateScanRequest true "Scan payload"
// @Success 201 {object} CreateScanResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /scans [post]
func (h *ScanHandler) CreateScan(c *fiber.Ctx) error {
	var req CreateScanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "invalid_json"})
	}

	if h.allowed != nil && !h.allowed(req.UserID) {
		return c.Status(http.StatusForbidden).JSON(ErrorResponse{
			Error:   "forbidden",
			Message: "user is not on the roster",
		})
	}

	identifier, ok := domain.ExtractIdentifier(req.Text)
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "no scooter identifier in text",
		})
	}

	ev, err := h.recordUC.Execute(c.UserContext(), usecase.RecordScanInput{
		UserID:     req.UserID,
		Identifier: identifier,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(CreateScanResponse{
		ID:         ev.ID,
		UserID:     ev.UserID,
		Identifier: ev.Identifier,
		ScannedAt:  ev.ScannedAt,
	})
}

// BulkImportHistory godoc
// @Summary Import historic daily counts
// @Description Upserts per-user daily totals; re-importing the same document is idempotent
// @Tags Scans
// @Accept json
// @Produce json
// @Param request body map[string]HistoryDocumentEntry true "History document keyed by user id"
// @Success 200 {object} BulkHistoryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /history/bulk [post]
func (h *ScanHandler) BulkImportHistory(c *fiber.Ctx) error {
	var doc map[string]HistoryDocumentEntry
	if err := c.BodyParser(&doc); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "invalid_json"})
	}
	if len(doc) == 0 {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "history_required"})
	}

	entries := make(map[int64]usecase.HistoryEntry, len(doc))
	for key, e := range doc {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_request",
				Message: "user id keys must be integers",
			})
		}
		entries[userID] = usecase.HistoryEntry{Comment: e.Comment, DailyHistory: e.DailyHistory}
	}

	res, err := h.importUC.Execute(c.UserContext(), usecase.ImportHistoryInput{Entries: entries})
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(http.StatusOK).JSON(BulkHistoryResponse{Users: res.Users, Rows: res.Rows})
}

// BulkImportActivity godoc
// @Summary Import legacy last-activity dates
// @Tags Scans
// @Accept json
// @Produce json
// @Param request body map[string]string true "user id -> YYYY-MM-DD"
// @Success 200 {object} BulkActivityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /activity/bulk [post]
func (h *ScanHandler) BulkImportActivity(c *fiber.Ctx) error {
	var doc map[string]string
	if err := c.BodyParser(&doc); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "invalid_json"})
	}

	markers := make(map[int64]string, len(doc))
	for key, day := range doc {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_request",
				Message: "user id keys must be integers",
			})
		}
		markers[userID] = day
	}

	n, err := h.importUC.ImportActivity(c.UserContext(), usecase.ImportActivityInput{Markers: markers})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(BulkActivityResponse{Imported: n})
}

// GetActivity godoc
// @Summary Last activity date of a user
// @Tags Scans
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} ActivityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id}/activity [get]
func (h *ScanHandler) GetActivity(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid user id",
		})
	}

	day, found, err := h.activityUC.Execute(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}

	resp := ActivityResponse{UserID: userID, Found: found}
	if found {
		resp.LastSeenDate = day.String()
	}
	return c.Status(http.StatusOK).JSON(resp)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidScan),
		errors.Is(err, usecase.ErrInvalidUser),
		errors.Is(err, usecase.ErrInvalidHistory):
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
