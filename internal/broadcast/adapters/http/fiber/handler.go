package fiber

import (
	"context"
	"errors"
	"net/http"

	"scan-stats-service/internal/broadcast"

	"github.com/gofiber/fiber/v2"
)

type BroadcastService interface {
	Broadcast(ctx context.Context, in broadcast.Input) (*broadcast.Tally, error)
	Acknowledge(ctx context.Context, userID int64, accepted bool) (*broadcast.Ack, error)
}

type BroadcastRequest struct {
	SenderID int64  `json:"sender_id" example:"1181905320"`
	Text     string `json:"text"`
	PhotoID  string `json:"photo_id,omitempty"`
}

type TallyResponse struct {
	ID         string  `json:"id"`
	Recipients int     `json:"recipients"`
	Delivered  int     `json:"delivered"`
	Failed     int     `json:"failed"`
	FailedIDs  []int64 `json:"failed_ids"`
}

type AckRequest struct {
	UserID int64 `json:"user_id"`
	// Action is "accepted" or "skipped".
	Action string `json:"action" example:"accepted"`
}

type AckResponse struct {
	Accepted []string `json:"accepted"`
	Skipped  []string `json:"skipped"`
	Text     string   `json:"text"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type BroadcastHandler struct {
	svc BroadcastService
}

func NewBroadcastHandler(svc BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{svc: svc}
}

// CreateBroadcast godoc
// @Summary Send a message to every user-tier member
// @Tags Broadcasts
// @Accept json
// @Produce json
// @Param request body BroadcastRequest true "Broadcast payload"
// @Success 200 {object} TallyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /broadcasts [post]
func (h *BroadcastHandler) CreateBroadcast(c *fiber.Ctx) error {
	var req BroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "invalid_json"})
	}

	tally, err := h.svc.Broadcast(c.UserContext(), broadcast.Input{
		SenderID: req.SenderID,
		Text:     req.Text,
		PhotoID:  req.PhotoID,
	})
	if err != nil {
		return writeError(c, err)
	}

	failed := tally.FailedIDs
	if failed == nil {
		failed = []int64{}
	}
	return c.Status(http.StatusOK).JSON(TallyResponse{
		ID:         tally.ID,
		Recipients: tally.Recipients,
		Delivered:  tally.Delivered,
		Failed:     tally.Failed,
		FailedIDs:  failed,
	})
}

// AcknowledgeBroadcast godoc
// @Summary Record a recipient's reply to the latest broadcast
// @Tags Broadcasts
// @Accept json
// @Produce json
// @Param request body AckRequest true "Reply"
// @Success 200 {object} AckResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /broadcasts/ack [post]
func (h *BroadcastHandler) AcknowledgeBroadcast(c *fiber.Ctx) error {
	var req AckRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "invalid_json"})
	}

	var accepted bool
	switch req.Action {
	case "accepted":
		accepted = true
	case "skipped":
	default:
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "action must be accepted or skipped",
		})
	}

	ack, err := h.svc.Acknowledge(c.UserContext(), req.UserID, accepted)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(AckResponse{Accepted: ack.Accepted, Skipped: ack.Skipped, Text: ack.Text})
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, broadcast.ErrEmptyMessage):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "invalid_request", Message: err.Error()})
	case errors.Is(err, broadcast.ErrNotPermitted):
		return c.Status(http.StatusForbidden).JSON(ErrorResponse{Error: "forbidden", Message: err.Error()})
	case errors.Is(err, broadcast.ErrNoRecipients):
		return c.Status(http.StatusUnprocessableEntity).JSON(ErrorResponse{Error: "no_recipients", Message: err.Error()})
	case errors.Is(err, broadcast.ErrNoBroadcast):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{Error: "not_found", Message: err.Error()})
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{Error: "internal_server_error"})
	}
}
