package fiber_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"scan-stats-service/internal/broadcast"
	httpadapter "scan-stats-service/internal/broadcast/adapters/http/fiber"

	"github.com/gofiber/fiber/v2"
)

type fakeService struct {
	BroadcastFn   func(ctx context.Context, in broadcast.Input) (*broadcast.Tally, error)
	AcknowledgeFn func(ctx context.Context, userID int64, accepted bool) (*broadcast.Ack, error)
	lastInput     broadcast.Input
	lastAccepted  bool
}

func (f *fakeService) Broadcast(ctx context.Context, in broadcast.Input) (*broadcast.Tally, error) {
	f.lastInput = in
	if f.BroadcastFn != nil {
		return f.BroadcastFn(ctx, in)
	}
	return &broadcast.Tally{ID: "b1", Recipients: 2, Delivered: 2}, nil
}

func (f *fakeService) Acknowledge(ctx context.Context, userID int64, accepted bool) (*broadcast.Ack, error) {
	f.lastAccepted = accepted
	if f.AcknowledgeFn != nil {
		return f.AcknowledgeFn(ctx, userID, accepted)
	}
	return &broadcast.Ack{Accepted: []string{"A"}, Skipped: []string{}, Text: "report"}, nil
}

func setupApp(svc *fakeService) *fiber.App {
	app := fiber.New()
	h := httpadapter.NewBroadcastHandler(svc)
	app.Post("/broadcasts", h.CreateBroadcast)
	app.Post("/broadcasts/ack", h.AcknowledgeBroadcast)
	return app
}

func post(t *testing.T, app *fiber.App, path string, body any) (*http.Response, []byte) {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

// ------------------------------------------------------------
// BROADCAST
// ------------------------------------------------------------

func TestCreateBroadcast_Success(t *testing.T) {
	svc := &fakeService{}
	app := setupApp(svc)

	resp, body := post(t, app, "/broadcasts", httpadapter.BroadcastRequest{SenderID: 1, Text: "hello"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if svc.lastInput.SenderID != 1 || svc.lastInput.Text != "hello" {
		t.Fatalf("unexpected input: %+v", svc.lastInput)
	}

	var out httpadapter.TallyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if out.Delivered != 2 || out.FailedIDs == nil {
		t.Fatalf("unexpected tally: %+v", out)
	}
}

func TestCreateBroadcast_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: user 5", broadcast.ErrNotPermitted), http.StatusForbidden},
		{broadcast.ErrNoRecipients, http.StatusUnprocessableEntity},
		{broadcast.ErrEmptyMessage, http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		svc := &fakeService{
			BroadcastFn: func(ctx context.Context, in broadcast.Input) (*broadcast.Tally, error) {
				return nil, tc.err
			},
		}
		resp, _ := post(t, setupApp(svc), "/broadcasts", httpadapter.BroadcastRequest{SenderID: 5, Text: "x"})
		if resp.StatusCode != tc.status {
			t.Fatalf("%v: expected status %d, got %d", tc.err, tc.status, resp.StatusCode)
		}
	}
}

func TestCreateBroadcast_InvalidJSON(t *testing.T) {
	app := setupApp(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/broadcasts", bytes.NewBufferString("{bad"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
}

// ------------------------------------------------------------
// ACK
// ------------------------------------------------------------

func TestAcknowledgeBroadcast(t *testing.T) {
	svc := &fakeService{}
	app := setupApp(svc)

	resp, _ := post(t, app, "/broadcasts/ack", httpadapter.AckRequest{UserID: 10, Action: "skipped"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if svc.lastAccepted {
		t.Fatalf("expected skipped reply")
	}

	resp, _ = post(t, app, "/broadcasts/ack", httpadapter.AckRequest{UserID: 10, Action: "maybe"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
}

func TestAcknowledgeBroadcast_NoBroadcast(t *testing.T) {
	svc := &fakeService{
		AcknowledgeFn: func(ctx context.Context, userID int64, accepted bool) (*broadcast.Ack, error) {
			return nil, broadcast.ErrNoBroadcast
		},
	}
	resp, _ := post(t, setupApp(svc), "/broadcasts/ack", httpadapter.AckRequest{UserID: 10, Action: "accepted"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.StatusCode)
	}
}
