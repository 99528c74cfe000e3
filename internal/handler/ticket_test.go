package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kmori/junban/internal/config"
	"github.com/kmori/junban/internal/model"
	q "github.com/kmori/junban/internal/queue"
	"github.com/kmori/junban/internal/repository"
)

type fakeTickets struct {
	listFn     func(ctx context.Context, store string) ([]repository.PendingTicket, error)
	appendFn   func(ctx context.Context, store, number string) (model.Ticket, error)
	completeFn func(ctx context.Context, pos int) (model.Ticket, error)
}

func (f fakeTickets) ListPending(ctx context.Context, store string) ([]repository.PendingTicket, error) {
	return f.listFn(ctx, store)
}

func (f fakeTickets) Append(ctx context.Context, store, number string) (model.Ticket, error) {
	return f.appendFn(ctx, store, number)
}

func (f fakeTickets) Complete(ctx context.Context, pos int) (model.Ticket, error) {
	return f.completeFn(ctx, pos)
}

var testCfg = config.Config{
	Stores:         []string{"shibuya", "ueno"},
	AlertThreshold: 5 * time.Minute,
}

// newTestHandler builds a TicketHandler with a fixed observation clock and a
// publisher that records instead of dialing a broker.
func newTestHandler(svc TicketService, published *[]q.TicketActivityEvent) *TicketHandler {
	h := NewTicketHandler(testCfg, svc)
	h.Now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	h.Publish = func(_ context.Context, ev q.TicketActivityEvent) error {
		if published != nil {
			*published = append(*published, ev)
		}
		return nil
	}
	return h
}

func serve(method, target string, body []byte, route string, fn echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	switch method {
	case http.MethodGet:
		e.GET(route, fn)
	default:
		e.POST(route, fn)
	}
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	resp := httptest.NewRecorder()
	e.ServeHTTP(resp, req)
	return resp
}

func TestListPendingAnnotatesEscalation(t *testing.T) {
	svc := fakeTickets{
		listFn: func(_ context.Context, store string) ([]repository.PendingTicket, error) {
			return []repository.PendingTicket{
				{Position: 1, Ticket: model.Ticket{StoreName: store, TicketNumber: "101", RegisteredAt: "11:58:00", Status: "pending"}},
				{Position: 3, Ticket: model.Ticket{StoreName: store, TicketNumber: "102", RegisteredAt: "11:50:00", Status: "pending"}},
			}, nil
		},
	}
	h := newTestHandler(svc, nil)

	resp := serve(http.MethodGet, "/v1/stores/shibuya/tickets", nil, "/v1/stores/:store/tickets", h.ListPending)
	if resp.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.Code, resp.Body.String())
	}

	var out struct {
		Store   string         `json:"store"`
		Tickets []pendingEntry `json:"tickets"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Tickets) != 2 {
		t.Fatalf("tickets=%+v", out.Tickets)
	}
	if out.Tickets[0].State != "normal" || out.Tickets[0].WaitedMin != 2 || out.Tickets[0].Position != 1 {
		t.Fatalf("first entry=%+v", out.Tickets[0])
	}
	if out.Tickets[1].State != "alert" || out.Tickets[1].WaitedMin != 10 || out.Tickets[1].Position != 3 {
		t.Fatalf("second entry=%+v", out.Tickets[1])
	}
}

func TestListPendingUnknownStore(t *testing.T) {
	svc := fakeTickets{
		listFn: func(_ context.Context, _ string) ([]repository.PendingTicket, error) {
			return nil, repository.ErrUnknownStore
		},
	}
	h := newTestHandler(svc, nil)

	resp := serve(http.MethodGet, "/v1/stores/nakano/tickets", nil, "/v1/stores/:store/tickets", h.ListPending)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", resp.Code)
	}
}

func TestRegisterPublishesEvent(t *testing.T) {
	svc := fakeTickets{
		appendFn: func(_ context.Context, store, number string) (model.Ticket, error) {
			return model.Ticket{StoreName: store, TicketNumber: number, RegisteredAt: "12:00:00", Status: "pending"}, nil
		},
	}
	var published []q.TicketActivityEvent
	h := newTestHandler(svc, &published)

	body, _ := json.Marshal(map[string]string{"ticket_number": "101"})
	resp := serve(http.MethodPost, "/v1/stores/shibuya/tickets", body, "/v1/stores/:store/tickets", h.Register)
	if resp.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", resp.Code, resp.Body.String())
	}
	if len(published) != 1 || published[0].Action != q.ActionRegistered || published[0].TicketNumber != "101" {
		t.Fatalf("published=%+v", published)
	}
}

func TestRegisterRequiresTicketNumber(t *testing.T) {
	h := newTestHandler(fakeTickets{
		appendFn: func(_ context.Context, _, _ string) (model.Ticket, error) {
			t.Fatal("append reached the repository")
			return model.Ticket{}, nil
		},
	}, nil)

	body, _ := json.Marshal(map[string]string{"ticket_number": "   "})
	resp := serve(http.MethodPost, "/v1/stores/shibuya/tickets", body, "/v1/stores/:store/tickets", h.Register)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", resp.Code)
	}
}

func TestCompleteStalePositionMapsToConflict(t *testing.T) {
	svc := fakeTickets{
		completeFn: func(_ context.Context, _ int) (model.Ticket, error) {
			return model.Ticket{}, repository.ErrStalePosition
		},
	}
	var published []q.TicketActivityEvent
	h := newTestHandler(svc, &published)

	resp := serve(http.MethodPost, "/v1/tickets/7/complete", nil, "/v1/tickets/:position/complete", h.Complete)
	if resp.Code != http.StatusConflict {
		t.Fatalf("status=%d, want 409", resp.Code)
	}
	if len(published) != 0 {
		t.Fatalf("stale complete published %+v", published)
	}
}

func TestCompleteSuccess(t *testing.T) {
	svc := fakeTickets{
		completeFn: func(_ context.Context, pos int) (model.Ticket, error) {
			if pos != 7 {
				t.Fatalf("pos=%d, want 7", pos)
			}
			return model.Ticket{StoreName: "shibuya", TicketNumber: "101", RegisteredAt: "11:00:00", Status: "done"}, nil
		},
	}
	var published []q.TicketActivityEvent
	h := newTestHandler(svc, &published)

	resp := serve(http.MethodPost, "/v1/tickets/7/complete", nil, "/v1/tickets/:position/complete", h.Complete)
	if resp.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.Code, resp.Body.String())
	}
	if len(published) != 1 || published[0].Action != q.ActionCompleted || published[0].Position != 7 {
		t.Fatalf("published=%+v", published)
	}
}

func TestCompleteInvalidPosition(t *testing.T) {
	h := newTestHandler(fakeTickets{
		completeFn: func(_ context.Context, _ int) (model.Ticket, error) {
			t.Fatal("complete reached the repository")
			return model.Ticket{}, nil
		},
	}, nil)

	resp := serve(http.MethodPost, "/v1/tickets/abc/complete", nil, "/v1/tickets/:position/complete", h.Complete)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", resp.Code)
	}
}
