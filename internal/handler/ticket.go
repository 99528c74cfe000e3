package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kmori/junban/internal/config"
	"github.com/kmori/junban/internal/escalate"
	"github.com/kmori/junban/internal/model"
	q "github.com/kmori/junban/internal/queue"
	"github.com/kmori/junban/internal/repository"
	queue_publisher "github.com/kmori/junban/internal/service"
)

// TicketService is the slice of the queue repository the HTTP layer needs.
type TicketService interface {
	ListPending(ctx context.Context, store string) ([]repository.PendingTicket, error)
	Append(ctx context.Context, store, ticketNumber string) (model.Ticket, error)
	Complete(ctx context.Context, pos int) (model.Ticket, error)
}

// TicketHandler exposes the register's core operations over HTTP. It owns no
// queue logic: it binds requests, invokes the repository, annotates pending
// rows with their escalation state and translates sentinel errors to
// statuses.
type TicketHandler struct {
	Cfg     config.Config
	Tickets TicketService
	Now     func() time.Time // observation clock, injectable for tests
	Publish func(ctx context.Context, ev q.TicketActivityEvent) error
}

func NewTicketHandler(cfg config.Config, svc TicketService) *TicketHandler {
	return &TicketHandler{
		Cfg:     cfg,
		Tickets: svc,
		Now:     time.Now,
		Publish: queue_publisher.PublishTicketActivity,
	}
}

// ----- DTOs -----

type registerReq struct {
	TicketNumber string `json:"ticket_number"`
}

type pendingEntry struct {
	Position     int            `json:"position"`
	TicketNumber string         `json:"ticket_number"`
	RegisteredAt string         `json:"registered_at"`
	WaitedMin    int64          `json:"waited_min"`
	State        escalate.State `json:"state"`
}

// ListStores returns the fixed store set the deployment is configured with.
func (h *TicketHandler) ListStores(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"stores": h.Cfg.Stores})
}

// ListPending returns the pending tickets for one store, each tagged with
// its full-table position and annotated with elapsed wait and escalation
// state at observation time. The annotation is computed here, never stored.
func (h *TicketHandler) ListPending(c echo.Context) error {
	store := strings.TrimSpace(c.Param("store"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pending, err := h.Tickets.ListPending(ctx, store)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownStore) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown store"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "sheet unavailable"})
	}

	now := h.Now()
	entries := make([]pendingEntry, 0, len(pending))
	for _, p := range pending {
		entries = append(entries, pendingEntry{
			Position:     p.Position,
			TicketNumber: p.Ticket.TicketNumber,
			RegisteredAt: p.Ticket.RegisteredAt,
			WaitedMin:    int64(escalate.Elapsed(p.Ticket.RegisteredAt, now) / time.Minute),
			State:        escalate.Evaluate(p.Ticket, now, h.Cfg.AlertThreshold),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"store": store, "tickets": entries})
}

// Register appends a new pending ticket for the store.
func (h *TicketHandler) Register(c echo.Context) error {
	store := strings.TrimSpace(c.Param("store"))
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.TicketNumber = strings.TrimSpace(req.TicketNumber)
	if req.TicketNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_number required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tickets.Append(ctx, store, req.TicketNumber)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownStore) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown store"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "sheet unavailable"})
	}

	// Best effort; a broker outage must not fail the registration.
	_ = h.Publish(ctx, q.TicketActivityEvent{
		Action:       q.ActionRegistered,
		StoreName:    t.StoreName,
		TicketNumber: t.TicketNumber,
		RegisteredAt: t.RegisteredAt,
		OccurredAt:   h.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, t)
}

// Complete marks the ticket at the given full-table position done. A stale
// position is a recoverable conflict: the client should re-fetch the pending
// list and retry, so it maps to 409 rather than 5xx.
func (h *TicketHandler) Complete(c echo.Context) error {
	pos, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid position"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tickets.Complete(ctx, pos)
	if err != nil {
		if errors.Is(err, repository.ErrStalePosition) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "stale position, refresh the list"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "sheet unavailable"})
	}

	_ = h.Publish(ctx, q.TicketActivityEvent{
		Action:       q.ActionCompleted,
		StoreName:    t.StoreName,
		TicketNumber: t.TicketNumber,
		RegisteredAt: t.RegisteredAt,
		Position:     pos,
		OccurredAt:   h.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, t)
}
