package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/kmori/junban/internal/cache"
	"github.com/kmori/junban/internal/model"
	"github.com/kmori/junban/internal/sheet"
)

// PendingTicket pairs a pending ticket with its offset in the full,
// unfiltered table snapshot it was read from. The offset is the only handle
// for completing the ticket later, so it is always computed against the full
// table, never against the filtered view.
type PendingTicket struct {
	Position int          `json:"position"`
	Ticket   model.Ticket `json:"ticket"`
}

// TicketRepo is the only component that touches the backing sheet. Reads for
// display go through the session's TableCache; mutations follow the
// read-modify-write protocol and always send a complete table image.
//
// The backing store offers no row-level update and no version token, so two
// sessions that both read an old table and write back will lose one writer's
// change. That last-writer-wins race is the accepted contract of a single
// unlocked shared sheet; TicketRepo does not attempt to mask it.
type TicketRepo struct {
	transport sheet.Transport
	cache     *cache.TableCache
	stores    map[string]bool
	now       func() time.Time
}

// NewTicketRepo returns a repository bound to the given transport and cache.
// stores is the fixed set of store names writes are allowed to target.
func NewTicketRepo(t sheet.Transport, c *cache.TableCache, stores []string) *TicketRepo {
	set := make(map[string]bool, len(stores))
	for _, s := range stores {
		set[s] = true
	}
	return &TicketRepo{transport: t, cache: c, stores: set, now: time.Now}
}

// ListPending returns every pending ticket for the store, tagged with its
// offset in the full table. The table comes from the cache, so the view may
// lag the sheet by at most the cache TTL (or until the next local write).
// Rows that fail to parse simply never match and are skipped.
func (r *TicketRepo) ListPending(ctx context.Context, store string) ([]PendingTicket, error) {
	if !r.stores[store] {
		return nil, ErrUnknownStore
	}
	tbl, err := r.cache.Get(ctx, r.transport.ReadAll)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	pending := make([]PendingTicket, 0)
	for pos, row := range tbl {
		t := model.FromRow(row)
		if t.Status == model.StatusPending && t.StoreName == store {
			pending = append(pending, PendingTicket{Position: pos, Ticket: t})
		}
	}
	return pending, nil
}

// Append registers a new pending ticket: fetch the full table, add one row at
// the end, write the whole image back. On a write failure the cache is left
// untouched so a retry reads the pre-failure state; on success it is
// invalidated so the next list reflects the new row.
func (r *TicketRepo) Append(ctx context.Context, store, ticketNumber string) (model.Ticket, error) {
	if !r.stores[store] {
		return model.Ticket{}, ErrUnknownStore
	}
	tbl, err := r.cache.Get(ctx, r.transport.ReadAll)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("read sheet: %w", err)
	}
	t := model.Ticket{
		StoreName:    store,
		TicketNumber: ticketNumber,
		RegisteredAt: r.now().Format(model.TimeLayout),
		Status:       model.StatusPending,
	}
	if err := r.transport.WriteAll(ctx, tbl.Append(t.Row())); err != nil {
		return model.Ticket{}, fmt.Errorf("write sheet: %w", err)
	}
	r.cache.Invalidate()
	return t, nil
}

// Complete marks the ticket at offset pos done. The table is deliberately
// re-fetched fresh from the transport rather than taken from the cache, to
// shrink the window between display and action. If pos no longer points at a
// row that can move to done (the sheet shrank or was rewritten), the call
// fails with ErrStalePosition and nothing is written. Completing a row that
// is already done is a no-op, not an error: a second click after a re-fetch
// must not corrupt the sheet.
func (r *TicketRepo) Complete(ctx context.Context, pos int) (model.Ticket, error) {
	tbl, err := r.transport.ReadAll(ctx)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("read sheet: %w", err)
	}
	if pos < 0 || pos >= len(tbl) {
		return model.Ticket{}, ErrStalePosition
	}
	t := model.FromRow(tbl[pos])
	if t.Status == model.StatusDone {
		return t, nil
	}
	if !model.ValidTransition(t.Status, model.StatusDone) {
		// The offset points at something that was never a displayable
		// pending ticket (header row, malformed row). Treat it the same
		// as a reordered sheet.
		return model.Ticket{}, ErrStalePosition
	}
	t.Status = model.StatusDone
	next, ok := tbl.ReplaceAt(pos, t.Row())
	if !ok {
		return model.Ticket{}, ErrStalePosition
	}
	if err := r.transport.WriteAll(ctx, next); err != nil {
		return model.Ticket{}, fmt.Errorf("write sheet: %w", err)
	}
	r.cache.Invalidate()
	return t, nil
}
