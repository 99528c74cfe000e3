// Package sheet models the external tabular store the register runs against:
// one flat table of string rows, shared by every client, whose only write
// primitive is replacing the entire table. The types here make that
// constraint explicit instead of hiding it behind a row-level API, because
// the whole-table replace is what callers must reason about when two
// sessions write concurrently.
package sheet

import "context"

// Row is a single sheet row. The register uses four columns
// (store_name, ticket_number, registered_at, status) but rows read from an
// externally edited sheet may be shorter or longer.
type Row []string

// Table is an ordered snapshot of every row in the sheet, including any
// header row the sheet may carry. Row offsets into a Table are the only
// handle the register has for addressing a row later.
type Table []Row

// Append returns a new table image with row added at the end. The receiver
// is not modified; writes to the backing store always send a complete image.
func (t Table) Append(row Row) Table {
	out := make(Table, 0, len(t)+1)
	out = append(out, t...)
	return append(out, row)
}

// ReplaceAt returns a new table image with the row at offset pos swapped for
// row. It reports false when pos is outside the table, leaving the caller to
// surface the stale-position condition.
func (t Table) ReplaceAt(pos int, row Row) (Table, bool) {
	if pos < 0 || pos >= len(t) {
		return nil, false
	}
	out := make(Table, len(t))
	copy(out, t)
	out[pos] = row
	return out, true
}

// Clone returns a deep copy of the table. Cached snapshots are cloned before
// being handed out so a caller cannot mutate the cache in place.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for i, row := range t {
		r := make(Row, len(row))
		copy(r, row)
		out[i] = r
	}
	return out
}

// Transport is the connection to the backing sheet store. ReadAll returns
// every row; an empty table is valid business state, not an error. WriteAll
// replaces the entire sheet contents with the given image. Implementations
// provide no locking and no compare-and-swap: two sessions that both read an
// old table and write back will lose one writer's change. That is the
// documented contract of the store, not something a Transport may paper over.
type Transport interface {
	ReadAll(ctx context.Context) (Table, error)
	WriteAll(ctx context.Context, t Table) error
}
