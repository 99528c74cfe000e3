// Package model defines the ticket entity stored in the shared sheet and the
// rules for mapping it to and from a raw sheet row.
package model

import "github.com/kmori/junban/internal/sheet"

// Ticket is one row of the shared waiting-list sheet. A ticket carries no
// identifier of its own; callers address it by its offset in the full table
// snapshot they read it from.
//
// Fields mirror the sheet columns in order:
//  StoreName    – which store the ticket was drawn at.
//  TicketNumber – caller-supplied number printed on the paper ticket. Not
//                 required to be unique, only non-empty at registration.
//  RegisteredAt – wall-clock time of day ("15:04:05") when the ticket was
//                 registered. The sheet stores no date component.
//  Status       – StatusPending or StatusDone.
type Ticket struct {
	StoreName    string `json:"store_name"`
	TicketNumber string `json:"ticket_number"`
	RegisteredAt string `json:"registered_at"`
	Status       string `json:"status"`
}

const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// TimeLayout is the format of RegisteredAt in the sheet.
const TimeLayout = "15:04:05"

// FromRow builds a Ticket from a raw sheet row. Cells beyond the fourth are
// ignored and missing cells default to the empty string, so a sheet created
// by hand without the expected header still parses. Malformed rows are never
// an error here; they simply fail to match any store or status downstream.
func FromRow(row sheet.Row) Ticket {
	return Ticket{
		StoreName:    cell(row, 0),
		TicketNumber: cell(row, 1),
		RegisteredAt: cell(row, 2),
		Status:       cell(row, 3),
	}
}

// Row serializes the ticket back into sheet column order.
func (t Ticket) Row() sheet.Row {
	return sheet.Row{t.StoreName, t.TicketNumber, t.RegisteredAt, t.Status}
}

// ValidTransition reports whether a status change is allowed. The only legal
// move is pending → done; done is terminal.
func ValidTransition(from, to string) bool {
	return from == StatusPending && to == StatusDone
}

func cell(row sheet.Row, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
