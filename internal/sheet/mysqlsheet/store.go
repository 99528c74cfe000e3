// Package mysqlsheet backs the shared sheet with a single flat MySQL table.
// It reproduces the semantics of a hosted spreadsheet: ReadAll returns every
// row in order, WriteAll replaces the entire contents. There is
// deliberately no read-modify-write serialization across callers; the
// lost-update behavior of the shared sheet is part of its contract.
package mysqlsheet

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/kmori/junban/internal/sheet"
)

// Store implements sheet.Transport on top of a MySQL table with the fixed
// four sheet columns plus a position column that preserves row order.
type Store struct {
	db    *sql.DB
	table string
}

// Open connects to MySQL, verifies the connection and returns a Store bound
// to the given table name.
func Open(user, pass, host, port, name, table string) (*Store, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{db: db, table: table}, nil
}

// ReadAll returns the full sheet ordered by position. An empty table yields
// an empty (non-nil) sheet.Table, distinguishable from a transport error.
func (s *Store) ReadAll(ctx context.Context) (sheet.Table, error) {
	q := fmt.Sprintf(`SELECT store_name, ticket_number, registered_at, status FROM %s ORDER BY pos`, s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tbl := make(sheet.Table, 0)
	for rows.Next() {
		var store, number, registered, status string
		if err := rows.Scan(&store, &number, &registered, &status); err != nil {
			return nil, err
		}
		tbl = append(tbl, sheet.Row{store, number, registered, status})
	}
	return tbl, rows.Err()
}

// WriteAll replaces the entire sheet with the given image: delete everything,
// then bulk-insert each row with its new position. Both statements run in
// one transaction so a reader never observes a half-written sheet, but the
// transaction does not extend back to the caller's read: two callers that
// both read an old image still overwrite each other, exactly as a shared
// spreadsheet would.
func (s *Store) WriteAll(ctx context.Context, t sheet.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, s.table)); err != nil {
		return err
	}
	if len(t) > 0 {
		query := fmt.Sprintf(`INSERT INTO %s (pos, store_name, ticket_number, registered_at, status) VALUES `, s.table)
		args := make([]interface{}, 0, len(t)*5)
		for i, row := range t {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?)"
			args = append(args, i, col(row, 0), col(row, 1), col(row, 2), col(row, 3))
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

func col(row sheet.Row, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
