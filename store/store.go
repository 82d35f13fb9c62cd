package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var _Schema string

// Opens a sqlite database and ensures the schema exists.
//
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// in-memory databases exist per connection
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, _Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

//*******************************************
// transit time table
//*******************************************

// Saves table, replacing any stored one.
func SaveTransitTimeTable(ctx context.Context, db *sql.DB, table *TransitTimeTable) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM transit_times"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO meta (key, value) VALUES ('cell_size', ?)", strconv.FormatFloat(table.cell_size, 'g', -1, 64)); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO transit_times (from_region, to_region, seconds) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for key, seconds := range table.times {
		if _, err := stmt.ExecContext(ctx, key[0], key[1], seconds); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func LoadTransitTimeTable(ctx context.Context, db *sql.DB) (*TransitTimeTable, error) {
	var value string
	err := db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'cell_size'").Scan(&value)
	if err != nil {
		return nil, fmt.Errorf("read cell size: %w", err)
	}
	cell_size, err := strconv.ParseFloat(value, 64)
	if err != nil || cell_size <= 0 {
		return nil, fmt.Errorf("invalid cell size %q", value)
	}
	table := NewTransitTimeTable(cell_size)

	rows, err := db.QueryContext(ctx, "SELECT from_region, to_region, seconds FROM transit_times")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var from, to int64
		var seconds int32
		if err := rows.Scan(&from, &to, &seconds); err != nil {
			return nil, err
		}
		table.Set(from, to, seconds)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}
