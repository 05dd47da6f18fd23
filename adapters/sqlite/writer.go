// Package sqlite materializes a consolidated frame as an embedded SQLite
// database file holding exactly one table. SQLite has no bulk-load API, so
// rows go through a prepared INSERT inside a single transaction.
package sqlite

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"sheetpress/domain/table"
	"sheetpress/internal/errors"
)

// TableName is the single output table. Re-running a consolidation against
// the same target replaces it entirely.
const TableName = "DATA"

// Writer writes consolidated frames to SQLite files.
type Writer struct {
	tableName string
}

// NewWriter creates a writer targeting the standard DATA table.
func NewWriter() *Writer {
	return &Writer{tableName: TableName}
}

// WriteFile stages the database into a temp file next to destPath and
// renames it into place, so a half-written database never looks like a
// successful run. The temp file is removed on every exit path.
func (w *Writer) WriteFile(ctx context.Context, frame *table.Frame, columnTypes map[string]table.ColumnType, destPath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".sheetpress-*.db")
	if err != nil {
		return errors.OutputWrite(destPath, err)
	}
	tmpPath := tmp.Name()
	tmp.Close() // the driver reopens by path
	defer os.Remove(tmpPath)

	if err := w.writeTo(ctx, tmpPath, frame, columnTypes); err != nil {
		return errors.OutputWrite(destPath, err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return errors.OutputWrite(destPath, err)
	}
	log.Printf("[SQLiteWriter] wrote %d rows to %s", frame.NumRows(), destPath)
	return nil
}

// WriteBytes builds the database in a scratch file and returns its raw
// bytes, for the web download path. The scratch file is always removed.
func (w *Writer) WriteBytes(ctx context.Context, frame *table.Frame, columnTypes map[string]table.ColumnType) ([]byte, error) {
	tmp, err := os.CreateTemp("", "sheetpress-*.db")
	if err != nil {
		return nil, errors.OutputWrite("temporary database", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := w.writeTo(ctx, tmpPath, frame, columnTypes); err != nil {
		return nil, errors.OutputWrite("temporary database", err)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, errors.OutputWrite("temporary database", err)
	}
	return data, nil
}

// writeTo creates the DATA table and inserts every row, all in one
// transaction. Cell values are bound as float64, string, or nil; no string
// form of a missing value can reach the database.
func (w *Writer) writeTo(ctx context.Context, path string, frame *table.Frame, columnTypes map[string]table.ColumnType) error {
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(w.tableName))); err != nil {
		return fmt.Errorf("drop existing table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, w.createTableSQL(frame.Columns, columnTypes)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, w.insertSQL(len(frame.Columns)))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	startTime := time.Now()
	args := make([]interface{}, len(frame.Columns))
	for _, row := range frame.Rows {
		for j, cell := range row {
			args[j] = cell.SQLValue()
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Printf("[SQLiteWriter] inserted %d rows in %.2fms",
		frame.NumRows(), float64(time.Since(startTime).Nanoseconds())/1e6)
	return nil
}

// createTableSQL builds the DDL. Numeric columns get REAL affinity, text
// and date columns TEXT; dates are stored as YYYY-MM-DD strings.
func (w *Writer) createTableSQL(columns []string, columnTypes map[string]table.ColumnType) string {
	defs := make([]string, len(columns))
	for i, name := range columns {
		affinity := "TEXT"
		if columnTypes[name] == table.ColumnTypeNumeric {
			affinity = "REAL"
		}
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(name), affinity)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(w.tableName), strings.Join(defs, ", "))
}

func (w *Writer) insertSQL(columnCount int) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", columnCount), ", ")
	return fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(w.tableName), placeholders)
}

// quoteIdent quotes a column or table name. Real-world headers contain
// spaces, accents, and embedded newlines, so everything gets quoted.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
