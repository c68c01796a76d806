package reportdb

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"twexport/internal/errs"
	"twexport/internal/model"
)

// Table is the single table holding one record per tweet-period.
const Table = "report"

// DB wraps the SQLite file a run writes into.
type DB struct {
	sql     *sql.DB
	columns []model.Column
	insert  string
}

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.Wrap(errs.KindIO, "open db", err)
	}
	// one writer; also keeps ":memory:" on a single connection
	d.SetMaxOpenConns(1)
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = d.Close()
		return nil, errs.Wrap(errs.KindIO, "open db", err)
	}
	return &DB{sql: d, columns: model.ReportColumns, insert: insertSQL(model.ReportColumns)}, nil
}

func (d *DB) Close() error { return d.sql.Close() }

// Columns is the schema rows are checked against.
func (d *DB) Columns() []model.Column { return d.columns }

// Reset drops any existing report table and recreates it empty.
func (d *DB) Reset(ctx context.Context) error {
	if _, err := d.sql.ExecContext(ctx, `DROP TABLE IF EXISTS `+Table); err != nil {
		return errs.Wrap(errs.KindIO, "drop table", err)
	}
	if _, err := d.sql.ExecContext(ctx, createSQL(d.columns)); err != nil {
		return errs.Wrap(errs.KindIO, "create table", err)
	}
	return nil
}

// InsertRow writes one record in its own transaction. A row whose width does
// not match the schema is rejected before anything is written.
func (d *DB) InsertRow(ctx context.Context, row model.Row) error {
	if len(row) != len(d.columns) {
		return errs.New(errs.KindSchemaMismatch, "insert row", "row has %d fields, table has %d columns", len(row), len(d.columns))
	}
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(errs.KindIO, "begin", err)
	}
	args := make([]any, len(row))
	for i, v := range row {
		args[i] = v
	}
	if _, err := tx.ExecContext(ctx, d.insert, args...); err != nil {
		_ = tx.Rollback()
		return errs.Wrap(errs.KindIO, "insert row", err)
	}
	if err := tx.Commit(); err != nil {
		return errs.Wrap(errs.KindIO, "commit", err)
	}
	return nil
}

// Count returns the number of committed records.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+Table).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Load returns every record as text, in insertion order.
func (d *DB) Load(ctx context.Context) ([]model.Row, error) {
	sel := make([]string, len(d.columns))
	for i, c := range d.columns {
		sel[i] = "CAST(" + c.Name + " AS TEXT)"
	}
	rows, err := d.sql.QueryContext(ctx, `SELECT `+strings.Join(sel, ", ")+` FROM `+Table+` ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Row
	for rows.Next() {
		vals := make([]sql.NullString, len(d.columns))
		ptrs := make([]any, len(vals))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		r := make(model.Row, len(vals))
		for i, v := range vals {
			r[i] = v.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func createSQL(cols []model.Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = c.Name + " " + string(c.Type)
	}
	return `CREATE TABLE ` + Table + ` (` + strings.Join(defs, ", ") + `)`
}

func insertSQL(cols []model.Column) string {
	ph := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	return `INSERT INTO ` + Table + ` VALUES (` + ph + `)`
}
