package sink

import (
	"context"
	"fmt"

	"twexport/internal/config"
	"twexport/internal/logging"
	"twexport/internal/metrics"
	"twexport/internal/model"
	"twexport/internal/report"
	"twexport/internal/store/reportdb"
)

// SQLiteSink recreates the report table and inserts each data row in its own
// transaction. The header row is not stored.
type SQLiteSink struct{}

func NewSQLiteSink() *SQLiteSink { return &SQLiteSink{} }

func (s *SQLiteSink) Write(ctx context.Context, rows []model.Row, path string) (art Artifact, err error) {
	art = Artifact{Path: path, Type: config.OutputSQLite}
	if err := ensureDir(path); err != nil {
		return art, err
	}
	db, err := reportdb.Open(path)
	if err != nil {
		return art, err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
		metrics.AddRows("sqlite", art.Rows)
	}()
	if err := db.Reset(ctx); err != nil {
		return art, err
	}
	if h := report.Header(rows); h != nil {
		if diff := report.HeaderDiff(h, model.ColumnNames(db.Columns())); len(diff) > 0 {
			logging.Warn("header_mismatch", map[string]any{"positions": diff, "header_width": len(h)})
		}
	}
	for i, r := range report.Body(rows) {
		if err := db.InsertRow(ctx, r); err != nil {
			return art, fmt.Errorf("data row %d: %w", i+1, err)
		}
		art.Rows++
	}
	logging.Info("db_written", map[string]any{"path": path, "rows": art.Rows, "table": reportdb.Table})
	return art, nil
}
