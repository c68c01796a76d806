// Package sink persists parsed report rows. Each run produces one fresh
// artifact; nothing is appended.
package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"twexport/internal/config"
	"twexport/internal/errs"
	"twexport/internal/model"
)

// Artifact describes what a Sink wrote.
type Artifact struct {
	Path string
	Type config.OutputType
	// Rows counts data rows, header excluded.
	Rows int
}

// Sink writes rows (header first) to path.
type Sink interface {
	Write(ctx context.Context, rows []model.Row, path string) (Artifact, error)
}

// New selects the sink for the configured output type.
func New(cfg config.OutputConfig) (Sink, error) {
	switch cfg.Type {
	case config.OutputCSV, "":
		return NewCSVSink(cfg.Encoding, cfg.BOM)
	case config.OutputSQLite:
		return NewSQLiteSink(), nil
	case config.OutputXLSX:
		return NewXLSXSink(), nil
	}
	return nil, errs.New(errs.KindConfig, "select sink", "unknown output type %q", cfg.Type)
}

// Filename builds {dir}/twitter_data_{start}_{end}.{ext}.
func Filename(dir, start, end string, t config.OutputType) string {
	return filepath.Join(dir, fmt.Sprintf("twitter_data_%s_%s.%s", start, end, t.Ext()))
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.KindIO, "create output dir", err)
	}
	return nil
}

func dataRows(rows []model.Row) int {
	if len(rows) == 0 {
		return 0
	}
	return len(rows) - 1
}
