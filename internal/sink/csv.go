package sink

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"twexport/internal/config"
	"twexport/internal/errs"
	"twexport/internal/logging"
	"twexport/internal/metrics"
	"twexport/internal/model"
)

// CSVSink writes every row, header included, as RFC 4180 CSV.
type CSVSink struct {
	enc  encoding.Encoding // nil means UTF-8 passthrough
	name string
	bom  bool
}

// NewCSVSink resolves name as a WHATWG encoding label; empty means utf-8.
// A BOM can only be requested together with utf-8.
func NewCSVSink(name string, bom bool) (*CSVSink, error) {
	s := &CSVSink{name: "utf-8", bom: bom}
	if name == "" {
		return s, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, "csv encoding", err)
	}
	canonical, _ := htmlindex.Name(enc)
	s.name = canonical
	if !strings.EqualFold(canonical, "utf-8") {
		if bom {
			return nil, errs.New(errs.KindConfig, "csv encoding", "bom is only written for utf-8, not %s", canonical)
		}
		s.enc = enc
	}
	return s, nil
}

func (s *CSVSink) Write(ctx context.Context, rows []model.Row, path string) (art Artifact, err error) {
	art = Artifact{Path: path, Type: config.OutputCSV}
	if err := ensureDir(path); err != nil {
		return art, err
	}
	f, err := os.Create(path)
	if err != nil {
		return art, errs.Wrap(errs.KindIO, "create csv", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errs.Wrap(errs.KindIO, "close csv", cerr)
		}
	}()

	var out io.Writer = f
	var tw *transform.Writer
	if s.enc != nil {
		tw = transform.NewWriter(f, encoding.ReplaceUnsupported(s.enc.NewEncoder()))
		out = tw
	} else if s.bom {
		if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return art, errs.Wrap(errs.KindIO, "write bom", err)
		}
	}

	w := csv.NewWriter(out)
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return art, err
		}
		if err := w.Write(r); err != nil {
			return art, errs.Wrap(errs.KindIO, "write csv", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return art, errs.Wrap(errs.KindIO, "write csv", err)
	}
	if tw != nil {
		if err := tw.Close(); err != nil {
			return art, errs.Wrap(errs.KindIO, "encode csv", err)
		}
	}
	art.Rows = dataRows(rows)
	metrics.AddRows("csv", art.Rows)
	logging.Info("csv_written", map[string]any{"path": path, "rows": art.Rows, "encoding": s.name})
	return art, nil
}
