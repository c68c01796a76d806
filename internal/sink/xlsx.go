package sink

import (
	"context"
	"strconv"

	"github.com/xuri/excelize/v2"

	"twexport/internal/config"
	"twexport/internal/errs"
	"twexport/internal/logging"
	"twexport/internal/metrics"
	"twexport/internal/model"
)

// SheetName is the worksheet the report lands on.
const SheetName = "report"

// XLSXSink writes the header and rows to a single worksheet. Integer and
// numeric report columns are stored as numbers.
type XLSXSink struct{}

func NewXLSXSink() *XLSXSink { return &XLSXSink{} }

func (s *XLSXSink) Write(ctx context.Context, rows []model.Row, path string) (art Artifact, err error) {
	art = Artifact{Path: path, Type: config.OutputXLSX}
	if err := ensureDir(path); err != nil {
		return art, err
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return art, errs.Wrap(errs.KindIO, "xlsx sheet", err)
	}
	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return art, err
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return art, errs.Wrap(errs.KindIO, "xlsx cell", err)
		}
		vals := make([]any, len(r))
		for j, v := range r {
			if i == 0 {
				vals[j] = v
				continue
			}
			vals[j] = cellValue(j, v)
		}
		if err := f.SetSheetRow(SheetName, cell, &vals); err != nil {
			return art, errs.Wrap(errs.KindIO, "xlsx row", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return art, errs.Wrap(errs.KindIO, "save xlsx", err)
	}
	art.Rows = dataRows(rows)
	metrics.AddRows("xlsx", art.Rows)
	logging.Info("xlsx_written", map[string]any{"path": path, "rows": art.Rows})
	return art, nil
}

func cellValue(col int, v string) any {
	if col >= len(model.ReportColumns) {
		return v
	}
	switch model.ReportColumns[col].Type {
	case model.TypeInteger:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case model.TypeNumeric:
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return v
}
