// Package report turns the tweet activity export into rows.
package report

import (
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strings"

	"twexport/internal/errs"
	"twexport/internal/model"
	"twexport/internal/util"
)

const utf8BOM = "\ufeff"

// quoted fields separated by a comma with stray blanks on either side
var looseSeparator = regexp.MustCompile(`"[ \t]*,[ \t]*"`)

// Parse reads raw as RFC 4180 CSV. Quoted fields may contain commas, doubled
// quotes and newlines, and blanks around the separating comma are tolerated.
// Rows may differ in width; schema checks belong to the sink. Row 0 is the
// header. Stray quotes are rejected rather than guessed at.
func Parse(raw string) ([]model.Row, error) {
	raw = strings.TrimPrefix(raw, utf8BOM)
	if strings.TrimSpace(raw) == "" {
		return []model.Row{}, nil
	}
	rows, err := readRows(raw)
	if errors.Is(err, csv.ErrQuote) || errors.Is(err, csv.ErrBareQuote) {
		if loose := looseSeparator.ReplaceAllString(raw, `","`); loose != raw {
			rows, err = readRows(loose)
		}
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindParse, "parse rows", err)
	}
	return rows, nil
}

func readRows(raw string) ([]model.Row, error) {
	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var rows []model.Row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, model.Row(rec))
	}
}

// Header returns row 0, or nil.
func Header(rows []model.Row) model.Row {
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

// Body returns every row after the header.
func Body(rows []model.Row) []model.Row {
	if len(rows) < 2 {
		return nil
	}
	return rows[1:]
}

// HeaderKeys maps header labels to column keys.
func HeaderKeys(header model.Row) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = util.ColumnKey(h)
	}
	return out
}

// HeaderDiff lists positions where header keys differ from want.
func HeaderDiff(header model.Row, want []string) []int {
	keys := HeaderKeys(header)
	var diff []int
	for i := 0; i < max(len(keys), len(want)); i++ {
		if i >= len(keys) || i >= len(want) || keys[i] != want[i] {
			diff = append(diff, i)
		}
	}
	return diff
}
