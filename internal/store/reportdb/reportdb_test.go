package reportdb

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twexport/internal/errs"
	"twexport/internal/model"
)

func sampleRow(id int) model.Row {
	r := make(model.Row, len(model.ReportColumns))
	for i, c := range model.ReportColumns {
		switch c.Type {
		case model.TypeInteger:
			r[i] = strconv.Itoa(i)
		case model.TypeNumeric:
			r[i] = "0.25"
		default:
			r[i] = c.Name
		}
	}
	r[0] = strconv.Itoa(id)
	return r
}

func TestResetInsertAndLoad(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "r.db"))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	assert.Equal(t, model.ReportColumns, db.Columns())
	require.NoError(t, db.Reset(ctx))
	require.NoError(t, db.InsertRow(ctx, sampleRow(1)))
	require.NoError(t, db.InsertRow(ctx, sampleRow(2)))
	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := db.Load(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2", rows[1][0])
	assert.Equal(t, "4", rows[0][4])

	require.NoError(t, db.Reset(ctx))
	n, err = db.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInsertRowRejectsWrongWidth(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()
	require.NoError(t, db.Reset(ctx))

	short := sampleRow(1)[:len(model.ReportColumns)-1]
	err = db.InsertRow(ctx, short)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrSchemaMismatch))
	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
