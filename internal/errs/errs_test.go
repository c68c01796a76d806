package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := Wrap(KindPollTimeout, "poll", context.DeadlineExceeded)
	wrapped := fmt.Errorf("run: %w", base)

	assert.Equal(t, KindPollTimeout, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, ErrPollTimeout))
	assert.False(t, errors.Is(wrapped, ErrAuth))
	assert.True(t, errors.Is(wrapped, context.DeadlineExceeded))
	assert.Equal(t, 5, ExitCode(wrapped))
}

func TestNewCarriesCodeAndCorrelation(t *testing.T) {
	e := New(KindSchemaMismatch, "insert", "row %d has %d fields", 3, 38)
	require.NotNil(t, e)
	assert.Equal(t, CodeSchemaMismatch, e.Code)
	assert.NotEmpty(t, e.CorrelationID)
	assert.Equal(t, "schema_mismatch: insert: row 3 has 38 fields", e.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(KindIO, "open", nil))
}

func TestExitCodes(t *testing.T) {
	cases := map[Kind]int{
		KindConfig: 2, KindAuth: 3, KindTransport: 4, KindPollTimeout: 5,
		KindExportFailed: 6, KindParse: 7, KindSchemaMismatch: 8, KindIO: 9,
	}
	for k, want := range cases {
		assert.Equal(t, want, ExitCode(Wrap(k, "op", errors.New("x"))), string(k))
	}
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("plain")))
}
