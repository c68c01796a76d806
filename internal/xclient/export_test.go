package xclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twexport/internal/daterange"
	"twexport/internal/errs"
	"twexport/internal/model"
)

func TestExportStatusSwapsRangeParams(t *testing.T) {
	var got *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = w.Write([]byte(`{"status":"Pending"}`))
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	c.swapRange = true
	r := daterange.Compute(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), 30)
	sess := &Session{client: c, handle: "me"}

	st, err := sess.ExportStatus(context.Background(), "brand", r)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, st)
	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/user/brand/tweets/export.json", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, r.End, q.Get("start_time"))
	assert.Equal(t, r.Start, q.Get("end_time"))
	assert.Equal(t, "en", q.Get("lang"))

	c.swapRange = false
	_, err = sess.ExportStatus(context.Background(), "brand", r)
	require.NoError(t, err)
	assert.Equal(t, r.Start, got.URL.Query().Get("start_time"))
}

func TestExportStatusParseFailures(t *testing.T) {
	body := "not json"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer ts.Close()
	sess := &Session{client: newTestClient(t, ts.URL)}
	r := daterange.Compute(time.Now(), 7)

	_, err := sess.ExportStatus(context.Background(), "me", r)
	assert.True(t, errors.Is(err, errs.ErrParse), "%v", err)

	body = `{"state":"Pending"}`
	_, err = sess.ExportStatus(context.Background(), "me", r)
	assert.True(t, errors.Is(err, errs.ErrParse), "%v", err)
}

func TestBundleSendsExportHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/me/tweets/bundle" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "application/csv", r.Header.Get("Content-Type"))
		assert.Equal(t, "1", r.Header.Get("Upgrade-Insecure-Requests"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		_, _ = w.Write([]byte("\"Tweet id\",\"Tweet text\"\n\"1\",\"hi\"\n"))
	}))
	defer ts.Close()
	sess := &Session{client: newTestClient(t, ts.URL)}

	raw, err := sess.Bundle(context.Background(), "me", daterange.Compute(time.Now(), 7))
	require.NoError(t, err)
	assert.Contains(t, raw, `"Tweet id"`)

	_, err = sess.Bundle(context.Background(), "someone-else", daterange.Compute(time.Now(), 7))
	assert.True(t, errors.Is(err, errs.ErrTransport), "%v", err)
}
