package theme

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"twexport/internal/errs"
)

func TestBannerAndDone(t *testing.T) {
	if !strings.Contains(Banner(), "twexport") {
		t.Fatalf("banner missing name: %q", Banner())
	}
	var buf bytes.Buffer
	Done(&buf, "CSV", "/out/twitter_data_1_2.csv", 3)
	out := buf.String()
	if !strings.Contains(out, "/out/twitter_data_1_2.csv") || !strings.Contains(out, "(3 rows)") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestFailShowsCodeAndCorrelation(t *testing.T) {
	var buf bytes.Buffer
	e := errs.New(errs.KindPollTimeout, "poll export", "still pending after %d attempts", 60)
	failTo(&buf, fmt.Errorf("export: %w", e))
	out := buf.String()
	if !strings.Contains(out, errs.CodePollTimeout) || !strings.Contains(out, e.CorrelationID) {
		t.Fatalf("missing code or correlation id: %q", out)
	}

	buf.Reset()
	failTo(&buf, errors.New("plain"))
	if strings.Contains(buf.String(), "correlation") || !strings.Contains(buf.String(), "plain") {
		t.Fatalf("unexpected plain output: %q", buf.String())
	}
}
