package xclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"twexport/internal/daterange"
	"twexport/internal/errs"
	"twexport/internal/logging"
	"twexport/internal/model"
)

type statusResponse struct {
	Status *string `json:"status"`
}

// ExportStatus submits (or re-submits) the export request and returns the
// job status reported by the provider.
func (s *Session) ExportStatus(ctx context.Context, account string, r daterange.Range) (model.ExportStatus, error) {
	c := s.client
	u := c.analyticsURL + "/user/" + url.PathEscape(account) + "/tweets/export.json?" + c.exportQuery(r)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return "", errs.Wrap(errs.KindTransport, "export status", err)
	}
	c.browserHeaders(req)
	req.Header.Set("Accept", "application/json")
	status, body, err := c.send(ctx, req, "export status")
	if err != nil {
		return "", err
	}
	if status >= 400 {
		return "", errs.New(errs.KindTransport, "export status", "status %d", status)
	}
	var raw statusResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", errs.Wrap(errs.KindParse, "export status", err)
	}
	if raw.Status == nil {
		return "", errs.New(errs.KindParse, "export status", "response has no status field")
	}
	return model.ExportStatus(*raw.Status), nil
}

// Bundle downloads the completed export as raw CSV text.
func (s *Session) Bundle(ctx context.Context, account string, r daterange.Range) (string, error) {
	c := s.client
	u := c.analyticsURL + "/user/" + url.PathEscape(account) + "/tweets/bundle?" + c.exportQuery(r)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", errs.Wrap(errs.KindTransport, "bundle", err)
	}
	c.browserHeaders(req)
	req.Header.Set("Content-Type", "application/csv")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	status, body, err := c.send(ctx, req, "bundle")
	if err != nil {
		return "", err
	}
	logging.Info("bundle_status", map[string]any{"status": status, "bytes": len(body), "account": account})
	if status >= 400 {
		return "", errs.New(errs.KindTransport, "bundle", "status %d", status)
	}
	return string(body), nil
}

func (c *HTTPClient) exportQuery(r daterange.Range) string {
	start, end := r.Start, r.End
	if c.swapRange {
		start, end = end, start
	}
	return url.Values{
		"start_time": {start},
		"end_time":   {end},
		"lang":       {c.lang},
	}.Encode()
}
