package xclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"twexport/internal/config"
	"twexport/internal/errs"
	"twexport/internal/metrics"
)

// Options configures the dashboard client.
type Options struct {
	BaseURL         string
	AnalyticsURL    string
	UserAgent       string
	Timeout         time.Duration
	RPS             float64
	Burst           int
	MaxAttempts     int
	BaseBackoff     time.Duration
	Lang            string
	SwapRangeParams bool
}

// OptionsFromConfig maps the http and export sections of cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		BaseURL:         cfg.HTTP.BaseURL,
		AnalyticsURL:    cfg.HTTP.AnalyticsURL,
		UserAgent:       cfg.HTTP.UserAgent,
		Timeout:         cfg.HTTP.Timeout,
		RPS:             cfg.HTTP.RPS,
		Burst:           cfg.HTTP.Burst,
		MaxAttempts:     cfg.HTTP.MaxAttempts,
		BaseBackoff:     cfg.HTTP.BaseBackoff,
		Lang:            cfg.Export.Lang,
		SwapRangeParams: cfg.Export.SwapRangeParams,
	}
}

// HTTPClient talks to the web dashboard with a cookie-backed session.
type HTTPClient struct {
	baseURL      string
	analyticsURL string
	userAgent    string
	lang         string
	swapRange    bool
	httpClient   *http.Client
	limiter      *rate.Limiter
	maxAttempts  int
	baseBackoff  time.Duration
}

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}
	if opts.Lang == "" {
		opts.Lang = "en"
	}
	return &HTTPClient{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		analyticsURL: strings.TrimRight(opts.AnalyticsURL, "/"),
		userAgent:    opts.UserAgent,
		lang:         opts.Lang,
		swapRange:    opts.SwapRangeParams,
		httpClient:   &http.Client{Timeout: opts.Timeout, Jar: jar},
		limiter:      newLimiter(opts.RPS, opts.Burst),
		maxAttempts:  opts.MaxAttempts,
		baseBackoff:  opts.BaseBackoff,
	}, nil
}

// send waits on the limiter, retries, and reads the whole body.
func (c *HTTPClient) send(ctx context.Context, req *http.Request, op string) (int, []byte, error) {
	if err := waitToken(ctx, c.limiter); err != nil {
		return 0, nil, errs.Wrap(errs.KindTransport, op, err)
	}
	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return 0, nil, errs.Wrap(errs.KindTransport, op, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errs.Wrap(errs.KindTransport, op, err)
	}
	return resp.StatusCode, body, nil
}

func (c *HTTPClient) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	backoff := c.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			metrics.IncAPIRetry(req.URL.Path)
		}
		r := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			r.Body = body
		}
		resp, err := c.httpClient.Do(r)
		if err == nil {
			if attempt < c.maxAttempts && (resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599)) {
				ra := resp.Header.Get("Retry-After")
				_ = resp.Body.Close()
				wait := backoff
				if ra != "" {
					if secs, err := strconv.Atoi(ra); err == nil {
						wait = time.Duration(secs) * time.Second
					} else if t, err := http.ParseTime(ra); err == nil {
						if d := time.Until(t); d > 0 {
							wait = d
						}
					}
				}
				// jitter +/-20%
				jitter := time.Duration(float64(wait) * 0.2)
				if jitter > 0 {
					wait = wait - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter))
				}
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				backoff *= 2
				continue
			}
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, err
		}
		if attempt == c.maxAttempts {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *HTTPClient) browserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")
}
