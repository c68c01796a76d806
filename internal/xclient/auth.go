package xclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"twexport/internal/errs"
	"twexport/internal/logging"
	"twexport/internal/model"
)

const authenticityTokenField = "authenticity_token"

var errTokenNotFound = errors.New("authenticity_token input not found")

// Session is an authenticated dashboard conversation. Its cookies live in the
// client's jar for the rest of the run.
type Session struct {
	client *HTTPClient
	handle string
}

func (s *Session) Handle() string { return s.handle }

// Cookies returns the cookies the session would send to the analytics host.
func (s *Session) Cookies() []*http.Cookie {
	u, err := url.Parse(s.client.analyticsURL)
	if err != nil {
		return nil
	}
	return s.client.httpClient.Jar.Cookies(u)
}

// Login fetches the landing page, scrapes the CSRF token and posts the
// session form.
func (c *HTTPClient) Login(ctx context.Context, creds model.Credentials) (*Session, error) {
	if creds.Handle == "" || creds.Secret == "" {
		return nil, errs.New(errs.KindAuth, "login", "missing handle or secret")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindTransport, "login page", err)
	}
	c.browserHeaders(req)
	status, body, err := c.send(ctx, req, "login page")
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, errs.New(errs.KindTransport, "login page", "status %d", status)
	}
	token, err := ScrapeAuthenticityToken(bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.KindAuth, "scrape token", err)
	}

	form := url.Values{
		"session[username_or_email]": {creds.Handle},
		"session[password]":          {creds.Secret},
		"remember_me":                {"1"},
		"return_to_ssl":              {"true"},
		"scribe_log":                 {""},
		"redirect_after_login":       {"/"},
		authenticityTokenField:       {token},
	}
	req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errs.Wrap(errs.KindTransport, "login", err)
	}
	c.browserHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	status, _, err = c.send(ctx, req, "login")
	if err != nil {
		return nil, err
	}
	logging.Info("login_status", map[string]any{"status": status, "handle": creds.Handle})
	if status >= 400 {
		return nil, errs.New(errs.KindAuth, "login", "status %d", status)
	}
	return &Session{client: c, handle: creds.Handle}, nil
}

// ScrapeAuthenticityToken returns the value of the first
// <input name="authenticity_token"> in r, whatever the attribute order.
func ScrapeAuthenticityToken(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return "", err
			}
			return "", errTokenNotFound
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "input" {
				continue
			}
			var name, value string
			for _, a := range tok.Attr {
				switch a.Key {
				case "name":
					name = a.Val
				case "value":
					value = a.Val
				}
			}
			if name == authenticityTokenField && value != "" {
				return value, nil
			}
		}
	}
}
