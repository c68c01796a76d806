package xclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twexport/internal/errs"
	"twexport/internal/model"
)

const landingPage = `<html><body><form action="/sessions" method="post">
<input type="hidden" value="abc123XYZ" name="authenticity_token">
<input type="text" name="session[username_or_email]">
</form></body></html>`

func TestScrapeAuthenticityToken(t *testing.T) {
	tok, err := ScrapeAuthenticityToken(strings.NewReader(landingPage))
	require.NoError(t, err)
	assert.Equal(t, "abc123XYZ", tok)

	reordered := `<input name="authenticity_token" type="hidden" value="t-0k_en"/>`
	tok, err = ScrapeAuthenticityToken(strings.NewReader(reordered))
	require.NoError(t, err)
	assert.Equal(t, "t-0k_en", tok)

	_, err = ScrapeAuthenticityToken(strings.NewReader(`<input name="other" value="x">`))
	assert.Error(t, err)
}

type loginServer struct {
	page        string
	loginStatus int
	form        map[string]string
}

func (s *loginServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "guest_id", Value: "g1", Path: "/"})
		_, _ = w.Write([]byte(s.page))
	})
	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		s.form = map[string]string{}
		for k := range r.PostForm {
			s.form[k] = r.PostForm.Get(k)
		}
		if s.loginStatus >= 400 {
			w.WriteHeader(s.loginStatus)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "auth_token", Value: "sess", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func TestLoginPostsFormAndKeepsCookies(t *testing.T) {
	srv := &loginServer{page: landingPage}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	sess, err := c.Login(context.Background(), model.Credentials{Handle: "me", Secret: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "me", sess.Handle())

	assert.Equal(t, "abc123XYZ", srv.form["authenticity_token"])
	assert.Equal(t, "me", srv.form["session[username_or_email]"])
	assert.Equal(t, "pw", srv.form["session[password]"])
	assert.Equal(t, "1", srv.form["remember_me"])
	assert.Equal(t, "true", srv.form["return_to_ssl"])
	assert.Equal(t, "/", srv.form["redirect_after_login"])

	names := map[string]bool{}
	for _, ck := range sess.Cookies() {
		names[ck.Name] = true
	}
	assert.True(t, names["auth_token"])
}

func TestLoginFailures(t *testing.T) {
	srv := &loginServer{page: "<html>no form</html>"}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()
	c := newTestClient(t, ts.URL)

	_, err := c.Login(context.Background(), model.Credentials{Handle: "me", Secret: "pw"})
	assert.True(t, errors.Is(err, errs.ErrAuth), "missing token: %v", err)

	srv.page = landingPage
	srv.loginStatus = http.StatusForbidden
	_, err = c.Login(context.Background(), model.Credentials{Handle: "me", Secret: "pw"})
	assert.True(t, errors.Is(err, errs.ErrAuth), "rejected login: %v", err)

	_, err = c.Login(context.Background(), model.Credentials{Handle: "me"})
	assert.True(t, errors.Is(err, errs.ErrAuth), "empty secret: %v", err)
}
