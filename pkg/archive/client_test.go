package archive

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ao3wrapped/pkg/errors"
	"ao3wrapped/pkg/logger"
)

const testBase = "https://archive.test"

const loginPageHTML = `<html>
<head><meta name="csrf-token" content="tok-abc123"/></head>
<body><form action="/users/login"></form></body>
</html>`

const loggedInHTML = `<html>
<body>
<div class="flash notice">Successfully logged in.</div>
<a href="/users/reader/logout">Log Out</a>
</body>
</html>`

const rejectedFlashHTML = `<html>
<body>
<div class="flash error">The password or user name you entered doesn't match our records.</div>
<form action="/users/login"></form>
</body>
</html>`

const anonymousHTML = `<html>
<body><a href="/users/login">Log In</a></body>
</html>`

const listingPageHTML = `<html>
<body>
<ol class="reading work index group">
  <li class="reading work blurb group work-101" role="article"></li>
  <li class="reading work blurb group work-102" role="article"></li>
</ol>
</body>
</html>`

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()

	if cfg.BaseURL == "" {
		cfg.BaseURL = testBase
	}
	client := NewClient(cfg, logger.NewNopLogger())

	httpmock.ActivateNonDefault(client.http.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)

	return client
}

func TestLoginSuccess(t *testing.T) {
	client := newTestClient(t, Config{})

	httpmock.RegisterResponder("GET", testBase+"/users/login",
		httpmock.NewStringResponder(200, loginPageHTML))

	var (
		gotForm    url.Values
		gotReferer string
		gotOrigin  string
	)
	httpmock.RegisterResponder("POST", testBase+"/users/login",
		func(req *http.Request) (*http.Response, error) {
			if err := req.ParseForm(); err != nil {
				return nil, err
			}
			gotForm = req.PostForm
			gotReferer = req.Header.Get("Referer")
			gotOrigin = req.Header.Get("Origin")
			return httpmock.NewStringResponse(200, loggedInHTML), nil
		})

	session, err := client.Login(context.Background(), Credentials{
		Username: "reader",
		Password: "hunter2",
	})
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "reader", session.Username)

	assert.Equal(t, "✓", gotForm.Get("utf8"))
	assert.Equal(t, "tok-abc123", gotForm.Get("authenticity_token"))
	assert.Equal(t, "reader", gotForm.Get("user[login]"))
	assert.Equal(t, "hunter2", gotForm.Get("user[password]"))
	assert.Equal(t, "Log in", gotForm.Get("commit"))
	assert.Equal(t, testBase+"/users/login", gotReferer)
	assert.Equal(t, testBase, gotOrigin)
}

func TestLoginMissingCSRFToken(t *testing.T) {
	client := newTestClient(t, Config{})

	httpmock.RegisterResponder("GET", testBase+"/users/login",
		httpmock.NewStringResponder(200, `<html><head></head><body></body></html>`))

	session, err := client.Login(context.Background(), Credentials{Username: "reader"})
	require.Error(t, err)
	assert.Nil(t, session)
	assert.Equal(t, errors.ErrorTypeAuth, errors.GetType(err))
	assert.Contains(t, err.Error(), "csrf token")
}

func TestLoginPageServerError(t *testing.T) {
	client := newTestClient(t, Config{})

	httpmock.RegisterResponder("GET", testBase+"/users/login",
		httpmock.NewStringResponder(503, "maintenance"))

	_, err := client.Login(context.Background(), Credentials{Username: "reader"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeServerError, errors.GetType(err))
}

func TestLoginRejectedStatus(t *testing.T) {
	client := newTestClient(t, Config{})

	httpmock.RegisterResponder("GET", testBase+"/users/login",
		httpmock.NewStringResponder(200, loginPageHTML))
	httpmock.RegisterResponder("POST", testBase+"/users/login",
		httpmock.NewStringResponder(422, "rejected"))

	_, err := client.Login(context.Background(), Credentials{Username: "reader"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeAuth, errors.GetType(err))
	assert.True(t, errors.IsFatal(err))
}

func TestLoginRejectedFlashError(t *testing.T) {
	client := newTestClient(t, Config{})

	httpmock.RegisterResponder("GET", testBase+"/users/login",
		httpmock.NewStringResponder(200, loginPageHTML))
	httpmock.RegisterResponder("POST", testBase+"/users/login",
		httpmock.NewStringResponder(200, rejectedFlashHTML))

	_, err := client.Login(context.Background(), Credentials{
		Username: "reader",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeAuth, errors.GetType(err))
	assert.Contains(t, err.Error(), "password or user name")
}

func TestLoginNotConfirmed(t *testing.T) {
	client := newTestClient(t, Config{})

	httpmock.RegisterResponder("GET", testBase+"/users/login",
		httpmock.NewStringResponder(200, loginPageHTML))
	httpmock.RegisterResponder("POST", testBase+"/users/login",
		httpmock.NewStringResponder(200, anonymousHTML))

	_, err := client.Login(context.Background(), Credentials{Username: "reader"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeAuth, errors.GetType(err))
	assert.Contains(t, err.Error(), "not confirmed")
}

func TestLoginPauseHonorsContext(t *testing.T) {
	client := newTestClient(t, Config{LoginPause: time.Minute})

	httpmock.RegisterResponder("GET", testBase+"/users/login",
		httpmock.NewStringResponder(200, loginPageHTML))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Login(ctx, Credentials{Username: "reader"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetchHistoryPage(t *testing.T) {
	client := newTestClient(t, Config{})
	session := &Session{client: client, Username: "reader"}

	httpmock.RegisterResponderWithQuery("GET", testBase+"/users/reader/readings",
		"page=2", httpmock.NewStringResponder(200, listingPageHTML))

	doc, err := session.FetchHistoryPage(context.Background(), "readings", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Find("ol.reading.work.index.group li").Length())
}

func TestFetchHistoryPageServerError(t *testing.T) {
	client := newTestClient(t, Config{})
	session := &Session{client: client, Username: "reader"}

	httpmock.RegisterResponderWithQuery("GET", testBase+"/users/reader/readings",
		"page=1", httpmock.NewStringResponder(500, "boom"))

	_, err := session.FetchHistoryPage(context.Background(), "readings", 1)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeServerError, errors.GetType(err))
	assert.True(t, errors.IsRetryable(errors.GetType(err)))
}

func TestFetchHistoryPageRateLimited(t *testing.T) {
	client := newTestClient(t, Config{})
	session := &Session{client: client, Username: "reader"}

	httpmock.RegisterResponderWithQuery("GET", testBase+"/users/reader/readings",
		"page=1", httpmock.NewStringResponder(429, "slow down"))

	_, err := session.FetchHistoryPage(context.Background(), "readings", 1)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeRateLimit, errors.GetType(err))
	assert.True(t, errors.IsRetryable(errors.GetType(err)))
}

func TestFetchHistoryPageNotFound(t *testing.T) {
	client := newTestClient(t, Config{})
	session := &Session{client: client, Username: "reader"}

	httpmock.RegisterResponderWithQuery("GET", testBase+"/users/reader/readings",
		"page=1", httpmock.NewStringResponder(404, "no such user"))

	_, err := session.FetchHistoryPage(context.Background(), "readings", 1)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))
	assert.False(t, errors.IsRetryable(errors.GetType(err)))
}
