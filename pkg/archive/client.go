package archive

import (
	"bytes"
	"context"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"ao3wrapped/pkg/errors"
	"ao3wrapped/pkg/logger"
)

// Credentials is the username/password pair used for the archive login
type Credentials struct {
	Username string
	Password string
}

// Config carries the transport settings for a Client. Zero values fall
// back to the archive defaults, except LoginPause where zero means no
// pause (tests rely on that).
type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	LoginPause time.Duration
}

// Client talks to the archive. One Client owns the cookie jar shared by
// the login flow and every later history fetch; cookies are written during
// Login and only read afterwards.
type Client struct {
	http       *resty.Client
	base       string
	loginPause time.Duration
	logger     logger.Logger
}

// NewClient builds a cookie-carrying archive client
func NewClient(cfg Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	base := cfg.BaseURL
	if base == "" {
		base = BaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(base)
	client.SetHeader("User-Agent", userAgent)
	client.SetTimeout(timeout)

	// The login flow depends on response cookies surviving redirects.
	jar, err := cookiejar.New(nil)
	if err == nil {
		client.SetCookieJar(jar)
	}
	if u, err := url.Parse(base); err == nil && u.Hostname() != "" {
		client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(u.Hostname()))
	}

	return &Client{
		http:       client,
		base:       base,
		loginPause: cfg.LoginPause,
		logger:     log.WithField("component", "archive"),
	}
}

// Session is an authenticated handle on the archive, bound to the username
// whose listing pages it fetches.
type Session struct {
	client   *Client
	Username string
}

// Login acquires the anti-forgery token from the login page, posts the
// credential form and verifies the archive accepted it. Every failure here
// is fatal to the run.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	c.logger.Debug("fetching login page")

	res, err := c.http.R().SetContext(ctx).Get(LoginEndpoint)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: "failed to fetch login page: " + err.Error(),
		}
	}
	if !res.IsSuccess() {
		return nil, c.statusError(res, "login page")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: "failed to parse login page: " + err.Error(),
			Code:    res.StatusCode(),
		}
	}

	token := doc.Find(CSRFSelector).AttrOr("content", "")
	if token == "" {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: "login page carries no csrf token",
			Code:    res.StatusCode(),
		}
	}
	c.logger.Debug("csrf token acquired")

	// Courtesy pause between the token fetch and the credential post.
	if c.loginPause > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.loginPause):
		}
	}

	res, err = c.http.R().
		SetContext(ctx).
		SetHeader("Referer", LoginURL(c.base)).
		SetHeader("Origin", c.base).
		SetFormData(map[string]string{
			"utf8":               "✓",
			"authenticity_token": token,
			"user[login]":        creds.Username,
			"user[password]":     creds.Password,
			"commit":             "Log in",
		}).
		Post(LoginEndpoint)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: "login request failed: " + err.Error(),
		}
	}
	if !res.IsSuccess() {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: "login rejected with status " + res.Status(),
			Code:    res.StatusCode(),
		}
	}

	if err := verifyLoggedIn(res.Body()); err != nil {
		return nil, err
	}

	c.logger.WithField("username", creds.Username).Info("logged in")

	return &Session{client: c, Username: creds.Username}, nil
}

// verifyLoggedIn inspects the post-login document. A rejected login still
// answers 200 with the form re-rendered, so the flash notice and the
// logout link are the reliable signals.
func verifyLoggedIn(body []byte) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: "failed to parse post-login page: " + err.Error(),
		}
	}

	if flash := strings.TrimSpace(doc.Find("div.flash.error").Text()); flash != "" {
		return &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: "login rejected: " + flash,
		}
	}
	if doc.Find(`a[href*="logout"]`).Length() == 0 {
		return &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: "login not confirmed by the archive",
		}
	}
	return nil
}

// FetchHistoryPage fetches one page of the session user's listing and
// returns the parsed document. Transport failures and non-2xx statuses
// come back as typed errors the controller can retry on.
func (s *Session) FetchHistoryPage(ctx context.Context, listing string, page int) (*goquery.Document, error) {
	c := s.client

	start := time.Now()
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		Get(HistoryPath(s.Username, listing))
	if err != nil {
		c.logger.ErrorWithFields("history page fetch failed", map[string]interface{}{
			"page":  page,
			"error": err.Error(),
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: "history page fetch failed: " + err.Error(),
		}
	}

	c.logger.DebugWithFields("history page fetched", map[string]interface{}{
		"page":        page,
		"status":      res.StatusCode(),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if !res.IsSuccess() {
		return nil, c.statusError(res, "history page")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: "failed to parse history page: " + err.Error(),
			Code:    res.StatusCode(),
		}
	}
	return doc, nil
}

// statusError maps a non-2xx response to a typed error
func (c *Client) statusError(res *resty.Response, what string) error {
	status := res.StatusCode()

	fields := map[string]interface{}{
		"status": status,
		"url":    res.Request.URL,
	}

	switch {
	case status == 429:
		c.logger.WarnWithFields("rate limited by the archive", fields)
		return &errors.Error{
			Type:    errors.ErrorTypeRateLimit,
			Message: what + ": rate limit exceeded",
			Code:    status,
		}
	case status == 404:
		c.logger.WarnWithFields("resource not found", fields)
		return &errors.Error{
			Type:    errors.ErrorTypeNotFound,
			Message: what + ": not found",
			Code:    status,
		}
	case status >= 500:
		c.logger.WarnWithFields("archive server error", fields)
		return &errors.Error{
			Type:    errors.ErrorTypeServerError,
			Message: what + ": server error",
			Code:    status,
		}
	default:
		c.logger.WarnWithFields("unexpected response status", fields)
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: what + ": unexpected status " + res.Status(),
			Code:    status,
		}
	}
}
