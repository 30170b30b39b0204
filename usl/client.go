package usl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the public USL site
	DefaultBaseURL = "https://universalscammerlist.com/"
	// DefaultUserAgent is what net/http sends when no User-Agent is set.
	// It is the fallback for an empty identification string unless
	// WithDefaultUserAgent supplies another, and like any other value it
	// must pass ValidateUserAgent.
	DefaultUserAgent = "Go-http-client/1.1"
	// DefaultTimeout bounds every request made by the default HTTP client
	DefaultTimeout = 30 * time.Second
	// DefaultBulkLimit is the page size BulkQuery2 uses when none is given
	DefaultBulkLimit = 250

	sessionCookie = "session_id"
	maxBodySize   = 64 << 20

	loginEndpoint  = "api/login.php"
	logoutEndpoint = "logout.php"
	queryEndpoint  = "api/query.php"
	bulkEndpoint   = "api/bulk_query.php"
)

// Client is a USL API client
type Client struct {
	siteURL    *url.URL
	userAgent  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new USL client.
//
// userAgent identifies the caller to the site and must start with "bot" for
// automated processes or "interface" for alternative frontends. It should also
// name a reddit user or an email address. An empty userAgent falls back to
// the WithDefaultUserAgent value, or to DefaultUserAgent, which is rejected.
func NewClient(userAgent string, opts ...Option) (*Client, error) {
	o := clientOptions{
		baseURL:          DefaultBaseURL,
		defaultUserAgent: DefaultUserAgent,
		timeout:          DefaultTimeout,
		logger:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if userAgent == "" {
		userAgent = o.defaultUserAgent
	}
	if err := ValidateUserAgent(userAgent); err != nil {
		return nil, err
	}

	siteURL, err := url.Parse(o.baseURL)
	if err != nil || siteURL.Scheme == "" || siteURL.Host == "" {
		return nil, clientError("invalid base URL %q", o.baseURL)
	}
	// Endpoints resolve relative to the site root
	if !strings.HasSuffix(siteURL.Path, "/") {
		siteURL.Path += "/"
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
		httpClient.Timeout = o.timeout
	}

	return &Client{
		siteURL:    siteURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     o.logger,
	}, nil
}

// ValidateUserAgent checks the identification string prefix rule
func ValidateUserAgent(userAgent string) error {
	if strings.HasPrefix(userAgent, "bot") || strings.HasPrefix(userAgent, "interface") {
		return nil
	}
	return clientError("user agent %q must start with 'bot' for an automated process or 'interface' "+
		"for an alternative to the website frontend, and should include your reddit username or email", userAgent)
}

// UserAgent returns the identification string sent with every request
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Login exchanges credentials for a session. An empty duration means DurationForever.
func (c *Client) Login(ctx context.Context, username, password string, duration Duration) (*Session, error) {
	if duration == "" {
		duration = DurationForever
	}
	if !duration.Valid() {
		return nil, clientError("invalid session duration %q (must be 1day, 30days or forever)", duration)
	}

	form := url.Values{
		"username": {username},
		"password": {password},
		"duration": {string(duration)},
	}

	resp, body, err := c.doRequest(ctx, http.MethodPost, loginEndpoint, nil, form, nil)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if _, err := unwrapEnvelope(resp.StatusCode, body); err != nil {
		return nil, err
	}

	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookie {
			cookie = ck
			break
		}
	}
	if cookie == nil || cookie.Value == "" {
		return nil, malformedError("got success response from login but no session_id cookie was set", body)
	}

	c.logger.Debug().Str("username", username).Msg("Logged in to USL")

	return &Session{
		Username:  username,
		Token:     cookie.Value,
		ExpiresAt: cookieExpiry(cookie, time.Now()),
	}, nil
}

// Logout invalidates the session on the server. The returned session keeps
// the username but has no token or expiry; s itself is left untouched.
func (c *Client) Logout(ctx context.Context, s *Session) (*Session, error) {
	if err := requireSession(s); err != nil {
		return nil, err
	}

	resp, body, err := c.doRequest(ctx, http.MethodPost, logoutEndpoint, nil, nil, s)
	if err != nil {
		return nil, fmt.Errorf("logout: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError("got bad status code from logout page", resp.StatusCode, body)
	}

	c.logger.Debug().Str("username", s.Username).Msg("Logged out of USL")

	out := s.invalidated()
	return &out, nil
}

// Query looks up a single person and returns the raw data of the envelope.
//
// query may contain the site's wildcard syntax and is passed through as is.
// A nil or empty hashtags slice both mean WhitelistedHashtags, since the
// endpoint has no meaning for an empty hashtag list. Other tags need
// elevated permission on the account, which the site enforces.
func (c *Client) Query(ctx context.Context, s *Session, query string, format Format, hashtags []string) (json.RawMessage, error) {
	if err := requireSession(s); err != nil {
		return nil, err
	}
	if format != FormatSimple && format != FormatHistory {
		return nil, clientError("invalid query format %d (must be 1 or 2)", format)
	}
	if len(hashtags) == 0 {
		hashtags = WhitelistedHashtags
	}

	params := url.Values{
		"format":   {strconv.Itoa(int(format))},
		"hashtags": {strings.Join(hashtags, ",")},
		"query":    {query},
	}

	return c.getData(ctx, queryEndpoint, params, s)
}

// Check queries in FormatSimple and decodes the result
func (c *Client) Check(ctx context.Context, s *Session, query string, hashtags []string) (*BanStatus, error) {
	data, err := c.Query(ctx, s, query, FormatSimple, hashtags)
	if err != nil {
		return nil, err
	}

	var status BanStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, malformedError(fmt.Sprintf("cannot decode query result: %v", err), data)
	}
	return &status, nil
}

// History queries in FormatHistory
func (c *Client) History(ctx context.Context, s *Session, query string, hashtags []string) (json.RawMessage, error) {
	return c.Query(ctx, s, query, FormatHistory, hashtags)
}

// BulkQuery performs a version 1 bulk listing. The session is optional; its
// cookie is sent when present. Bans are never removed from these listings, so
// callers that mirror the list should restart from scratch periodically.
func (c *Client) BulkQuery(ctx context.Context, s *Session, p BulkParams) (json.RawMessage, error) {
	if p.Since != nil && p.Offset == nil {
		return nil, clientError("bulk query with since requires an offset")
	}
	if p.Offset != nil && *p.Offset < 0 {
		return nil, clientError("bulk query offset must not be negative, got %d", *p.Offset)
	}

	params := url.Values{}
	if p.Offset != nil {
		params.Set("offset", strconv.Itoa(*p.Offset))
	}
	if p.Since != nil {
		params.Set("since", strconv.FormatInt(int64(*p.Since), 10))
	}

	return c.getData(ctx, bulkEndpoint, params, s)
}

// Grandfathered returns the users banned before per-ban tracking existed
func (c *Client) Grandfathered(ctx context.Context, s *Session) ([]BanRecord, error) {
	data, err := c.BulkQuery(ctx, s, BulkParams{})
	if err != nil {
		return nil, err
	}

	var records []BanRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, malformedError(fmt.Sprintf("cannot decode grandfathered list: %v", err), data)
	}
	return records, nil
}

// BulkQuery2 fetches one page of the version 2 bulk listing, which covers
// WhitelistedHashtags only. A limit of zero or less means DefaultBulkLimit.
func (c *Client) BulkQuery2(ctx context.Context, s *Session, startID int64, limit int) (*BulkPage, error) {
	if startID < 0 {
		return nil, clientError("bulk query start_id must not be negative, got %d", startID)
	}
	if limit <= 0 {
		limit = DefaultBulkLimit
	}

	params := url.Values{
		"version":  {"2"},
		"start_id": {strconv.FormatInt(startID, 10)},
		"limit":    {strconv.Itoa(limit)},
	}

	data, err := c.getData(ctx, bulkEndpoint, params, s)
	if err != nil {
		return nil, err
	}

	var page BulkPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, malformedError(fmt.Sprintf("cannot decode bulk page: %v", err), data)
	}
	return &page, nil
}

// getData performs a GET and unwraps the envelope
func (c *Client) getData(ctx context.Context, endpoint string, params url.Values, s *Session) (json.RawMessage, error) {
	resp, body, err := c.doRequest(ctx, http.MethodGet, endpoint, params, nil, s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	return unwrapEnvelope(resp.StatusCode, body)
}

// doRequest performs an HTTP request and reads the whole body
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params, form url.Values, s *Session) (*http.Response, []byte, error) {
	u := c.siteURL.ResolveReference(&url.URL{Path: endpoint})
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if s != nil && s.Valid() {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: s.Token})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Msg("USL API request")

	return resp, body, nil
}

// unwrapEnvelope is the single success check every JSON endpoint goes through
func unwrapEnvelope(status int, body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if status < 200 || status >= 300 {
			return nil, statusError("unexpected status code", status, body)
		}
		return nil, malformedError(fmt.Sprintf("response is not a JSON envelope: %v", err), body)
	}
	if env.Success == nil {
		return nil, malformedError("response envelope has no success field", body)
	}
	if !*env.Success {
		return nil, apiError(env.ErrorType, env.ErrorMessage)
	}
	return env.Data, nil
}

func requireSession(s *Session) error {
	if s == nil {
		return clientError("no session; log in first")
	}
	if !s.Valid() {
		return clientError("session for %q has no token; log in again", s.Username)
	}
	return nil
}

// cookieExpiry prefers Max-Age over Expires, as browsers do
func cookieExpiry(c *http.Cookie, now time.Time) time.Time {
	if c.MaxAge > 0 {
		return now.Add(time.Duration(c.MaxAge) * time.Second).UTC()
	}
	if !c.Expires.IsZero() {
		return c.Expires.UTC()
	}
	return time.Time{}
}
