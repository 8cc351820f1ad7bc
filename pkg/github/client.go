package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v68/github"

	"gharchiver/pkg/config"
	errs "gharchiver/pkg/errors"
	"gharchiver/pkg/logger"
	"gharchiver/pkg/ratelimit"
)

// APIVersion is sent as X-GitHub-Api-Version on every API call
const APIVersion = "2022-11-28"

// Request describes one GET. URL may be absolute or relative to the API base;
// Query is merged into whatever query URL already carries.
type Request struct {
	URL    string
	Query  url.Values
	Header http.Header
}

// Response is a fully read API response
type Response struct {
	// URL is the absolute URL that was requested
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	// NextURL is the rel="next" target of the Link header, if any
	NextURL string
	// HasLinks reports whether the response carried a Link header at all
	HasLinks bool
}

// Client performs GitHub API calls and binary downloads
type Client struct {
	gh       *gh.Client
	download *http.Client
	token    string
	pacer    ratelimit.Limiter
	logger   logger.Logger
}

// NewClient builds a Client for cfg. pacer throttles API calls (downloads
// are paced by the caller); nil means unpaced.
func NewClient(cfg config.GitHubConfig, pacer ratelimit.Limiter, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if pacer == nil {
		pacer = ratelimit.Unlimited{}
	}

	base, err := url.Parse(cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", cfg.APIURL, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	client := gh.NewClient(&http.Client{Timeout: cfg.Timeout})
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}
	client.BaseURL = base
	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}

	return &Client{
		gh: client,
		download: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: cfg.Timeout,
			},
		},
		token:  cfg.Token,
		pacer:  pacer,
		logger: log,
	}, nil
}

// BaseURL returns the API root every relative request resolves against
func (c *Client) BaseURL() *url.URL {
	u := *c.gh.BaseURL
	return &u
}

// Resolve returns the absolute URL req will hit
func (c *Client) Resolve(req Request) (string, error) {
	u, err := c.gh.BaseURL.Parse(req.URL)
	if err != nil {
		return "", err
	}
	if len(req.Query) > 0 {
		q := u.Query()
		for key, values := range req.Query {
			q.Del(key)
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Get performs an API GET and reads the whole body. Any non-2xx status
// is returned as a *errors.TransportError.
func (c *Client) Get(ctx context.Context, req Request) (*Response, error) {
	raw, err := c.Resolve(req)
	if err != nil {
		return nil, &errs.TransportError{URL: req.URL, Type: errs.ErrorTypeUnknown, Err: err}
	}

	if err := c.pacer.Wait(ctx); err != nil {
		return nil, errs.NewNetworkError(raw, err)
	}

	httpReq, err := c.gh.NewRequest(http.MethodGet, raw, nil)
	if err != nil {
		return nil, &errs.TransportError{URL: raw, Type: errs.ErrorTypeUnknown, Err: err}
	}
	httpReq.Header.Set("Accept", "application/vnd.github+json")
	httpReq.Header.Set("X-GitHub-Api-Version", APIVersion)
	for key, values := range req.Header {
		httpReq.Header[key] = values
	}

	start := time.Now()
	resp, err := c.gh.BareDo(ctx, httpReq)
	if err != nil {
		var accepted *gh.AcceptedError
		if !errors.As(err, &accepted) || resp == nil || resp.Response == nil {
			statusOf := 0
			if resp != nil && resp.Response != nil {
				statusOf = resp.StatusCode
			}
			logger.LogRequest(c.logger, http.MethodGet, raw, statusOf, time.Since(start))
			return nil, wrapError(raw, resp, err)
		}
		// 202: go-github has already drained the body into Raw
		logger.LogRequest(c.logger, http.MethodGet, raw, resp.StatusCode, time.Since(start))
		return newResponse(raw, resp.Response, accepted.Raw), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	logger.LogRequest(c.logger, http.MethodGet, raw, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, errs.NewNetworkError(raw, fmt.Errorf("failed to read response body: %w", err))
	}

	return newResponse(raw, resp.Response, body), nil
}

// Open starts a binary download and returns the body stream, which the
// caller must close. The API token is only sent to the API host and is
// dropped on redirects to other hosts.
func (c *Client) Open(ctx context.Context, req Request) (io.ReadCloser, int64, error) {
	raw, err := c.Resolve(req)
	if err != nil {
		return nil, 0, &errs.TransportError{URL: req.URL, Type: errs.ErrorTypeUnknown, Err: err}
	}

	httpReq, err := c.gh.NewRequest(http.MethodGet, raw, nil)
	if err != nil {
		return nil, 0, &errs.TransportError{URL: raw, Type: errs.ErrorTypeUnknown, Err: err}
	}
	httpReq = httpReq.WithContext(ctx)
	httpReq.Header.Set("Accept", "application/octet-stream")
	for key, values := range req.Header {
		httpReq.Header[key] = values
	}
	if c.token != "" && httpReq.URL.Host == c.gh.BaseURL.Host {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.download.Do(httpReq)
	if err != nil {
		logger.LogRequest(c.logger, http.MethodGet, raw, 0, time.Since(start))
		return nil, 0, errs.NewNetworkError(raw, err)
	}
	logger.LogRequest(c.logger, http.MethodGet, raw, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, 0, wrapError(raw, &gh.Response{Response: resp}, gh.CheckResponse(resp))
	}
	return resp.Body, resp.ContentLength, nil
}

func newResponse(raw string, resp *http.Response, body []byte) *Response {
	link := resp.Header.Get("Link")
	return &Response{
		URL:        raw,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		NextURL:    ParseNextLink(link),
		HasLinks:   link != "",
	}
}

// wrapError converts go-github and net/http failures into TransportErrors
func wrapError(raw string, resp *gh.Response, err error) error {
	if err == nil {
		return nil
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		te := errs.NewStatusError(raw, statusFrom(rateErr.Response, http.StatusForbidden), apiMessage(rateErr.Message, rateErr.Response))
		te.Type = errs.ErrorTypeRateLimit
		return te
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		te := errs.NewStatusError(raw, statusFrom(abuseErr.Response, http.StatusForbidden), apiMessage(abuseErr.Message, abuseErr.Response))
		te.Type = errs.ErrorTypeRateLimit
		return te
	}

	var apiErr *gh.ErrorResponse
	if errors.As(err, &apiErr) {
		return errs.NewStatusError(raw, statusFrom(apiErr.Response, 0), apiMessage(apiErr.Message, apiErr.Response))
	}

	if resp != nil && resp.Response != nil {
		return errs.NewStatusError(raw, resp.StatusCode, err)
	}
	return errs.NewNetworkError(raw, err)
}

// apiMessage keeps only the server's message; go-github's own error strings
// repeat the method and URL that TransportError already reports.
func apiMessage(msg string, resp *http.Response) error {
	if msg == "" && resp != nil {
		msg = http.StatusText(resp.StatusCode)
	}
	if msg == "" {
		msg = "request failed"
	}
	return errors.New(msg)
}

func statusFrom(resp *http.Response, fallback int) int {
	if resp == nil {
		return fallback
	}
	return resp.StatusCode
}
