// Package wpapi provides a thin transport over the WordPress REST API (wp/v2).
package wpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
)

const (
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 8 << 20
	maxErrorBody     = 512
	apiPrefix        = "/wp-json"
	apiVersionPath   = "/wp/v2"
)

// Request describes a single REST call relative to the wp/v2 API base.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	JSON        any
	Body        io.Reader
	ContentType string
	Headers     map[string]string
	// Anonymous skips basic authentication.
	Anonymous bool
	// Root targets the bare REST index (/wp-json/) instead of wp/v2.
	Root bool
}

// Response is a fully read REST response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client executes REST calls against a WordPress site using resolved credentials.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client. A zero timeout uses the package default.
func NewClient(logger *slog.Logger, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("module", "wpapi"),
	}
}

// NewClientWithHTTP creates a client around an existing http.Client.
func NewClientWithHTTP(logger *slog.Logger, httpClient *http.Client) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger.With("module", "wpapi"),
	}
}

// Do performs the request. Transport failures are returned as RemoteUnreachable;
// HTTP statuses are left for the caller to interpret with Response.Expect.
func (c *Client) Do(ctx context.Context, creds *models.Credentials, req Request) (*Response, error) {
	op := "wpapi." + req.Method + " " + req.Path

	target := APIBase(creds.BaseURL) + req.Path
	if req.Root {
		target = RootURL(creds.BaseURL)
	}

	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	body := req.Body
	contentType := req.ContentType

	if req.JSON != nil {
		payload, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, models.NewError(models.ErrorKindInternal, op, fmt.Errorf("failed to encode request body: %w", err))
		}

		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, models.NewError(models.ErrorKindConfigMissing, op, fmt.Errorf("invalid CMS url: %w", err))
	}

	httpReq.Header.Set("Accept", "application/json")

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if !req.Anonymous {
		httpReq.SetBasicAuth(creds.Username, creds.AppPassword)
	}

	c.logger.DebugContext(ctx, "Sending CMS request", "method", req.Method, "url", target)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, models.NewError(models.ErrorKindRemoteUnreachable, op, err)
	}

	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			c.logger.ErrorContext(ctx, "failed to close response body", "error", closeErr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, models.NewError(models.ErrorKindRemoteUnreachable, op, fmt.Errorf("failed to read response body: %w", err))
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// Expect returns nil when the status is one of accepted, otherwise the
// classified error for the status.
func (r *Response) Expect(op string, accepted ...int) error {
	for _, status := range accepted {
		if r.StatusCode == status {
			return nil
		}
	}

	return ClassifyStatus(op, r.StatusCode, r.Body)
}

// Decode unmarshals the response body into dest.
func (r *Response) Decode(op string, dest any) error {
	err := json.Unmarshal(r.Body, dest)
	if err != nil {
		return models.NewError(models.ErrorKindRemoteRejected, op, fmt.Errorf("invalid response body: %w", err))
	}

	return nil
}

// HeaderInt reads an integer response header such as X-WP-Total, returning 0 when absent.
func (r *Response) HeaderInt(name string) int {
	value, err := strconv.Atoi(r.Header.Get(name))
	if err != nil {
		return 0
	}

	return value
}

// ClassifyStatus maps a non-success HTTP status to the error taxonomy.
func ClassifyStatus(op string, status int, body []byte) error {
	snippet := Truncate(string(body), maxErrorBody)

	switch status {
	case http.StatusUnauthorized:
		return models.NewStatusError(models.ErrorKindAuthFailed, op, status, snippet)
	case http.StatusForbidden:
		return models.NewStatusError(models.ErrorKindPermissionDenied, op, status, snippet)
	case http.StatusNotFound:
		return models.NewStatusError(models.ErrorKindNotFound, op, status, snippet)
	default:
		return models.NewStatusError(models.ErrorKindRemoteRejected, op, status, snippet)
	}
}

// Truncate shortens s to at most limit bytes without splitting a UTF-8 sequence.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut]
}

// SiteURL returns the site root for baseURL, dropping any REST suffix and trailing slash.
func SiteURL(baseURL string) string {
	site := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if idx := strings.Index(site, apiPrefix); idx >= 0 {
		site = site[:idx]
	}

	return site
}

// RootURL returns the REST index of the site.
func RootURL(baseURL string) string {
	return SiteURL(baseURL) + apiPrefix + "/"
}

// APIBase returns the wp/v2 endpoint prefix of the site.
func APIBase(baseURL string) string {
	return SiteURL(baseURL) + apiPrefix + apiVersionPath
}

// EditURL is the admin editor link for a post.
func EditURL(baseURL string, postID int64) string {
	return fmt.Sprintf("%s/wp-admin/post.php?post=%d&action=edit", SiteURL(baseURL), postID)
}

// PreviewURL is the front-end preview link for a draft post.
func PreviewURL(baseURL string, postID int64) string {
	return fmt.Sprintf("%s/?p=%d&preview=true", SiteURL(baseURL), postID)
}
