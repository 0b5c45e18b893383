// Package codemagic is a thin client for the Codemagic REST API.
//
// Every endpoint maps to one method issuing a single request through
// Client.Do. Responses are passed through as decoded JSON (or raw bytes for
// artifact downloads); the client keeps no state between calls besides its
// immutable configuration.
package codemagic

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ee99ee/codemagic-mcp-improved/internal/jsonx"
)

// DefaultBaseURL is the public Codemagic API origin.
const DefaultBaseURL = "https://api.codemagic.io"

const (
	headerContentType = "Content-Type"
	headerAuthToken   = "x-auth-token"
)

// CredentialSource yields the API token. It is consulted on every request,
// so a key added or removed at runtime takes effect on the next call.
type CredentialSource interface {
	Credential() (string, error)
}

// StaticCredential is a fixed token.
type StaticCredential string

// Credential implements CredentialSource.
func (s StaticCredential) Credential() (string, error) { return string(s), nil }

// Options configures a Client.
type Options struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	Credentials CredentialSource

	// HTTPClient issues API calls. Defaults to a client with a 30s timeout.
	HTTPClient *http.Client

	// DownloadClient issues artifact downloads. Defaults to a client with a
	// 5m timeout.
	DownloadClient *http.Client

	Logger *log.Logger
}

// Client issues authenticated requests against the Codemagic API.
type Client struct {
	baseURL        string
	creds          CredentialSource
	httpClient     *http.Client
	downloadClient *http.Client
	logger         *log.Logger
}

// NewClient validates opts and returns a Client.
func NewClient(opts Options) (*Client, error) {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("invalid base url %q", base), Err: err}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &ConfigurationError{Message: fmt.Sprintf("base url must be an absolute http(s) url, got %q", base)}
	}
	if opts.Credentials == nil {
		return nil, &ConfigurationError{Message: "no credential source configured"}
	}

	c := &Client{
		baseURL:        strings.TrimRight(base, "/"),
		creds:          opts.Credentials,
		httpClient:     opts.HTTPClient,
		downloadClient: opts.DownloadClient,
		logger:         opts.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.downloadClient == nil {
		c.downloadClient = &http.Client{Timeout: 5 * time.Minute}
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c, nil
}

// BaseURL returns the API origin requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// Request describes one outbound call.
type Request struct {
	Method string
	Path   string
	Query  url.Values

	// Body, when non-nil, is encoded as JSON.
	Body any

	// Header entries override the default headers.
	Header map[string]string

	// Download routes the call through the download client.
	Download bool
}

// Response is a fully read upstream response with status < 400.
type Response struct {
	StatusCode int
	Header     http.Header
	body       []byte
}

// Bytes returns the raw response body.
func (r *Response) Bytes() []byte { return r.body }

// Empty reports whether the response carried no content.
func (r *Response) Empty() bool { return len(bytes.TrimSpace(r.body)) == 0 }

// JSON decodes the body. An empty body is a decoding error.
func (r *Response) JSON() (any, error) {
	v, err := jsonx.Decode(r.body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return v, nil
}

// JSONOrEmpty decodes the body, treating an empty body as an empty object.
// Used by endpoints that acknowledge with 202/204 and no content.
func (r *Response) JSONOrEmpty() (any, error) {
	if r.Empty() {
		return map[string]any{}, nil
	}
	return r.JSON()
}

// URL joins the base origin with path so that exactly one slash separates
// them.
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Do issues req. Statuses of 400 and above become an *UpstreamError and
// yield no response.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	token, err := c.creds.Credential()
	if err != nil {
		return nil, &ConfigurationError{Message: "failed to resolve CODEMAGIC_API_KEY", Err: err}
	}
	if strings.TrimSpace(token) == "" {
		return nil, &ConfigurationError{Message: "CODEMAGIC_API_KEY environment variable is required"}
	}

	var body io.Reader
	if req.Body != nil {
		b, err := jsonx.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.URL(req.Path, req.Query), body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set(headerContentType, "application/json")
	httpReq.Header.Set(headerAuthToken, token)
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}

	client := c.httpClient
	if req.Download {
		client = c.downloadClient
	}

	id := uuid.NewString()
	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		c.logger.Debug("codemagic request failed", "id", id, "method", req.Method, "path", req.Path, "error", err)
		return nil, fmt.Errorf("failed to make request %s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.logger.Debug("codemagic request",
		"id", id,
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Method:     req.Method,
			Path:       req.Path,
			Body:       string(data),
		}
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, body: data}, nil
}

// getJSON issues a GET and decodes the body.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values) (any, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return nil, err
	}
	return resp.JSON()
}

// sendJSON issues a request with a JSON body and decodes the reply.
func (c *Client) sendJSON(ctx context.Context, method, path string, body any) (any, error) {
	resp, err := c.Do(ctx, Request{Method: method, Path: path, Body: body})
	if err != nil {
		return nil, err
	}
	return resp.JSON()
}

// deleteJSON issues a DELETE, accepting an empty acknowledgement.
func (c *Client) deleteJSON(ctx context.Context, path string) (any, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
	if err != nil {
		return nil, err
	}
	return resp.JSONOrEmpty()
}

// apiPath joins escaped segments into a request path.
func apiPath(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// artifactPath builds the path for a secure filename of the form
// uuid/uuid/filename, escaping each segment but keeping the separators.
func artifactPath(secureFilename string, suffix ...string) string {
	var b strings.Builder
	b.WriteString("/artifacts")
	for _, s := range strings.Split(strings.Trim(secureFilename, "/"), "/") {
		if s == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	for _, s := range suffix {
		b.WriteByte('/')
		b.WriteString(s)
	}
	return b.String()
}
