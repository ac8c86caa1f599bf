package kaggle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/semmy-space/kgl/internal/auth"
)

// DefaultBaseURL is the Kaggle REST API root
const DefaultBaseURL = "https://www.kaggle.com/api/v1"

// DefaultTimeout bounds connecting and waiting for response headers on every
// call, and the whole exchange for JSON calls. Streamed bodies are not cut off.
const DefaultTimeout = 30 * time.Second

// ClientConfig holds the settings shared by every Client.
type ClientConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond paces requests issued by one client. Zero disables pacing.
	RequestsPerSecond float64
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// DefaultClientConfig returns the production settings.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:           DefaultBaseURL,
		UserAgent:         "kgl",
		Timeout:           DefaultTimeout,
		RequestsPerSecond: 2,
	}
}

// Client is an authenticated Kaggle API client bound to one set of credentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	creds      auth.Credentials
	limiter    *rate.Limiter
	timeout    time.Duration
}

// NewClient creates a Client using Basic authentication with creds.
func NewClient(cfg ClientConfig, creds auth.Credentials) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(timeout)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  cfg.UserAgent,
		creds:      creds,
		limiter:    limiter,
		timeout:    timeout,
	}
}

// newHTTPClient bounds dialing, the TLS handshake and the wait for response
// headers, but never the body, so large downloads and uploads can stream.
func newHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// bounded applies the client timeout to a whole small JSON exchange
func (c *Client) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// Do sends an authenticated request to path (relative to the API root).
// The caller must close the response body.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.SetBasicAuth(c.creds.Username, c.creds.Key)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// getJSON issues a GET and decodes a 200 response into v
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	ctx, cancel := c.bounded(ctx)
	defer cancel()

	resp, err := c.Do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseErrorResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &DecodeError{Format: "json", Err: err}
	}
	return nil
}

// TestAuthentication reports whether the credentials are accepted by the API.
func (c *Client) TestAuthentication(ctx context.Context) error {
	query := url.Values{
		"mine":     {"true"},
		"page":     {"1"},
		"pageSize": {"1"},
	}
	ctx, cancel := c.bounded(ctx)
	defer cancel()

	resp, err := c.Do(ctx, http.MethodGet, "kernels/list", query, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}

// parseErrorResponse builds an APIError from a non-2xx response
func parseErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "failed to read error response"}
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		// Not a JSON error body; keep the raw text
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	apiErr.StatusCode = resp.StatusCode
	return apiErr
}
