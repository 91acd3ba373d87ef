package emulation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a request when neither the request nor the client
// sets a timeout.
const DefaultTimeout = 30 * time.Second

// ClientOptions configures a transport client.
type ClientOptions struct {
	// Profile selects the emulated identity. Empty and unknown names fall
	// back to DefaultProfile.
	Profile Profile

	// Proxy routes all traffic through the given proxy when set. Supported
	// schemes: http, https, socks5, socks5h.
	Proxy string

	// CookieJar enables a persistent, resettable cookie store.
	CookieJar bool

	// Timeout is the per-request default when RequestSpec.Timeout is zero.
	// Zero means DefaultTimeout.
	Timeout time.Duration
}

// Client issues HTTP requests under a fixed emulation profile and proxy.
// It is safe for concurrent use; its configuration does not change after
// construction.
type Client struct {
	http    *http.Client
	jar     *Jar
	profile Profile
	proxy   string
	timeout time.Duration
}

// NewClient builds a client. A ConfigError is returned for an invalid
// proxy specification.
func NewClient(opts ClientOptions) (*Client, error) {
	profile := Resolve(string(opts.Profile))

	transport, err := newTransport(profile, opts.Proxy)
	if err != nil {
		return nil, err
	}

	c := &Client{
		http:    &http.Client{Transport: transport},
		profile: profile,
		proxy:   opts.Proxy,
		timeout: opts.Timeout,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if opts.CookieJar {
		c.jar = NewJar()
		c.http.Jar = c.jar
	}
	return c, nil
}

// Profile returns the profile the client emulates.
func (c *Client) Profile() Profile {
	return c.profile
}

// Proxy returns the proxy specification the client was built with, or ""
// for direct connections.
func (c *Client) Proxy() string {
	return c.proxy
}

// ClearCookies empties the cookie store in place. The client itself, its
// pooled connections, and its configuration are untouched. No-op for
// clients built without a jar.
func (c *Client) ClearCookies() {
	if c.jar != nil {
		c.jar.Clear()
	}
}

// CloseIdleConnections drops pooled keep-alive connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// RequestSpec describes one HTTP exchange.
type RequestSpec struct {
	// URL is required.
	URL string

	// Method defaults to GET. GET, POST, PUT, DELETE, PATCH and HEAD are
	// accepted; anything else is a ConfigError.
	Method string

	// Headers are applied in order on top of the profile baseline.
	// Duplicate names are legal and preserved.
	Headers []Header

	// Body is sent as the request body when non-empty.
	Body []byte

	// Timeout bounds the whole exchange. Zero uses the client default.
	Timeout time.Duration
}

// Response is the transcribed result of one exchange.
type Response struct {
	// Status is the HTTP status code.
	Status int `json:"status"`

	// Headers holds every response header with all values preserved.
	Headers http.Header `json:"headers"`

	// Cookies maps the names of cookies set by this response to their
	// values.
	Cookies map[string]string `json:"cookies"`

	// Body is the response body decoded to UTF-8 according to the response
	// charset.
	Body string `json:"body"`

	// URL is the final URL after any redirects.
	URL string `json:"url"`
}

var allowedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodDelete: {},
	http.MethodPatch:  {},
	http.MethodHead:   {},
}

func normalizeMethod(method string) (string, error) {
	if method == "" {
		return http.MethodGet, nil
	}
	upper := strings.ToUpper(method)
	if _, ok := allowedMethods[upper]; !ok {
		return "", &ConfigError{Field: "method", Value: method, Reason: "unsupported HTTP method"}
	}
	return upper, nil
}

// Do executes one request. Configuration problems (bad URL, unsupported
// method) surface as ConfigError; network failures are wrapped with the
// method and URL.
func (c *Client) Do(ctx context.Context, spec RequestSpec) (*Response, error) {
	if spec.URL == "" {
		return nil, &ConfigError{Field: "url", Reason: "missing URL"}
	}
	method, err := normalizeMethod(spec.Method)
	if err != nil {
		return nil, err
	}

	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if len(spec.Body) > 0 {
		body = bytes.NewReader(spec.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, spec.URL, body)
	if err != nil {
		return nil, &ConfigError{Field: "url", Value: spec.URL, Reason: err.Error()}
	}

	for _, h := range c.profile.BaselineHeaders() {
		req.Header.Set(h.Name, h.Value)
	}
	if host := applyHeaders(req.Header, spec.Headers); host != "" {
		req.Host = host
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, spec.URL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	cookies := make(map[string]string)
	for _, ck := range resp.Cookies() {
		cookies[ck.Name] = ck.Value
	}

	finalURL := spec.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Response{
		Status:  resp.StatusCode,
		Headers: resp.Header.Clone(),
		Cookies: cookies,
		Body:    DecodeBody(raw, resp.Header.Get("Content-Type")),
		URL:     finalURL,
	}, nil
}
