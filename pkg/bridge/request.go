package bridge

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sqdshguy/wirebridge/pkg/emulation"
	"github.com/sqdshguy/wirebridge/pkg/session"
)

// RequestOptions configures one HTTP request.
type RequestOptions struct {
	// URL is required.
	URL string

	// Method defaults to GET.
	Method string

	// Headers are applied in order; duplicate names are preserved.
	Headers []emulation.Header

	// Body is sent as the request body when non-empty.
	Body []byte

	// SessionID routes the request through the named session, creating it
	// on first use. Empty means a throwaway client that never enters the
	// registry.
	SessionID string

	// Profile selects the emulated identity. For an existing session this
	// is ignored; the session keeps the profile it was created with.
	Profile string

	// Proxy routes the request when set. Ignored for existing sessions,
	// like Profile.
	Proxy string

	// Timeout bounds the whole exchange. Zero uses the default.
	Timeout time.Duration
}

// Request performs one HTTP exchange, through a registered session when
// opts.SessionID is set and through a throwaway client otherwise.
func (b *Bridge) Request(ctx context.Context, opts RequestOptions) (*emulation.Response, error) {
	method := normalizeMethod(opts.Method)
	start := time.Now()

	resp, err := b.doRequest(ctx, opts)
	if err != nil {
		b.metrics.RequestFailed(method)
		return nil, err
	}
	b.metrics.RequestCompleted(method, resp.Status, time.Since(start))
	return resp, nil
}

func (b *Bridge) doRequest(ctx context.Context, opts RequestOptions) (*emulation.Response, error) {
	spec := emulation.RequestSpec{
		URL:     opts.URL,
		Method:  opts.Method,
		Headers: opts.Headers,
		Body:    opts.Body,
		Timeout: opts.Timeout,
	}

	if opts.SessionID != "" {
		sess, err := b.sessions.Create(session.Options{
			ID:      opts.SessionID,
			Profile: emulation.Profile(opts.Profile),
			Proxy:   opts.Proxy,
		})
		if err != nil {
			return nil, err
		}
		b.metrics.SetActiveSessions(b.sessions.Len())
		return sess.Client().Do(ctx, spec)
	}

	client, err := b.sessions.Ephemeral(emulation.Profile(opts.Profile), opts.Proxy)
	if err != nil {
		return nil, err
	}
	defer client.CloseIdleConnections()
	return client.Do(ctx, spec)
}

// normalizeMethod mirrors the emulation client's method defaulting so the
// recorded label matches the wire.
func normalizeMethod(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(method)
}
