package emulation

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"slices"
	"time"

	"golang.org/x/net/proxy"
)

// newTransport builds the http.Transport for one client: ALPN preference
// per profile, proxy routing per the proxy URL.
func newTransport(p Profile, proxyURL string) (*http.Transport, error) {
	s := p.spec()

	t := &http.Transport{
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig:       &tls.Config{NextProtos: s.alpn},
		ForceAttemptHTTP2:     slices.Contains(s.alpn, "h2"),
	}

	if proxyURL == "" {
		return t, nil
	}

	u, err := parseProxyURL(proxyURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http", "https":
		t.Proxy = http.ProxyURL(u)
	default: // socks5, socks5h
		dialer, err := socksDialer(u)
		if err != nil {
			return nil, err
		}
		t.DialContext = dialer.DialContext
	}
	return t, nil
}

// parseProxyURL validates a proxy specification. Supported schemes: http,
// https, socks5, socks5h.
func parseProxyURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &ConfigError{Field: "proxy", Value: raw, Reason: err.Error()}
	}
	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return nil, &ConfigError{Field: "proxy", Value: raw, Reason: "unsupported scheme " + u.Scheme}
	}
	if u.Host == "" {
		return nil, &ConfigError{Field: "proxy", Value: raw, Reason: "missing host"}
	}
	return u, nil
}

// socksDialer builds a SOCKS5 dialer from the proxy URL, carrying its
// user-info as proxy credentials.
func socksDialer(u *url.URL) (proxy.ContextDialer, error) {
	var auth *proxy.Auth
	if u.User != nil {
		auth = &proxy.Auth{User: u.User.Username()}
		if pw, ok := u.User.Password(); ok {
			auth.Password = pw
		}
	}

	d, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
	if err != nil {
		return nil, &ConfigError{Field: "proxy", Value: u.String(), Reason: err.Error()}
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, &ConfigError{Field: "proxy", Value: u.String(), Reason: "socks5 dialer lacks context support"}
	}
	return cd, nil
}
