package bridgetest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	ws "github.com/coder/websocket"
)

// Echo starts a WebSocket server that echoes every data frame back until
// the peer closes. The server shuts down with the test.
func Echo(t testing.TB) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := ws.Accept(w, r, &ws.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer c.CloseNow()

		ctx := r.Context()
		for {
			typ, data, err := c.Read(ctx)
			if err != nil {
				return
			}
			if err := c.Write(ctx, typ, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

// Burst starts a WebSocket server that sends n numbered text messages and
// then closes the connection cleanly.
func Burst(t testing.TB, n int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := ws.Accept(w, r, &ws.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		ctx := r.Context()
		for i := 0; i < n; i++ {
			if err := c.Write(ctx, ws.MessageText, []byte(BurstMessage(i))); err != nil {
				c.CloseNow()
				return
			}
		}
		c.Close(ws.StatusNormalClosure, "")
	}))
	t.Cleanup(ts.Close)
	return ts
}

// BurstMessage returns the i'th message a Burst server sends.
func BurstMessage(i int) string {
	return fmt.Sprintf("msg-%03d", i)
}

// CloseWith starts a WebSocket server that accepts the upgrade and
// immediately closes it with the given status code and reason.
func CloseWith(t testing.TB, code int, reason string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := ws.Accept(w, r, &ws.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		c.Close(ws.StatusCode(code), reason)
	}))
	t.Cleanup(ts.Close)
	return ts
}

// Reject starts an HTTP server that refuses every request, upgrade or
// not, with the given status.
func Reject(t testing.TB, status int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(status), status)
	}))
	t.Cleanup(ts.Close)
	return ts
}

// Cookies starts an HTTP server with two endpoints: /set plants a "sid"
// cookie and /get records whether the client replayed it. The returned
// func reports the cookie value seen on the most recent /get, empty when
// the client sent none.
func Cookies(t testing.TB) (*httptest.Server, func() string) {
	t.Helper()
	var mu sync.Mutex
	var last string
	mux := http.NewServeMux()
	mux.HandleFunc("/set", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
	})
	mux.HandleFunc("/get", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		last = ""
		if ck, err := r.Cookie("sid"); err == nil {
			last = ck.Value
		}
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, func() string {
		mu.Lock()
		defer mu.Unlock()
		return last
	}
}
