package emulation

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
)

// Jar is an http.CookieJar whose contents can be emptied in place, so a
// long-lived client can shed its cookies without being rebuilt and without
// its holders noticing a new instance.
type Jar struct {
	mu    sync.RWMutex
	inner *cookiejar.Jar
}

// NewJar returns an empty jar.
func NewJar() *Jar {
	return &Jar{inner: newInnerJar()}
}

func newInnerJar() *cookiejar.Jar {
	jar, err := cookiejar.New(nil)
	if err != nil {
		// cookiejar.New fails only on bad options; there are none.
		panic(err)
	}
	return jar
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	// The inner jar synchronizes itself; the read lock only pins the
	// pointer against a concurrent Clear.
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.inner.SetCookies(u, cookies)
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.inner.Cookies(u)
}

// Clear drops every cookie.
func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner = newInnerJar()
}

var _ http.CookieJar = (*Jar)(nil)
