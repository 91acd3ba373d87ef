package emulation

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJarClearDropsCookies(t *testing.T) {
	jar := NewJar()
	u, err := url.Parse("http://shop.example/")
	require.NoError(t, err)

	jar.SetCookies(u, []*http.Cookie{{Name: "sid", Value: "abc", Path: "/"}})
	require.Len(t, jar.Cookies(u), 1)

	jar.Clear()
	assert.Empty(t, jar.Cookies(u), "cleared jar must hold nothing")

	// The jar stays usable after a clear.
	jar.SetCookies(u, []*http.Cookie{{Name: "sid", Value: "def", Path: "/"}})
	got := jar.Cookies(u)
	require.Len(t, got, 1)
	assert.Equal(t, "def", got[0].Value)
}

func TestJarConcurrentAccess(t *testing.T) {
	jar := NewJar()
	u, err := url.Parse("http://shop.example/")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			jar.SetCookies(u, []*http.Cookie{{Name: "sid", Value: "x", Path: "/"}})
			jar.Cookies(u)
		}
	}()
	for i := 0; i < 50; i++ {
		jar.Clear()
		jar.Cookies(u)
	}
	<-done
}
