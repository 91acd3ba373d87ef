// Package bridgetest provides in-process peers for tests that exercise
// the bridge: WebSocket servers with canned behaviors and a
// cookie-tracking HTTP server.
//
// Every helper takes the running test and registers cleanup on it, so a
// test never outlives its servers.
package bridgetest
