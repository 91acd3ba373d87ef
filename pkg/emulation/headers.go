package emulation

import "net/http"

// Header is one request header. Callers pass headers as an ordered list so
// that order and duplicate names survive all the way to the transport;
// collapsing them into a map early would lose both.
type Header struct {
	Name  string
	Value string
}

// applyHeaders lays caller headers over whatever h already holds. The first
// occurrence of a name replaces the existing value; repeats of the same
// name accumulate, so duplicates are preserved. A Host header is not stored
// in h; its value is returned for the caller to place on the request.
func applyHeaders(h http.Header, headers []Header) (host string) {
	seen := make(map[string]bool, len(headers))
	for _, hdr := range headers {
		key := http.CanonicalHeaderKey(hdr.Name)
		if key == "Host" {
			host = hdr.Value
			continue
		}
		if seen[key] {
			h.Add(key, hdr.Value)
			continue
		}
		h.Set(key, hdr.Value)
		seen[key] = true
	}
	return host
}
