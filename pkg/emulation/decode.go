package emulation

import (
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DecodeBody converts a response body to UTF-8 using the charset named in
// the Content-Type header. Bodies with no charset, an unknown charset, or
// bytes the decoder rejects pass through unchanged.
func DecodeBody(body []byte, contentType string) string {
	if len(body) == 0 {
		return ""
	}
	name := charsetOf(contentType)
	if name == "" || isUTF8Name(name) {
		return string(body)
	}

	enc, err := htmlindex.Get(name)
	if err != nil || enc == nil {
		return string(body)
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

func charsetOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(params["charset"])
}

func isUTF8Name(name string) bool {
	switch name {
	case "utf-8", "utf8", "us-ascii", "ascii":
		return true
	}
	return false
}
