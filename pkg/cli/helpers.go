package cli

import (
	"fmt"
	"os"

	"github.com/sqdshguy/wirebridge/pkg/cli/internal/parse"
	"github.com/sqdshguy/wirebridge/pkg/emulation"
)

// parseHeaders turns repeated -H "Name: value" flags into an ordered header
// list. Order and duplicate names are preserved; malformed entries are
// rejected so a typo never silently drops a header.
func parseHeaders(values []string) ([]emulation.Header, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := make([]emulation.Header, 0, len(values))
	for _, v := range values {
		name, value, ok := parse.Header(v)
		if !ok {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", v)
		}
		headers = append(headers, emulation.Header{Name: name, Value: value})
	}
	return headers, nil
}

// readPayload resolves a message or body argument; the @file form reads the
// payload from disk.
func readPayload(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if s[0] == '@' {
		data, err := os.ReadFile(s[1:])
		if err != nil {
			return nil, fmt.Errorf("failed to read payload file: %w", err)
		}
		return data, nil
	}
	return []byte(s), nil
}
