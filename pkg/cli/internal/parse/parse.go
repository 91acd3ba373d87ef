// Package parse provides string parsing helpers for CLI commands.
package parse

import "strings"

// KeyValue parses a "key:value" or "key=value" string. If delimiters are
// provided, the first one found wins; the default is ':'.
func KeyValue(s string, delimiters ...rune) (key, value string, ok bool) {
	if len(delimiters) == 0 {
		delimiters = []rune{':'}
	}
	for i, c := range s {
		for _, d := range delimiters {
			if c == d {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

// Header splits one "Name: value" flag into its parts. The value is
// trimmed of surrounding whitespace; the name is kept as given so callers
// control canonicalization.
func Header(s string) (name, value string, ok bool) {
	name, value, ok = KeyValue(s, ':')
	if !ok {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(value), true
}
