package parse

import "testing"

func TestKeyValue(t *testing.T) {
	tests := []struct {
		in         string
		delimiters []rune
		key, value string
		ok         bool
	}{
		{in: "a:b", key: "a", value: "b", ok: true},
		{in: "a=b", delimiters: []rune{'='}, key: "a", value: "b", ok: true},
		{in: "a:b:c", key: "a", value: "b:c", ok: true},
		{in: "a=b", ok: false},
		{in: "", ok: false},
	}
	for _, tt := range tests {
		key, value, ok := KeyValue(tt.in, tt.delimiters...)
		if ok != tt.ok || key != tt.key || value != tt.value {
			t.Errorf("KeyValue(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.in, key, value, ok, tt.key, tt.value, tt.ok)
		}
	}
}

func TestHeader(t *testing.T) {
	tests := []struct {
		in          string
		name, value string
		ok          bool
	}{
		{in: "Accept: application/json", name: "Accept", value: "application/json", ok: true},
		{in: "Accept:application/json", name: "Accept", value: "application/json", ok: true},
		{in: "X-Empty:", name: "X-Empty", value: "", ok: true},
		{in: "Referer: https://example.com", name: "Referer", value: "https://example.com", ok: true},
		{in: "no-delimiter", ok: false},
		{in: ": orphan-value", ok: false},
	}
	for _, tt := range tests {
		name, value, ok := Header(tt.in)
		if ok != tt.ok || name != tt.name || value != tt.value {
			t.Errorf("Header(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.in, name, value, ok, tt.name, tt.value, tt.ok)
		}
	}
}
