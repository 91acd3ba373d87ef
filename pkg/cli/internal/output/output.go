// Package output provides common output formatting for CLI commands.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
)

// JSON writes indented JSON to stdout.
func JSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Line writes one compact JSON document to stdout, for streamed records.
func Line(v any) error {
	return json.NewEncoder(os.Stdout).Encode(v)
}

// Table creates an aligned table writer for stdout. Call Flush when done.
func Table() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

// Warn prints a warning message to stderr.
func Warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}
