// Package util provides small helpers shared across wirebridge.
package util

// MaxLogPayload is the default cap for payload previews in logs.
const MaxLogPayload = 256

// TruncatePayload renders data for logging, capped at max bytes with a
// "...(truncated)" suffix. A max of zero or less uses MaxLogPayload.
func TruncatePayload(data []byte, max int) string {
	if max <= 0 {
		max = MaxLogPayload
	}
	if len(data) > max {
		return string(data[:max]) + "...(truncated)"
	}
	return string(data)
}
