package models

import "errors"

var (
	// ErrTransport marks network, HTTP status and authentication failures of a fetch.
	ErrTransport = errors.New("signal transport failure")
	// ErrFormat marks payloads that could not be decoded into daily signals.
	ErrFormat = errors.New("signal format failure")
	// ErrUnavailable is returned by register reads touching an unknown address.
	ErrUnavailable = errors.New("registers unavailable")
)

// FailureKind returns a short label for a fetch error, used in logs and metrics.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrFormat):
		return "format"
	default:
		return "unknown"
	}
}
