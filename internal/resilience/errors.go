// Package resilience classifies failures of outbound calls and bounds
// them with per-call deadlines. Nothing here retries: a failed call is
// final for the current lookup.
package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// IsTransient reports whether err looks like a condition that would clear
// on its own: a TimeoutError, a network timeout, a reset or refused
// connection, or a 429/5xx status from one of the HTTP clients. It only
// feeds log fields.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if IsTimeout(err) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	// Status errors are flattened to text by eris.Errorf in every client.
	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

var transientPatterns = []string{
	"unexpected status 429",
	"unexpected status 5",
	"connection reset by peer",
	"i/o timeout",
}
