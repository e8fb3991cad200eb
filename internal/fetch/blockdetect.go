package fetch

import (
	"net/http"
	"strings"
)

// blockKind names the anti-bot protection a response appears to carry.
type blockKind string

const (
	blockNone       blockKind = ""
	blockCloudflare blockKind = "cloudflare"
	blockCaptcha    blockKind = "captcha"
	blockJSShell    blockKind = "js_shell"
)

// detectBlock inspects a response for signs of bot protection. It only
// labels responses for logs; a 2xx page is still returned to the scorer.
func detectBlock(status int, header http.Header, body []byte) blockKind {
	if status == http.StatusForbidden || status == http.StatusServiceUnavailable {
		if header.Get("cf-ray") != "" || header.Get("cf-cache-status") != "" ||
			strings.EqualFold(header.Get("server"), "cloudflare") {
			return blockCloudflare
		}
	}

	lower := strings.ToLower(string(body))

	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		strings.Contains(lower, "cf-challenge") {
		return blockCloudflare
	}

	// Contact forms embed recaptcha scripts, so only a short page counts.
	if len(body) < 4096 && strings.Contains(lower, "captcha") {
		return blockCaptcha
	}

	if len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return blockJSShell
		}
		if strings.Contains(lower, `http-equiv="refresh"`) {
			return blockJSShell
		}
	}

	return blockNone
}
