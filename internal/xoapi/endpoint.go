package xoapi

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultPath is the XO JSON-RPC endpoint path.
const DefaultPath = "/api/"

// Endpoint converts a user-supplied XO address into the WebSocket API URL.
// http and https map to ws and wss; a bare host is assumed to be https; an
// empty path becomes /api/.
func Endpoint(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("xo url is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid xo url %q: %w", raw, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid xo url %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid xo url %q: missing host", raw)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = DefaultPath
	}
	u.RawQuery, u.Fragment = "", ""
	return u.String(), nil
}
