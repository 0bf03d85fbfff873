package middleware

import (
	"lexi-leaderboard/internal/constants"
	"net"
	"net/http"
	"strings"
)

var clientIPHeaders = []string{"CF-Connecting-IP", "X-Real-IP"}

// ClientID picks the best available identifier of the connecting client.
// Clients that cannot be identified share the "unknown" bucket.
func ClientID(r *http.Request) string {
	for _, h := range clientIPHeaders {
		if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
			return v
		}
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if host = strings.TrimSpace(host); host != "" {
			return host
		}
	}
	return constants.UnknownClientID
}
