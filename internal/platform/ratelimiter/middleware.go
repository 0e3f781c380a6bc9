package ratelimiter

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"
)

// Middleware rejects requests over the per-client budget with 429. The
// client key is the X-Member-Id header when present, else the remote host.
func Middleware(limiter *MapLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(ClientKey(r), time.Now()) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":    "rate_limited",
				"message": "too many requests",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ClientKey(r *http.Request) string {
	if member := strings.TrimSpace(r.Header.Get("X-Member-Id")); member != "" {
		return "member:" + member
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return "ip:unknown"
	}
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return "ip:" + remote
	}
	if strings.TrimSpace(host) == "" {
		return "ip:unknown"
	}
	return "ip:" + host
}
