package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit returns per-IP limiting middleware allowing perMinute requests
// per minute. name prefixes the store keys so several limiters can share
// a process. Exhausted clients get 429 with a Retry-After header.
func RateLimit(name string, perMinute int) func(http.Handler) http.Handler {
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "trainer:" + name,
		CleanUpInterval: time.Minute,
	})
	instance := limiter.New(store, limiter.Rate{Period: time.Minute, Limit: int64(perMinute)})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lc, err := instance.Get(r.Context(), clientKey(r))
			if err != nil {
				// A store failure must not take the dashboard down.
				slog.Warn("ratelimit: store error", "limiter", name, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(lc.Limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(lc.Remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(lc.Reset, 10))

			if lc.Reached {
				retry := lc.Reset - time.Now().Unix()
				if retry < 1 {
					retry = 1
				}
				h.Set("Retry-After", strconv.FormatInt(retry, 10))
				slog.Warn("ratelimit: limit reached",
					"limiter", name,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"too many requests","message":"Too many requests.","action":"Wait a minute and try again.","code":"RATE001"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// MutationsOnly applies mw to POST, PUT, PATCH and DELETE requests and
// passes reads straight through.
func MutationsOnly(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
				limited.ServeHTTP(w, r)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// clientKey is the host part of RemoteAddr, which TrustedRealIP has
// already resolved.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
