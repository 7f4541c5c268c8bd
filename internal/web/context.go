package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/trainer/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for audit
// entries. RemoteAddr has already been resolved by TrustedRealIP.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	ctx = core.ContextWithIPAddress(ctx, ip)
	return core.ContextWithUserAgent(ctx, r.UserAgent())
}

func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithRequestMetadata(r.Context(), r)))
	})
}
