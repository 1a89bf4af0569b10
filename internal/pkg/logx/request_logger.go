/*
Package logx provides a structured logging wrapper based on zerolog.

This file contains the HTTP middleware used by the ops endpoint to log request
lifecycle information such as URI, method, response status, and latency. It also
implements IP address anonymization to avoid recording full client addresses.
*/
package logx

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// anonymizeIP anonymizes the given IP address string.
// For IPv4 it zeros the last octet; for IPv6 it compresses the latter half to "::".
func anonymizeIP(ipStr string) string {
	host, _, err := net.SplitHostPort(ipStr)
	if err == nil {
		ipStr = host
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return "unknown_ip"
	}

	if ip.IsLoopback() {
		return "127.0.0.1"
	}

	if v4 := ip.To4(); v4 != nil {
		return v4[:3].String() + ".0"
	}

	if v6 := ip.To16(); v6 != nil {
		masked := make(net.IP, len(v6))
		copy(masked, v6)
		for i := 8; i < len(masked); i++ {
			masked[i] = 0
		}
		return masked.String()
	}

	return "unknown_ip"
}

// RequestLogger returns a chi middleware that logs one structured line per
// HTTP request served by the ops endpoint.
func RequestLogger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				Logger().Info().
					Str("method", r.Method).
					Str("uri", r.RequestURI).
					Str("remote_ip", anonymizeIP(r.RemoteAddr)).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("latency", time.Since(start)).
					Msg("HTTP request served")
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
