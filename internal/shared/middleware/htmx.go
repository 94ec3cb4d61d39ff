package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const htmxKey contextKey = "htmx"

// HTMX marks requests issued by htmx so handlers can answer with a fragment
// instead of the full page.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isHTMX := r.Header.Get("HX-Request") == "true"
		ctx := context.WithValue(r.Context(), htmxKey, isHTMX)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IsHTMX reports whether the HTMX middleware marked r as an htmx request.
func IsHTMX(r *http.Request) bool {
	v, _ := r.Context().Value(htmxKey).(bool)
	return v
}
