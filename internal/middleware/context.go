package middleware

import (
	"context"

	"finitefield.org/elarion-web/internal/storefront"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyRequestID  ctxKey = "req_id"
	ctxKeyIsHTMX     ctxKey = "is_htmx"
	ctxKeySession    ctxKey = "session"
	ctxKeyLocaleFB   ctxKey = "locale_fallback"
	ctxKeyStorefront ctxKey = "storefront"
)

// WithRequestID stores request id in context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// RequestID gets request id from context
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyRequestID).(string)
	return v, ok
}

// WithHTMX marks request as HTMX
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyIsHTMX, is)
}

// IsHTMX returns whether this is an htmx request
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyIsHTMX).(bool)
	return v
}

// WithStorefront stores the visitor's storefront session.
func WithStorefront(ctx context.Context, s *storefront.Session) context.Context {
	return context.WithValue(ctx, ctxKeyStorefront, s)
}

// StorefrontFromContext returns the storefront session attached by Storefront.
func StorefrontFromContext(ctx context.Context) *storefront.Session {
	s, _ := ctx.Value(ctxKeyStorefront).(*storefront.Session)
	return s
}
