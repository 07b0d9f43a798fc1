package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/elarion-web/internal/observability"
	"finitefield.org/elarion-web/internal/storefront"
)

// Storefront mounts (or resumes) the storefront session named by the
// session cookie and attaches it to the request context.
func Storefront(reg *storefront.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sd := GetSession(r)
			sess, created, err := reg.Open(sd.ID)
			if err != nil {
				writeError(w, r, http.StatusServiceUnavailable, "storefront unavailable")
				return
			}
			sd.Rebind(sess.ID())
			if created {
				observability.FromContext(r.Context()).Debug("storefront session mounted",
					zap.String("session_id", sess.ID()))
			}
			next.ServeHTTP(w, r.WithContext(WithStorefront(r.Context(), sess)))
		})
	}
}
