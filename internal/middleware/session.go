package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const (
	HeaderSessionID = "X-Session-Id"
	HeaderUserID    = "X-User-Id"

	// GuestUserID is sent upstream as the order owner when the shopper is anonymous.
	GuestUserID = "guest"
)

type errorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// RequireSession enforces X-Session-Id on all /me/* routes and stores it in
// context together with the optional X-User-Id.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path != "/me" && !strings.HasPrefix(path, "/me/") {
			next.ServeHTTP(w, r)
			return
		}

		sid := strings.TrimSpace(r.Header.Get(HeaderSessionID))
		if sid == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(errorResponse{
				Error:         "missing required header: X-Session-Id",
				CorrelationID: GetCorrelationID(r.Context()),
			})
			return
		}

		uid := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if uid == "" {
			uid = GuestUserID
		}

		ctx := context.WithValue(r.Context(), ctxSessionID, sid)
		ctx = context.WithValue(ctx, ctxUserID, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetSessionID(ctx context.Context) string {
	if v := ctx.Value(ctxSessionID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func GetUserID(ctx context.Context) string {
	if v := ctx.Value(ctxUserID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return GuestUserID
}
