package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID_GeneratesAndEchoes(t *testing.T) {
	var seen string
	h := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(HeaderCorrelationID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, "cid-from-client")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "cid-from-client", seen)
	assert.Equal(t, "cid-from-client", rec.Header().Get(HeaderCorrelationID))
}

func TestRequireSession(t *testing.T) {
	var sid, uid string
	h := RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid = GetSessionID(r.Context())
		uid = GetUserID(r.Context())
	}))

	t.Run("missing header on /me", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me/cart", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), HeaderSessionID)
	})

	t.Run("guest by default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me/cart", nil)
		req.Header.Set(HeaderSessionID, "sess-1")
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "sess-1", sid)
		assert.Equal(t, GuestUserID, uid)
	})

	t.Run("user id forwarded", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me/checkout", nil)
		req.Header.Set(HeaderSessionID, "sess-2")
		req.Header.Set(HeaderUserID, "user-7")
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "sess-2", sid)
		assert.Equal(t, "user-7", uid)
	})

	t.Run("other paths pass through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://shop.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://shop.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
