package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"mindmap-backend/pkg/auth"
	"mindmap-backend/pkg/common"
	pkgerrors "mindmap-backend/pkg/errors"
	"mindmap-backend/pkg/observability"
)

// echoOwner writes the owner the middleware chain resolved
var echoOwner = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	owner, _ := common.GetOwnerID(r.Context())
	_, _ = io.WriteString(w, owner)
})

func TestAuthenticate(t *testing.T) {
	const secret = "test-secret"
	generator, err := auth.NewJWTGenerator(secret, "mindmap-auth", time.Hour)
	require.NoError(t, err)
	validator, err := auth.NewJWTValidator(secret, "mindmap-auth")
	require.NoError(t, err)
	token, err := generator.GenerateToken("alice", "", nil)
	require.NoError(t, err)

	handler := Authenticate(validator, pkgerrors.NewErrorHandler(zap.NewNop(), false), zap.NewNop())(echoOwner)

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantOwner  string
	}{
		{name: "no token", setup: func(*http.Request) {}, wantStatus: http.StatusUnauthorized},
		{name: "bearer header", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, wantStatus: http.StatusOK, wantOwner: "alice"},
		{name: "cookie", setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "auth_token", Value: token}) }, wantStatus: http.StatusOK, wantOwner: "alice"},
		{name: "bad token", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
			tt.setup(r)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantOwner != "" {
				assert.Equal(t, tt.wantOwner, w.Body.String())
			}
		})
	}
}

func TestDevelopmentOwner(t *testing.T) {
	handler := DevelopmentOwner("local")(echoOwner)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "local", w.Body.String())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(DevOwnerHeader, " bob ")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, "bob", w.Body.String())
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allowed, l.err
}

func (l *stubLimiter) Reset(context.Context, string) error { return nil }
func (l *stubLimiter) Limit() int                          { return 30 }

func TestRateLimit(t *testing.T) {
	errorHandler := pkgerrors.NewErrorHandler(zap.NewNop(), false)

	denied := &stubLimiter{allowed: false}
	handler := DevelopmentOwner("alice")(RateLimit(denied, errorHandler, zap.NewNop())(echoOwner))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, []string{"owner:alice"}, denied.keys)

	anonymous := &stubLimiter{allowed: true}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w = httptest.NewRecorder()
	RateLimit(anonymous, errorHandler, zap.NewNop())(echoOwner).ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"ip:203.0.113.7"}, anonymous.keys)

	broken := &stubLimiter{err: errors.New("table missing")}
	w = httptest.NewRecorder()
	RateLimit(broken, errorHandler, zap.NewNop())(echoOwner).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code, "a failing limiter lets requests through")
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = common.GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "req-7")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, "req-7", seen)
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
	ctx := common.WithRequestID(r.Context(), "req-3")
	ctx = common.WithStartTime(ctx, time.Now().Add(-2*time.Second))
	handler.ServeHTTP(httptest.NewRecorder(), r.WithContext(ctx))

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, "req-3", fields["requestID"])
	assert.GreaterOrEqual(t, fields["duration"], 2*time.Second)
}

func TestMetrics(t *testing.T) {
	collector := observability.NewCollector("mindmap")
	router := chi.NewRouter()
	router.Use(Metrics(collector))
	router.Get("/sessions/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sessions/abc", nil))

	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `mindmap_http_requests_total{method="GET",route="/sessions/{sessionID}",status="418"} 1`)
}
