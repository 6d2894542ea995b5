package middlewares

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-assist/internal/utils/logger"
)

type observed struct {
	method string
	route  string
	code   int
}

type fakeObserver struct {
	calls []observed
}

func (f *fakeObserver) ObserveRequest(method, route string, code int, _ time.Duration) {
	f.calls = append(f.calls, observed{method, route, code})
}

func TestRequestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.NewWithWriter(buf, slog.LevelDebug)

	var ctxLogger *slog.Logger
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = logger.FromContext(r.Context())
		ctxLogger.InfoContext(r.Context(), "inside handler")
		w.WriteHeader(http.StatusUnauthorized)
	})

	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"username":"alice","password":"hunter2"}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.NotNil(t, ctxLogger)
	assert.NotSame(t, slog.Default(), ctxLogger)

	out := buf.String()
	assert.Contains(t, out, "inside handler")
	assert.Contains(t, out, "request_id=")
	assert.Contains(t, out, "method=POST")
	assert.Contains(t, out, "path=/login")
	assert.Contains(t, out, "status=401")
	assert.NotContains(t, out, "hunter2")
}

func TestRequestLogger_implicit_ok(t *testing.T) {
	buf := &bytes.Buffer{}
	h := RequestLogger(logger.NewWithWriter(buf, slog.LevelInfo))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("pong"))
		}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, buf.String(), "status=200")
	assert.Contains(t, buf.String(), "bytes=4")
}

func TestMetrics(t *testing.T) {
	obs := &fakeObserver{}
	r := chi.NewRouter()
	r.Use(Metrics(obs))
	r.Post("/chat", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	r.Get("/ping", func(http.ResponseWriter, *http.Request) {})

	tests := []struct {
		method string
		path   string
		want   observed
	}{
		{http.MethodPost, "/chat", observed{http.MethodPost, "/chat", http.StatusInternalServerError}},
		{http.MethodGet, "/ping", observed{http.MethodGet, "/ping", http.StatusOK}},
		{http.MethodGet, "/nope/123", observed{http.MethodGet, "unmatched", http.StatusNotFound}},
	}

	for _, tt := range tests {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, http.NoBody))
	}

	require.Len(t, obs.calls, len(tests))
	for i, tt := range tests {
		assert.Equal(t, tt.want, obs.calls[i], tt.path)
	}
}
