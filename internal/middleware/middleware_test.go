package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"media-preview/internal/logging"
	"media-preview/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseWriterCapturesStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)
	assert.Equal(t, http.StatusOK, rw.statusCode)

	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusInternalServerError)
	n, err := rw.Write([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusTeapot, rw.statusCode, "first status wins")
	assert.Equal(t, int64(5), rw.bytesWritten)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	assert.Same(t, rw, newResponseWriter(rw), "wrapping twice reuses the recorder")
}

func TestSanitizeLogField(t *testing.T) {
	tests := map[string]string{
		"plain":            "plain",
		"a\nb\rc":          "a b c",
		"esc\x1b[31mred":   "esc[31mred",
		"nul\x00byte":      "nulbyte",
		"tab\tkept":        "tab\tkept",
		"del\x7fcharacter": "delcharacter",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeLogField(in), "%q", in)
	}
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", getClientIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", getClientIP(r))

	r.Header.Set("X-Forwarded-For", " 10.0.0.3 , 10.0.0.4")
	assert.Equal(t, "10.0.0.3", getClientIP(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "[::1]:80"
	assert.Equal(t, "::1", getClientIP(r))
}

func TestEscapeW3CField(t *testing.T) {
	assert.Equal(t, "curl/8.0", escapeW3CField("curl/8.0"))
	assert.Equal(t, `"Mozilla/5.0 (X11)"`, escapeW3CField("Mozilla/5.0 (X11)"))
	assert.Equal(t, `"say ""hi"""`, escapeW3CField(`say "hi"`))
}

func TestShouldSkip(t *testing.T) {
	cfg := DefaultLoggingConfig()
	assert.True(t, shouldSkip("/metrics", cfg))
	assert.False(t, shouldSkip("/healthz", cfg))
	assert.False(t, shouldSkip("/api/providers", cfg))

	cfg.LogHealthChecks = false
	assert.True(t, shouldSkip("/healthz", cfg))
	assert.True(t, shouldSkip("/readyz", cfg))
}

func TestLoggerWritesW3CLine(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	t.Cleanup(func() { logging.SetOutput(os.Stderr) })

	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/preview/a.jpg?x=10", nil)
	r.Header.Set("User-Agent", "test agent")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	line := buf.String()
	assert.Contains(t, line, "GET /api/preview/a.jpg x=10 404 7")
	assert.Contains(t, line, `\"test agent\"`)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Metrics(DefaultMetricsConfig()))
	router.HandleFunc("/api/preview/{path:.*}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {})

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/preview/{path:.*}", "503")
	before := testutil.ToFloat64(counter)

	for _, p := range []string{"/api/preview/a.jpg", "/api/preview/b/c.png"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	assert.Equal(t, before+2, testutil.ToFloat64(counter))

	healthBefore := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/healthz", "200"))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, healthBefore, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/healthz", "200")))
}

func TestRouteTemplateUnmatched(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	assert.Equal(t, "unmatched", routeTemplate(r))
	assert.False(t, strings.Contains(routeTemplate(r), "/"))
}
