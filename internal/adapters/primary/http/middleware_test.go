package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fredcamaral/carouselkit/internal/adapters/secondary/logging"
	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	handler := securityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	expected := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"X-DNS-Prefetch-Control": "off",
	}
	for header, value := range expected {
		assert.Equal(t, value, rec.Header().Get(header), header)
	}
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "img-src 'self' data: https:")
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := logging.Wrap(zap.New(core))

	handler := loggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/slides", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "http request", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/slides", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.EqualValues(t, len("short and stout"), fields["bytes"])
}

type recordedRequest struct {
	method string
	route  string
	code   int
}

type recordingObserver struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (o *recordingObserver) ObserveRequest(method, route string, code int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, recordedRequest{method, route, code})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	obs := &recordingObserver{}
	router := mux.NewRouter()
	router.Use(metricsMiddleware(obs))
	router.HandleFunc("/api/slides/{index}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, path := range []string{"/api/slides/1", "/api/slides/2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, path, nil))
	}

	require.Len(t, obs.requests, 2)
	for _, req := range obs.requests {
		assert.Equal(t, recordedRequest{http.MethodDelete, "/api/slides/{index}", http.StatusNoContent}, req)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	handler := recoveryMiddleware(logging.Wrap(zap.New(core)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("template exploded")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/carousel", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "exploded")
	assert.Equal(t, 1, logs.Len())
}

func TestMaxBodyMiddleware(t *testing.T) {
	var decodeErr error
	handler := maxBodyMiddleware(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var v map[string]string
		decodeErr = decodeJSON(r, &v)
	}))

	body := `{"topic":"a topic that is far too long for the limit"}`
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body)))

	require.Error(t, decodeErr)
	status, _ := statusFor(decodeErr)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decodeErr.Error(), "exceeds 16 bytes")
}

func TestRateLimiter(t *testing.T) {
	t.Run("burst then reject", func(t *testing.T) {
		rl := newRateLimiter(60, 3)
		for i := 0; i < 3; i++ {
			assert.True(t, rl.isAllowed("10.0.0.1"), "request %d", i)
		}
		assert.False(t, rl.isAllowed("10.0.0.1"))
		assert.True(t, rl.isAllowed("10.0.0.2"), "budgets are per client")
	})

	t.Run("cleanup drops idle clients", func(t *testing.T) {
		rl := newRateLimiter(60, 3)
		rl.isAllowed("10.0.0.1")

		rl.cleanup(time.Now())
		assert.Len(t, rl.clients, 1)

		rl.cleanup(time.Now().Add(rl.idle + time.Second))
		assert.Empty(t, rl.clients)
	})

	t.Run("middleware answers 429", func(t *testing.T) {
		rl := newRateLimiter(60, 1)
		handler := rl.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.Equal(t, "60", second.Header().Get("Retry-After"))
	})

	t.Run("run stops when done closes", func(t *testing.T) {
		rl := newRateLimiter(60, 1)
		done := make(chan struct{})
		finished := make(chan struct{})
		go func() {
			rl.run(done)
			close(finished)
		}()
		close(done)

		select {
		case <-finished:
		case <-time.After(time.Second):
			t.Fatal("cleanup loop did not stop")
		}
	})
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{"remote addr", "203.0.113.7:5555", nil, "203.0.113.7"},
		{"forwarded list takes the first hop", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "198.51.100.2, 10.0.0.1"}, "198.51.100.2"},
		{"real ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.9"}, "198.51.100.9"},
		{"garbage forwarded header", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.0.0.1"},
		{"remote addr without port", "unix", nil, "unix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, getClientIP(req))
		})
	}
}

var _ ports.Logger = (*logging.Logger)(nil)
