package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	apimocks "github.com/goran-ethernal/RWAIndexor/internal/api/mocks"
	"github.com/goran-ethernal/RWAIndexor/internal/contracts"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCORSMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		allowedOrigins []string
		origin         string
		expectedOrigin string
	}{
		{name: "wildcard echoes origin", allowedOrigins: []string{"*"}, origin: "https://explorer.example", expectedOrigin: "https://explorer.example"},
		{name: "wildcard without origin", allowedOrigins: []string{"*"}, expectedOrigin: "*"},
		{name: "listed origin", allowedOrigins: []string{"https://a.example", "https://explorer.example"}, origin: "https://explorer.example", expectedOrigin: "https://explorer.example"},
		{name: "unlisted origin", allowedOrigins: []string{"https://a.example"}, origin: "https://evil.example"},
		{name: "empty list", allowedOrigins: nil, origin: "https://explorer.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			source := apimocks.NewStatusSource(t)
			source.EXPECT().ListContracts(mock.Anything, mock.Anything).Return(nil, 0, nil)

			handler := CORSMiddleware(tt.allowedOrigins)(http.HandlerFunc(NewHandler(source, logger.NewNopLogger()).ListContracts))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			if tt.expectedOrigin != "" {
				require.Equal(t, "GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
				require.Equal(t, corsMaxAge, w.Header().Get("Access-Control-Max-Age"))
			}
			if tt.expectedOrigin != "" && tt.expectedOrigin != "*" {
				require.Equal(t, "Origin", w.Header().Get("Vary"))
			}
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	t.Parallel()

	cfg := testAPIConfig()
	cfg.CORS.Enabled = true
	cfg.CORS.AllowedOrigins = []string{"https://explorer.example"}

	// the preflight never reaches the status source
	handler := NewServer(cfg, apimocks.NewStatusSource(t), logger.NewNopLogger()).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/contracts/7", nil)
	req.Header.Set("Origin", "https://explorer.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Body.String())
	require.Equal(t, "https://explorer.example", w.Header().Get("Access-Control-Allow-Origin"))
	require.NotContains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestLoggingMiddleware(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewWithCore(core)

	source := apimocks.NewStatusSource(t)
	source.EXPECT().ListenerState().Return("streaming", true).Maybe()
	source.EXPECT().GetContract(mock.Anything, mock.Anything).Return(nil, contracts.ErrNotTracked).Maybe()

	handler := NewServer(testAPIConfig(), source, log).Handler()

	tests := []struct {
		path   string
		status int
	}{
		{path: "/health", status: http.StatusOK},
		{path: "/api/v1/contracts/12,0", status: http.StatusNotFound},
		{path: "/api/v1/contracts/not-an-address", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		require.Equal(t, tt.status, w.Code, tt.path)
	}

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, len(tests))
	for i, tt := range tests {
		fields := entries[i].ContextMap()
		require.Equal(t, http.MethodGet, fields["method"])
		require.Equal(t, tt.path, fields["path"])
		require.EqualValues(t, tt.status, fields["status"])
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)

	source := apimocks.NewStatusSource(t)
	source.EXPECT().ListenerState().RunAndReturn(func() (string, bool) {
		panic("listener state unavailable")
	})

	handler := NewServer(testAPIConfig(), source, logger.NewWithCore(core)).Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	body := decode[ErrorResponse](t, w)
	require.Equal(t, http.StatusText(http.StatusInternalServerError), body.Error)
	require.Equal(t, "internal error", body.Message)
	require.Equal(t, http.StatusInternalServerError, body.Code)

	panics := logs.FilterMessage("panic in http handler").All()
	require.Len(t, panics, 1)
	require.Equal(t, "/health", panics[0].ContextMap()["path"])
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)
	_, err := rw.Write([]byte(`{"error":"Not Found"}`))
	require.NoError(t, err)

	require.Equal(t, http.StatusNotFound, rw.statusCode)
	require.Equal(t, http.StatusNotFound, rec.Code)

	implicit := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: 0}
	_, err = implicit.Write([]byte("{}"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, implicit.statusCode)
}
