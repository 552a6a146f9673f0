package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestNewLoggerEmitsGCPFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Config{Component: "api-server", Level: "info", Output: &buf})
	require.NoError(t, err)

	logger.Warn("backend degraded", zap.String("source", "postgres"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "WARNING", entry["severity"])
	require.Equal(t, "api-server", entry["component"])
	require.Equal(t, "backend degraded", entry["message"])
	require.Equal(t, "postgres", entry["source"])
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger(Config{Level: "loud"})
	require.Error(t, err)
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Config{Level: "error", Output: &buf})
	require.NoError(t, err)

	logger.Info("ignored")
	require.NoError(t, logger.Sync())
	require.Empty(t, strings.TrimSpace(buf.String()))
}

func TestRequestLoggerStoresLogger(t *testing.T) {
	base := zaptest.NewLogger(t)

	var fromCtx *zap.Logger
	h := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = FromRequest(r, nil)
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.NotNil(t, fromCtx)
	require.NotSame(t, base, fromCtx)
}

func TestFromRequestFallback(t *testing.T) {
	fallback := zap.NewNop()
	require.Same(t, fallback, FromRequest(httptest.NewRequest(http.MethodGet, "/", nil), fallback))
}
