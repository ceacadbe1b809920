package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMetadata(t *testing.T) {
	var seen []*RequestMetadata
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqMeta, ok := ReqMetadataFrom(r.Context())
		require.True(t, ok)
		seen = append(seen, reqMeta)
	}), RequestMetadataMiddleware())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.7:43210"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, seen, 2)
	assert.Equal(t, "10.0.0.7", seen[0].IP)
	assert.NotEmpty(t, seen[0].RequestID)
	assert.NotEqual(t, seen[0].RequestID, seen[1].RequestID, "request ids must be unique per request")
}

func TestRequestLoggerTagsRequestID(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	var handlerSawID string
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqMeta, _ := ReqMetadataFrom(r.Context())
		handlerSawID = reqMeta.RequestID
		w.WriteHeader(http.StatusNotFound)
	}), RequestMetadataMiddleware(), NewRequestLogger(logger))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/requests", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(logBuf.Bytes(), &line))
	assert.Equal(t, handlerSawID, line["requestID"])
	assert.Equal(t, float64(http.StatusNotFound), line["status"])
	assert.Equal(t, "GET", line["method"])
}
