package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serveReady(t *testing.T, h *HealthHandler) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/readyz", h.Ready)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestReadyReportsEveryCheck(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{
		"postgres": pingFunc(func(context.Context) error { return nil }),
		"redis":    pingFunc(func(context.Context) error { return nil }),
	}, "1.4.0")

	status, body := serveReady(t, h)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1.4.0", body["version"])
	checks := body["checks"].(map[string]any)
	require.Len(t, checks, 2)
	assert.Equal(t, "ok", checks["redis"].(map[string]any)["status"])
}

func TestReadyFailsWhenAnyCheckFails(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{
		"postgres": pingFunc(func(context.Context) error { return nil }),
		"redis":    pingFunc(func(context.Context) error { return errors.New("dial tcp: connection refused") }),
	}, "")

	status, body := serveReady(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	redis := body["checks"].(map[string]any)["redis"].(map[string]any)
	assert.Equal(t, "unavailable", redis["status"])
	assert.Equal(t, "dial tcp: connection refused", redis["error"])
	assert.Equal(t, "ok", body["checks"].(map[string]any)["postgres"].(map[string]any)["status"])
}
