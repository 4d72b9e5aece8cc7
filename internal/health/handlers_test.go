package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHealthOK(t *testing.T) {
	mgr := newTestManager()
	mgr.Register(&stubChecker{name: "encoder"})
	handler := NewHandler(mgr)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.HandleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusOK, resp.Status)
	require.Contains(t, resp.Checks, "encoder")
	assert.Equal(t, StatusOK, resp.Checks["encoder"].Status)
}

func TestHandleHealthDown(t *testing.T) {
	mgr := newTestManager()
	mgr.Register(&stubChecker{name: "redis", err: errors.New("dial tcp: refused")})
	handler := NewHandler(mgr)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.HandleHealth(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusDown, resp.Status)
}

func TestHandleReadyBeforeFirstCheck(t *testing.T) {
	mgr := newTestManager()
	handler := NewHandler(mgr)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	handler.HandleReady(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleReadyAfterChecks(t *testing.T) {
	mgr := newTestManager()
	mgr.Register(&stubChecker{name: "a"})
	mgr.RunChecks(context.Background())
	handler := NewHandler(mgr)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	handler.HandleReady(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleLive(t *testing.T) {
	handler := NewHandler(newTestManager())

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()
	handler.HandleLive(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}
