package errors

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *ErrorHandler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewErrorHandler(logger)
}

func TestHandleError_ConvertError(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest("POST", "/api/v1/convert", nil)
	req.Header.Set("X-Request-ID", "test-trace-id")
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, NewIncompleteStream("pixel-data"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, KindIncompleteStream, resp.Error.Kind)
	assert.Equal(t, "pixel-data", resp.Error.Stage)
	assert.Nil(t, resp.Error.Frame)
	assert.Equal(t, "test-trace-id", resp.TraceID)
}

func TestHandleError_FrameIndexSerialized(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest("POST", "/api/v1/convert", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, NewEncodeFailed("frame-write", 2, errors.New("short write")))

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error.Frame)
	assert.Equal(t, 2, *resp.Error.Frame)
}

func TestHandleError_PlainErrorBecomesInternal(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest("GET", "/api/v1/probe", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, errors.New("something unexpected"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, KindInternal, resp.Error.Kind)
}

func TestHandleNotFound(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest("GET", "/nope", nil)
	rec := httptest.NewRecorder()

	h.HandleNotFound(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMiddleware_RecoversPanic(t *testing.T) {
	h := newTestHandler()

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})

	req := httptest.NewRequest("GET", "/panic", nil)
	rec := httptest.NewRecorder()

	h.Middleware(panicking).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleError_NoFrameOmittedFromWire(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest("POST", "/api/v1/convert", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, NewDecodeFailed("header", errors.New("bad signature")))

	// NoFrame is a sentinel, not data; it must never reach the wire.
	assert.NotContains(t, rec.Body.String(), `"frame"`)
}
