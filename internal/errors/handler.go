package errors

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ErrorResponse represents the error response structure.
type ErrorResponse struct {
	Error   ErrorDetails `json:"error"`
	TraceID string       `json:"trace_id,omitempty"`
}

// ErrorDetails contains the error details.
type ErrorDetails struct {
	Kind    Kind   `json:"kind"`
	Stage   string `json:"stage,omitempty"`
	Frame   *int   `json:"frame,omitempty"`
	Message string `json:"message"`
}

// ErrorHandler handles error responses.
type ErrorHandler struct {
	logger *logrus.Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// HandleError handles an error and writes the appropriate response.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	traceID := r.Header.Get("X-Request-ID")

	convErr, ok := GetConvertError(err)
	if !ok {
		convErr = WrapInternal(err, "an unexpected error occurred")
	}

	logEntry := h.logger.WithFields(logrus.Fields{
		"error_kind": convErr.Kind,
		"stage":      convErr.Stage,
		"trace_id":   traceID,
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote_ip":  r.RemoteAddr,
	})

	status := convErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logEntry.Error(convErr.Error())
	} else {
		logEntry.Warn(convErr.Error())
	}

	details := ErrorDetails{
		Kind:    convErr.Kind,
		Stage:   convErr.Stage,
		Message: convErr.Message,
	}
	if convErr.Frame != NoFrame {
		frame := convErr.Frame
		details.Frame = &frame
	}

	h.writeJSON(w, status, ErrorResponse{Error: details, TraceID: traceID})
}

// HandleNotFound handles 404 errors.
func (h *ErrorHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusNotFound, ErrorResponse{
		Error: ErrorDetails{
			Kind:    KindInternal,
			Message: "endpoint not found",
		},
		TraceID: r.Header.Get("X-Request-ID"),
	})
}

// HandleMethodNotAllowed handles 405 errors.
func (h *ErrorHandler) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Error: ErrorDetails{
			Kind:    KindInternal,
			Message: "method not allowed",
		},
		TraceID: r.Header.Get("X-Request-ID"),
	})
}

// HandlePanic handles panics in HTTP handlers.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	h.logger.WithFields(logrus.Fields{
		"panic":     recovered,
		"method":    r.Method,
		"path":      r.URL.Path,
		"remote_ip": r.RemoteAddr,
		"trace_id":  r.Header.Get("X-Request-ID"),
	}).Error("Panic recovered in HTTP handler")

	h.HandleError(w, r, WrapInternal(nil, "an unexpected error occurred"))
}

// writeJSON writes a JSON response.
func (h *ErrorHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Error("Failed to encode error response")
	}
}

// Middleware returns an error handling middleware.
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				h.HandlePanic(w, r, recovered)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
