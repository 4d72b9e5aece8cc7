package errors

import (
	"fmt"
	"net/http"
)

// Kind classifies a conversion failure.
type Kind string

const (
	// KindInputTooSmall means the raw input is shorter than the minimum
	// parseable length.
	KindInputTooSmall Kind = "INPUT_TOO_SMALL"
	// KindIncompleteStream means the input ran out while a decode stage
	// still needed more bytes.
	KindIncompleteStream Kind = "INCOMPLETE_STREAM"
	// KindInvalidDimensions means the stream declared a zero width or height.
	KindInvalidDimensions Kind = "INVALID_DIMENSIONS"
	// KindDecodeFailed means the decoder reported malformed data.
	KindDecodeFailed Kind = "DECODE_FAILED"
	// KindBufferAllocation means a frame pixel buffer could not be allocated.
	KindBufferAllocation Kind = "BUFFER_ALLOCATION_FAILED"
	// KindEncodeFailed means the still or multi-frame writer failed.
	KindEncodeFailed Kind = "ENCODE_FAILED"
	// KindInternal covers everything that is not the caller's fault.
	KindInternal Kind = "INTERNAL_ERROR"
)

// NoFrame marks a ConvertError that is not tied to a particular frame.
const NoFrame = -1

// ConvertError is the single structured error value produced by a failed
// conversion. Every error is fatal; no partial output accompanies one.
// Wire serialization goes through ErrorDetails, which knows how to omit
// NoFrame; ConvertError itself is never marshaled.
type ConvertError struct {
	Kind    Kind
	Stage   string // decode stage or encode phase
	Frame   int    // failing frame index, NoFrame if n/a
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConvertError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Stage != "" {
		msg = fmt.Sprintf("%s: %s (stage: %s)", e.Kind, e.Message, e.Stage)
	}
	if e.Frame != NoFrame {
		msg = fmt.Sprintf("%s [frame %d]", msg, e.Frame)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s (caused by: %v)", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error.
func (e *ConvertError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to an HTTP response status for the
// service layer. Malformed input is the caller's problem.
func (e *ConvertError) HTTPStatus() int {
	switch e.Kind {
	case KindInputTooSmall, KindInvalidDimensions:
		return http.StatusBadRequest
	case KindIncompleteStream, KindDecodeFailed:
		return http.StatusUnprocessableEntity
	case KindBufferAllocation:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// NewInputTooSmall reports input below the minimum parseable length.
func NewInputTooSmall(length, min int) *ConvertError {
	return &ConvertError{
		Kind:    KindInputTooSmall,
		Frame:   NoFrame,
		Message: fmt.Sprintf("input of %d bytes is below the %d byte minimum", length, min),
	}
}

// NewIncompleteStream reports input exhaustion during the given stage.
func NewIncompleteStream(stage string) *ConvertError {
	return &ConvertError{
		Kind:    KindIncompleteStream,
		Stage:   stage,
		Frame:   NoFrame,
		Message: "input exhausted before stage could complete",
	}
}

// NewInvalidDimensions reports a zero declared width or height.
func NewInvalidDimensions(width, height uint32) *ConvertError {
	return &ConvertError{
		Kind:    KindInvalidDimensions,
		Frame:   NoFrame,
		Message: fmt.Sprintf("invalid image dimensions %dx%d", width, height),
	}
}

// NewDecodeFailed wraps a decoder failure at the given stage.
func NewDecodeFailed(stage string, err error) *ConvertError {
	return &ConvertError{
		Kind:    KindDecodeFailed,
		Stage:   stage,
		Frame:   NoFrame,
		Message: "decoder reported malformed data",
		Err:     err,
	}
}

// NewBufferAllocation reports a failed pixel buffer allocation.
func NewBufferAllocation(width, height uint32) *ConvertError {
	return &ConvertError{
		Kind:    KindBufferAllocation,
		Frame:   NoFrame,
		Message: fmt.Sprintf("cannot allocate %dx%d RGBA frame buffer", width, height),
	}
}

// NewEncodeFailed wraps a container writer failure. phase is one of
// "setup", "frame-delay", "frame-write" or "finalize". frame is NoFrame
// for phases outside the per-frame loop.
func NewEncodeFailed(phase string, frame int, err error) *ConvertError {
	return &ConvertError{
		Kind:    KindEncodeFailed,
		Stage:   phase,
		Frame:   frame,
		Message: "container encoding failed",
		Err:     err,
	}
}

// WrapInternal wraps an unexpected error.
func WrapInternal(err error, message string) *ConvertError {
	return &ConvertError{
		Kind:    KindInternal,
		Frame:   NoFrame,
		Message: message,
		Err:     err,
	}
}

// IsConvertError checks if an error is a ConvertError.
func IsConvertError(err error) bool {
	_, ok := err.(*ConvertError)
	return ok
}

// GetConvertError extracts a ConvertError from an error.
func GetConvertError(err error) (*ConvertError, bool) {
	convErr, ok := err.(*ConvertError)
	return convErr, ok
}
