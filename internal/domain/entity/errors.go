package entity

import (
	"errors"
	"fmt"
)

// ErrBusy is returned by an admission gate that could not grant a slot in time.
var ErrBusy = errors.New(DetailBusy)

type CaptureErrorKind string

const (
	CaptureTimeout            CaptureErrorKind = "timeout"
	CaptureProcessSpawnFailed CaptureErrorKind = "process_spawn_failed"
	CaptureNoFrameDecoded     CaptureErrorKind = "no_frame_decoded"
	CaptureProcessError       CaptureErrorKind = "process_error"
)

// CaptureError is the typed failure of a single frame grab. Detail is safe to
// show to clients and never carries credentials.
type CaptureError struct {
	Kind   CaptureErrorKind
	Detail string
}

func (e *CaptureError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return e.Detail
}

func NewCaptureError(kind CaptureErrorKind, format string, args ...any) *CaptureError {
	return &CaptureError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// FailureDetail maps any capture error to the client-facing detail string.
func FailureDetail(err error) string {
	var ce *CaptureError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	return "exception"
}

// FailureKind returns the capture error kind, or "unknown" for untyped errors.
func FailureKind(err error) string {
	var ce *CaptureError
	if errors.As(err, &ce) {
		return string(ce.Kind)
	}
	return "unknown"
}
