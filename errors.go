package wl

import (
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/ehrlich-b/go-wl/internal/conn"
	"github.com/ehrlich-b/go-wl/internal/objtab"
	"github.com/ehrlich-b/go-wl/internal/wire"
)

// Error represents a structured go-wl error with protocol context and
// errno mapping
type Error struct {
	Op       string        // Operation that failed (e.g., "connect", "roundtrip")
	ObjectID uint32        // Protocol object ID (0 if not applicable)
	Opcode   int           // Request/event opcode (-1 if not applicable)
	Code     ErrorCode     // High-level error category
	Errno    syscall.Errno // Kernel errno (0 if not applicable)
	Msg      string        // Human-readable message
	Inner    error         // Wrapped error
}

// Error implements the error interface
func (e *Error) Error() string {
	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}

	if e.ObjectID != 0 {
		parts = append(parts, fmt.Sprintf("object=%d", e.ObjectID))
	}

	if e.Opcode >= 0 {
		parts = append(parts, fmt.Sprintf("opcode=%d", e.Opcode))
	}

	if e.Errno != 0 {
		parts = append(parts, fmt.Sprintf("errno=%d", e.Errno))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}

	if len(parts) > 0 {
		return fmt.Sprintf("wl: %s (%s)", msg, parts[0])
	}

	return fmt.Sprintf("wl: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is provides errors.Is support: two *Errors match when their Codes match
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// ErrorCode represents high-level error categories
type ErrorCode string

// Transport errors
const (
	ErrCodeSocketClosed     ErrorCode = "socket closed"
	ErrCodeIO               ErrorCode = "I/O error"
	ErrCodePermissionDenied ErrorCode = "permission denied"
	ErrCodeNoRuntimeDir     ErrorCode = "XDG_RUNTIME_DIR not set"
	ErrCodeConnectFailed    ErrorCode = "connect failed"
)

// Codec errors
const (
	ErrCodeTruncatedMessage ErrorCode = "truncated message"
	ErrCodeBadLength        ErrorCode = "bad message length"
	ErrCodeBadString        ErrorCode = "bad string argument"
	ErrCodeMessageTooLarge  ErrorCode = "message too large"
	ErrCodeMissingFd        ErrorCode = "missing file descriptor"
)

// Protocol errors
const (
	ErrCodeUnknownObject    ErrorCode = "unknown object"
	ErrCodeUnknownOpcode    ErrorCode = "unknown opcode"
	ErrCodeInvalidArgument  ErrorCode = "invalid argument"
	ErrCodeVersionMismatch  ErrorCode = "version mismatch"
	ErrCodeDuplicateID      ErrorCode = "duplicate object id"
	ErrCodeIDSpaceExhausted ErrorCode = "object id space exhausted"
)

// Runtime errors
const (
	ErrCodeQueueClosed      ErrorCode = "queue closed"
	ErrCodeTimeout          ErrorCode = "timeout"
	ErrCodeAllocationFailed ErrorCode = "allocation failed"
)

// Remote errors
const (
	// ErrCodeProtocolError is surfaced when the peer sends
	// wl_display.error; ObjectID/Msg carry the peer's report.
	ErrCodeProtocolError ErrorCode = "protocol error from peer"
)

// Error constructors

// NewError creates a new structured error
func NewError(op string, code ErrorCode, msg string) *Error {
	return &Error{
		Op:     op,
		Opcode: -1,
		Code:   code,
		Msg:    msg,
	}
}

// NewErrorWithErrno creates a new structured error with errno
func NewErrorWithErrno(op string, code ErrorCode, errno syscall.Errno) *Error {
	return &Error{
		Op:     op,
		Opcode: -1,
		Code:   code,
		Errno:  errno,
		Msg:    errno.Error(),
	}
}

// NewObjectError creates a new error tied to a protocol object
func NewObjectError(op string, objectID uint32, code ErrorCode, msg string) *Error {
	return &Error{
		Op:       op,
		ObjectID: objectID,
		Opcode:   -1,
		Code:     code,
		Msg:      msg,
	}
}

// NewDispatchError creates a new error tied to a specific message
func NewDispatchError(op string, objectID uint32, opcode int, code ErrorCode, msg string) *Error {
	return &Error{
		Op:       op,
		ObjectID: objectID,
		Opcode:   opcode,
		Code:     code,
		Msg:      msg,
	}
}

// WrapError wraps an existing error with wl context
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}

	// If it's already a structured error, just update the operation
	if we, ok := inner.(*Error); ok {
		return &Error{
			Op:       op,
			ObjectID: we.ObjectID,
			Opcode:   we.Opcode,
			Code:     we.Code,
			Errno:    we.Errno,
			Msg:      we.Msg,
			Inner:    we.Inner,
		}
	}

	code := classifyError(inner)

	var errno syscall.Errno
	if errors.As(inner, &errno) {
		return &Error{
			Op:     op,
			Opcode: -1,
			Code:   code,
			Errno:  errno,
			Msg:    errno.Error(),
			Inner:  inner,
		}
	}

	return &Error{
		Op:     op,
		Opcode: -1,
		Code:   code,
		Msg:    inner.Error(),
		Inner:  inner,
	}
}

// classifyError maps transport and codec failures from the internal
// packages onto the public error taxonomy.
func classifyError(err error) ErrorCode {
	switch {
	case errors.Is(err, io.EOF):
		return ErrCodeSocketClosed
	case errors.Is(err, conn.ErrNoRuntimeDir):
		return ErrCodeNoRuntimeDir
	case errors.Is(err, wire.ErrTruncatedMessage):
		return ErrCodeTruncatedMessage
	case errors.Is(err, wire.ErrBadLength):
		return ErrCodeBadLength
	case errors.Is(err, wire.ErrBadString):
		return ErrCodeBadString
	case errors.Is(err, wire.ErrMessageTooLarge):
		return ErrCodeMessageTooLarge
	case errors.Is(err, wire.ErrMissingFd):
		return ErrCodeMissingFd
	case errors.Is(err, wire.ErrUnknownOpcode):
		return ErrCodeUnknownOpcode
	case errors.Is(err, objtab.ErrDuplicateID):
		return ErrCodeDuplicateID
	case errors.Is(err, objtab.ErrIDSpaceExhausted):
		return ErrCodeIDSpaceExhausted
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return mapErrnoToCode(errno)
	}
	return ErrCodeIO
}

// mapErrnoToCode maps syscall errno to wl error codes
func mapErrnoToCode(errno syscall.Errno) ErrorCode {
	switch errno {
	case syscall.ENOENT, syscall.ECONNREFUSED:
		return ErrCodeConnectFailed
	case syscall.EPIPE, syscall.ECONNRESET, syscall.ENOTCONN, syscall.EBADF:
		return ErrCodeSocketClosed
	case syscall.EINVAL, syscall.E2BIG:
		return ErrCodeInvalidArgument
	case syscall.EPERM, syscall.EACCES:
		return ErrCodePermissionDenied
	case syscall.ENOMEM, syscall.ENOSPC:
		return ErrCodeAllocationFailed
	case syscall.ETIMEDOUT:
		return ErrCodeTimeout
	default:
		return ErrCodeIO
	}
}

// IsCode checks if an error matches a specific error code
func IsCode(err error, code ErrorCode) bool {
	var wlErr *Error
	if errors.As(err, &wlErr) {
		return wlErr.Code == code
	}
	return false
}

// IsErrno checks if an error matches a specific errno
func IsErrno(err error, errno syscall.Errno) bool {
	var wlErr *Error
	if errors.As(err, &wlErr) {
		return wlErr.Errno == errno
	}
	return false
}
