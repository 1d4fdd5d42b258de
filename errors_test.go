package wl

import (
	"errors"
	"fmt"
	"io"
	"syscall"
	"testing"

	"github.com/ehrlich-b/go-wl/internal/objtab"
)

func TestStructuredError(t *testing.T) {
	// Test basic error creation
	err := NewError("connect", ErrCodeConnectFailed, "no compositor listening")

	if err.Op != "connect" {
		t.Errorf("Expected Op=connect, got %s", err.Op)
	}

	if err.Code != ErrCodeConnectFailed {
		t.Errorf("Expected Code=ErrCodeConnectFailed, got %s", err.Code)
	}

	expected := "wl: no compositor listening (op=connect)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
}

func TestErrorWithErrno(t *testing.T) {
	err := NewErrorWithErrno("listen", ErrCodePermissionDenied, syscall.EPERM)

	if err.Errno != syscall.EPERM {
		t.Errorf("Expected Errno=EPERM, got %v", err.Errno)
	}

	if err.Code != ErrCodePermissionDenied {
		t.Errorf("Expected Code=ErrCodePermissionDenied, got %s", err.Code)
	}
}

func TestObjectError(t *testing.T) {
	err := NewObjectError("dispatch", 42, ErrCodeUnknownObject, "no record for object")

	if err.ObjectID != 42 {
		t.Errorf("Expected ObjectID=42, got %d", err.ObjectID)
	}

	expected := "wl: no record for object (op=dispatch)"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
}

func TestDispatchError(t *testing.T) {
	err := NewDispatchError("dispatch", 7, 3, ErrCodeUnknownOpcode, "opcode past interface table")

	if err.ObjectID != 7 {
		t.Errorf("Expected ObjectID=7, got %d", err.ObjectID)
	}

	if err.Opcode != 3 {
		t.Errorf("Expected Opcode=3, got %d", err.Opcode)
	}
}

func TestWrapError(t *testing.T) {
	inner := syscall.ECONNREFUSED
	err := WrapError("connect", inner)

	if err.Code != ErrCodeConnectFailed {
		t.Errorf("Expected Code=ErrCodeConnectFailed, got %s", err.Code)
	}

	if err.Errno != syscall.ECONNREFUSED {
		t.Errorf("Expected Errno=ECONNREFUSED, got %v", err.Errno)
	}

	if !errors.Is(err, syscall.ECONNREFUSED) {
		t.Error("Expected errors.Is to match the wrapped errno")
	}
}

func TestWrapErrorNil(t *testing.T) {
	if WrapError("connect", nil) != nil {
		t.Error("Expected nil for nil inner error")
	}
}

func TestWrapErrorPreservesStructure(t *testing.T) {
	inner := NewObjectError("bind", 9, ErrCodeVersionMismatch, "wanted v7, server has v6")
	err := WrapError("roundtrip", inner)

	if err.Op != "roundtrip" {
		t.Errorf("Expected Op=roundtrip, got %s", err.Op)
	}
	if err.ObjectID != 9 {
		t.Errorf("Expected ObjectID preserved, got %d", err.ObjectID)
	}
	if err.Code != ErrCodeVersionMismatch {
		t.Errorf("Expected Code preserved, got %s", err.Code)
	}
}

func TestClassifySocketClosed(t *testing.T) {
	err := WrapError("dispatch", fmt.Errorf("conn: recvmsg: %w", io.EOF))

	if err.Code != ErrCodeSocketClosed {
		t.Errorf("Expected Code=ErrCodeSocketClosed for EOF, got %s", err.Code)
	}
}

func TestClassifyObjectTableErrors(t *testing.T) {
	err := WrapError("bind", fmt.Errorf("client: bind wl_shm: %w", objtab.ErrDuplicateID))
	if err.Code != ErrCodeDuplicateID {
		t.Errorf("Expected Code=ErrCodeDuplicateID, got %s", err.Code)
	}

	err = WrapError("sync", fmt.Errorf("client: %w", objtab.ErrIDSpaceExhausted))
	if err.Code != ErrCodeIDSpaceExhausted {
		t.Errorf("Expected Code=ErrCodeIDSpaceExhausted, got %s", err.Code)
	}
}

func TestErrnoMapping(t *testing.T) {
	tests := []struct {
		errno syscall.Errno
		code  ErrorCode
	}{
		{syscall.ENOENT, ErrCodeConnectFailed},
		{syscall.ECONNREFUSED, ErrCodeConnectFailed},
		{syscall.EPIPE, ErrCodeSocketClosed},
		{syscall.ECONNRESET, ErrCodeSocketClosed},
		{syscall.EINVAL, ErrCodeInvalidArgument},
		{syscall.EPERM, ErrCodePermissionDenied},
		{syscall.EACCES, ErrCodePermissionDenied},
		{syscall.ENOMEM, ErrCodeAllocationFailed},
		{syscall.ETIMEDOUT, ErrCodeTimeout},
		{syscall.EIO, ErrCodeIO},
	}

	for _, tt := range tests {
		if got := mapErrnoToCode(tt.errno); got != tt.code {
			t.Errorf("mapErrnoToCode(%v) = %s, want %s", tt.errno, got, tt.code)
		}
	}
}

func TestIsCode(t *testing.T) {
	err := NewError("sync", ErrCodeTimeout, "no done event")

	if !IsCode(err, ErrCodeTimeout) {
		t.Error("Expected IsCode to match ErrCodeTimeout")
	}

	if IsCode(err, ErrCodeSocketClosed) {
		t.Error("Expected IsCode not to match ErrCodeSocketClosed")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !IsCode(wrapped, ErrCodeTimeout) {
		t.Error("Expected IsCode to see through wrapping")
	}
}

func TestIsErrno(t *testing.T) {
	err := NewErrorWithErrno("listen", ErrCodePermissionDenied, syscall.EACCES)

	if !IsErrno(err, syscall.EACCES) {
		t.Error("Expected IsErrno to match EACCES")
	}

	if IsErrno(err, syscall.EPERM) {
		t.Error("Expected IsErrno not to match EPERM")
	}
}

func TestErrorsIsByCode(t *testing.T) {
	a := NewError("a", ErrCodeQueueClosed, "closed")
	b := NewError("b", ErrCodeQueueClosed, "also closed")

	if !errors.Is(a, b) {
		t.Error("Expected two errors with the same code to match via errors.Is")
	}
}
