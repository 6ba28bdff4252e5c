package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrPermission     ErrorCode = "PERMISSION"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Bundle errors
	ErrBundleNotFound ErrorCode = "BUNDLE_NOT_FOUND"
	ErrBundleInvalid  ErrorCode = "BUNDLE_INVALID"

	// Registry errors
	ErrRegistryParse   ErrorCode = "REGISTRY_PARSE"
	ErrRegistryVersion ErrorCode = "REGISTRY_VERSION"
	ErrRegistryWrite   ErrorCode = "REGISTRY_WRITE"

	// Lock errors
	ErrLockTimeout ErrorCode = "LOCK_TIMEOUT"
	ErrLockHeld    ErrorCode = "LOCK_HELD"
	ErrLockRelease ErrorCode = "LOCK_RELEASE"

	// Merge errors
	ErrMergeConflict ErrorCode = "MERGE_CONFLICT"
	ErrMergeBlocked  ErrorCode = "MERGE_BLOCKED"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
	ErrPathUnsafe   ErrorCode = "PATH_UNSAFE"
	ErrDiskFull     ErrorCode = "DISK_FULL"
)

// SyncpackError represents a structured error with code and details
type SyncpackError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SyncpackError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SyncpackError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SyncpackError) Is(target error) bool {
	var targetErr *SyncpackError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SyncpackError with the given code and message
func New(code ErrorCode, message string) *SyncpackError {
	return &SyncpackError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SyncpackError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SyncpackError {
	return &SyncpackError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SyncpackError
func Wrap(err error, code ErrorCode, message string) *SyncpackError {
	if err == nil {
		return nil
	}
	return &SyncpackError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SyncpackError {
	if err == nil {
		return nil
	}
	return &SyncpackError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SyncpackError) WithDetail(key string, value interface{}) *SyncpackError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var spErr *SyncpackError
	if errors.As(err, &spErr) {
		return spErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if
// not a SyncpackError
func GetErrorCode(err error) ErrorCode {
	var spErr *SyncpackError
	if errors.As(err, &spErr) {
		return spErr.Code
	}
	return ErrUnknown
}

// IsFatal reports whether the error belongs to the abort taxonomy:
// the run must stop before (or without) any further mutation.
func IsFatal(err error) bool {
	switch GetErrorCode(err) {
	case ErrLockTimeout, ErrDiskFull, ErrRegistryParse, ErrRegistryVersion:
		return true
	}
	return false
}
