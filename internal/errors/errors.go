// Package errors provides centralized error definitions and error handling utilities
// for the framegraph codebase. It defines domain-specific errors, semantic error types,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent errors from specific subsystems:
//   - CaptureError: errors loading or reading a capture
//   - BuildError: errors raised by a frame graph build stage
//   - ExportError: errors rendering a graph to an output format
//
// Semantic errors represent common error conditions:
//   - NotFoundError: pass, resource or event not found
//   - ValidationError: invalid input or state
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewCaptureError("decode capture", errors.ErrInvalidCapture).WithPath(path)
//	err := errors.NewNotFoundError("pass", "42")
//	err := errors.NewBuildError("fetch usage", cause).WithStage("usages")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrPassNotFound) { ... }
//
//	var captureErr *errors.CaptureError
//	if errors.As(err, &captureErr) { ... }
//
//	if errors.IsUserFacing(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Capture-related sentinel errors
var (
	// ErrCaptureNotLoaded indicates that no capture is available to build from.
	ErrCaptureNotLoaded = New("capture not loaded")
	// ErrInvalidCapture indicates that capture data failed validation.
	ErrInvalidCapture = New("invalid capture")
	// ErrUnsupportedCapture indicates that the capture file type is not supported.
	ErrUnsupportedCapture = New("unsupported capture format")
	// ErrDuplicateEvent indicates that two actions share an event ID.
	ErrDuplicateEvent = New("duplicate event id")
)

// Graph-related sentinel errors
var (
	// ErrPassNotFound indicates that no pass has the requested effective event ID.
	ErrPassNotFound = New("pass not found")
	// ErrResourceNotFound indicates that a resource is unknown to the capture.
	ErrResourceNotFound = New("resource not found")
	// ErrEventNotFound indicates that an event ID lies outside every pass.
	ErrEventNotFound = New("event not found")
	// ErrGraphNotBuilt indicates that a frame graph has not been built yet.
	ErrGraphNotBuilt = New("frame graph not built")
)

// Export-related sentinel errors
var (
	// ErrUnknownFormat indicates that an export format name is not recognized.
	ErrUnknownFormat = New("unknown export format")
	// ErrUnknownView indicates that a view type name is not recognized.
	ErrUnknownView = New("unknown view type")
)

// Cache-related sentinel errors
var (
	// ErrCacheMiss indicates that no cached build exists for a key.
	ErrCacheMiss = New("cache miss")
	// ErrCacheClosed indicates that the cache has been closed.
	ErrCacheClosed = New("cache closed")
)

// General sentinel errors
var (
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// FrameGraphError is the base interface for all framegraph errors.
// It extends the standard error interface with classification methods.
type FrameGraphError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// format renders "<kind> [k=v, ...]: message: cause".
func (e *baseError) format(kind string, parts []string) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// CaptureError represents errors loading or querying a capture.
//
// Example:
//
//	err := errors.NewCaptureError("decode capture", errors.ErrInvalidCapture)
//	err = err.WithPath("frame.json")
//	fmt.Println(err) // "capture error [path=frame.json]: decode capture: invalid capture"
type CaptureError struct {
	baseError
	Path string
}

// NewCaptureError creates a new CaptureError.
func NewCaptureError(message string, cause error) *CaptureError {
	return &CaptureError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithPath adds the capture file path to the error context.
func (e *CaptureError) WithPath(path string) *CaptureError {
	e.Path = path
	return e
}

// WithSeverity sets the error severity.
func (e *CaptureError) WithSeverity(s Severity) *CaptureError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *CaptureError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	return e.format("capture error", parts)
}

// Is checks if this error matches the target.
func (e *CaptureError) Is(target error) bool {
	if _, ok := target.(*CaptureError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// BuildError represents a failure inside one frame graph build stage.
//
// Example:
//
//	err := errors.NewBuildError("fetch texture usage", cause).WithStage("usages").WithResource("ResourceId::12")
type BuildError struct {
	baseError
	Stage    string
	Resource string
}

// NewBuildError creates a new BuildError.
func NewBuildError(message string, cause error) *BuildError {
	return &BuildError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithStage adds the build stage name to the error context.
func (e *BuildError) WithStage(stage string) *BuildError {
	e.Stage = stage
	return e
}

// WithResource adds the resource being processed to the error context.
func (e *BuildError) WithResource(res string) *BuildError {
	e.Resource = res
	return e
}

// Error returns the formatted error message.
func (e *BuildError) Error() string {
	var parts []string
	if e.Stage != "" {
		parts = append(parts, fmt.Sprintf("stage=%s", e.Stage))
	}
	if e.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", e.Resource))
	}
	return e.format("build error", parts)
}

// Is checks if this error matches the target.
func (e *BuildError) Is(target error) bool {
	if _, ok := target.(*BuildError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ExportError represents a failure rendering a graph.
type ExportError struct {
	baseError
	Format string
}

// NewExportError creates a new ExportError.
func NewExportError(message string, cause error) *ExportError {
	return &ExportError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithFormat adds the output format name to the error context.
func (e *ExportError) WithFormat(format string) *ExportError {
	e.Format = format
	return e
}

// Error returns the formatted error message.
func (e *ExportError) Error() string {
	var parts []string
	if e.Format != "" {
		parts = append(parts, fmt.Sprintf("format=%s", e.Format))
	}
	return e.format("export error", parts)
}

// Is checks if this error matches the target.
func (e *ExportError) Is(target error) bool {
	if _, ok := target.(*ExportError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a lookup that found nothing.
//
// Example:
//
//	err := errors.NewNotFoundError("pass", "120")
//	fmt.Println(err) // "pass not found: 120"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s not found", resourceType),
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s not found: %s", e.ResourceType, e.ResourceID)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("event id must be positive").WithField("usages[3].event").WithValue(0)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return e.format("validation error", parts)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var fgErr FrameGraphError
	if As(err, &fgErr) {
		return fgErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement FrameGraphError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var fgErr FrameGraphError
	if As(err, &fgErr) {
		return fgErr.Severity()
	}
	return SeverityError
}

// IsNotFound reports whether err is a NotFoundError or wraps one of the
// lookup sentinels.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var notFound *NotFoundError
	return As(err, &notFound) ||
		Is(err, ErrPassNotFound) ||
		Is(err, ErrResourceNotFound) ||
		Is(err, ErrEventNotFound) ||
		Is(err, ErrCacheMiss)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
