package errors

import (
	"errors"
	"fmt"
	"testing"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Domain Error Tests
// -----------------------------------------------------------------------------

func TestCaptureError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *CaptureError
		want string
	}{
		{
			name: "message only",
			err:  NewCaptureError("decode capture", nil),
			want: "capture error: decode capture",
		},
		{
			name: "with path and cause",
			err:  NewCaptureError("decode capture", ErrInvalidCapture).WithPath("frame.json"),
			want: "capture error [path=frame.json]: decode capture: invalid capture",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCaptureError_Is(t *testing.T) {
	err := NewCaptureError("decode capture", ErrInvalidCapture)

	if !errors.Is(err, ErrInvalidCapture) {
		t.Error("errors.Is(err, ErrInvalidCapture) = false, want true")
	}
	if !errors.Is(err, &CaptureError{}) {
		t.Error("errors.Is(err, &CaptureError{}) = false, want true")
	}
	if errors.Is(err, ErrPassNotFound) {
		t.Error("errors.Is(err, ErrPassNotFound) = true, want false")
	}

	wrapped := fmt.Errorf("load: %w", err)
	var captureErr *CaptureError
	if !errors.As(wrapped, &captureErr) {
		t.Fatal("errors.As did not find CaptureError")
	}
	if captureErr.message != "decode capture" {
		t.Errorf("message = %q, want %q", captureErr.message, "decode capture")
	}
}

func TestBuildError_Error(t *testing.T) {
	err := NewBuildError("fetch texture usage", ErrCanceled).
		WithStage("usages").
		WithResource("ResourceId::12")

	want := "build error [stage=usages, resource=ResourceId::12]: fetch texture usage: operation canceled"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrCanceled) {
		t.Error("BuildError should match its cause")
	}
}

func TestExportError_Error(t *testing.T) {
	err := NewExportError("render", ErrUnknownFormat).WithFormat("png")
	want := "export error [format=png]: render: unknown export format"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// -----------------------------------------------------------------------------
// Semantic Error Tests
// -----------------------------------------------------------------------------

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("pass", "120")
	if got, want := err.Error(), "pass not found: 120"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if err.Severity() != SeverityWarning {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityWarning)
	}

	withCause := NewNotFoundError("pass", "120").WithCause(ErrPassNotFound)
	if !errors.Is(withCause, ErrPassNotFound) {
		t.Error("NotFoundError should match its cause")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("event id must be positive").
		WithField("usages[3].event").
		WithValue(0)

	want := "validation error [field=usages[3].event, value=0]: event id must be positive"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"capture error", NewCaptureError("x", nil), true},
		{"wrapped validation", fmt.Errorf("ctx: %w", NewValidationError("bad")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetSeverity(t *testing.T) {
	if got := GetSeverity(nil); got != SeverityDebug {
		t.Errorf("GetSeverity(nil) = %v, want %v", got, SeverityDebug)
	}
	if got := GetSeverity(errors.New("x")); got != SeverityError {
		t.Errorf("GetSeverity(plain) = %v, want %v", got, SeverityError)
	}
	err := NewCaptureError("x", nil).WithSeverity(SeverityCritical)
	if got := GetSeverity(err); got != SeverityCritical {
		t.Errorf("GetSeverity(capture) = %v, want %v", got, SeverityCritical)
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found error", NewNotFoundError("pass", "1"), true},
		{"pass sentinel", Wrap(ErrPassNotFound, "lookup"), true},
		{"cache miss", Wrapf(ErrCacheMiss, "key %s", "abc"), true},
		{"other", ErrInvalidCapture, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, "x %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	err := Wrapf(ErrEventNotFound, "event %d", 7)
	if got, want := err.Error(), "event 7: event not found"; got != want {
		t.Errorf("Wrapf() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrEventNotFound) {
		t.Error("wrapped error should match sentinel")
	}
}
