package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidState, "network %s", "shut down")

	if err.Code != ErrCodeInvalidState {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidState)
	}
	if err.Message != "network shut down" {
		t.Errorf("Message = %v, want %v", err.Message, "network shut down")
	}
	if err.Error() != "INVALID_STATE: network shut down" {
		t.Errorf("Error() = %v", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrCodeIO, cause, "write batch %d", 3)

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if err.Error() != "IO_ERROR: write batch 3: disk full" {
		t.Errorf("Error() = %v", err.Error())
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInfeasible, "test"),
			code:     ErrCodeInfeasible,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInfeasible, "test"),
			code:     ErrCodeUnderflow,
			expected: false,
		},
		{
			name:     "wrapped in fmt error",
			err:      fmtWrap(New(ErrCodeInterrupted, "test")),
			code:     ErrCodeInterrupted,
			expected: true,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeUnderflow, "test"),
			expected: ErrCodeUnderflow,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	for _, code := range []Code{ErrCodeInvalidState, ErrCodeUnderflow, ErrCodeIO, ErrCodeInterrupted, ErrCodeInfeasible} {
		if !IsFatal(New(code, "x")) {
			t.Errorf("IsFatal(%s) = false, want true", code)
		}
	}
	if IsFatal(New(ErrCodeNotFound, "x")) {
		t.Error("IsFatal(NOT_FOUND) = true, want false")
	}
	if IsFatal(errors.New("plain")) {
		t.Error("IsFatal(plain) = true, want false")
	}
}

func fmtWrap(err error) error {
	return &wrapper{err}
}

type wrapper struct{ err error }

func (w *wrapper) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrapper) Unwrap() error { return w.err }
