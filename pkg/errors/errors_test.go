package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidColor, "invalid tile color: %s", "#zzz")

	if err.Code != ErrCodeInvalidColor {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidColor)
	}
	if !strings.Contains(err.Error(), "INVALID_COLOR") {
		t.Errorf("Error() should contain the code, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "#zzz") {
		t.Errorf("Error() should contain the formatted message, got %q", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(ErrCodeStore, cause, "failed to save record %s", "abc")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match its cause via errors.Is")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Error() should contain the cause, got %q", err.Error())
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeRecordNotFound, "no such record")

	if !Is(err, ErrCodeRecordNotFound) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeStore) {
		t.Error("Is should not match a different code")
	}
	if Is(fmt.Errorf("plain"), ErrCodeStore) {
		t.Error("Is should not match plain errors")
	}

	// Code matching should work through wrapping.
	wrapped := fmt.Errorf("outer: %w", err)
	if !Is(wrapped, ErrCodeRecordNotFound) {
		t.Error("Is should unwrap to find the code")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInternal, "boom")); got != ErrCodeInternal {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeInternal)
	}
	if got := GetCode(fmt.Errorf("plain")); got != "" {
		t.Errorf("GetCode for plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidLevels, "levels must be between 2 and 15")
	if msg := UserMessage(err); strings.Contains(msg, "INVALID_LEVELS") {
		t.Errorf("UserMessage should strip the code prefix, got %q", msg)
	}

	plain := fmt.Errorf("plain error")
	if msg := UserMessage(plain); msg != "plain error" {
		t.Errorf("UserMessage for plain error = %q", msg)
	}
}

func TestIsValidation(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{ErrCodeInvalidLevels, true},
		{ErrCodeInvalidBaseSize, true},
		{ErrCodeInvalidColor, true},
		{ErrCodeInvalidPattern, true},
		{ErrCodeSurfaceUnavailable, false},
		{ErrCodeRecordNotFound, false},
		{ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := IsValidation(New(tt.code, "x")); got != tt.want {
				t.Errorf("IsValidation(%s) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}
