package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestGridErrorFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      *GridError
		wantErr  string
		wantUser string
	}{
		{
			name:     "what only",
			err:      &GridError{What: "something broke"},
			wantErr:  "something broke",
			wantUser: "Error: something broke",
		},
		{
			name:     "what and why",
			err:      &GridError{What: "something broke", Why: "bad input"},
			wantErr:  "something broke: bad input",
			wantUser: "Error: something broke\n\nWhy: bad input",
		},
		{
			name: "full error",
			err: &GridError{
				What: "something broke",
				Why:  "bad input",
				Fix:  "try again",
			},
			wantErr:  "something broke: bad input",
			wantUser: "Error: something broke\n\nWhy: bad input\n\nFix: try again",
		},
		{
			name: "with cause",
			err: &GridError{
				What:  "something broke",
				Cause: errors.New("underlying error"),
			},
			wantErr:  "something broke: underlying error",
			wantUser: "Error: something broke",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantErr {
				t.Errorf("Error() = %q, want %q", got, tt.wantErr)
			}
			if got := tt.err.UserMessage(); got != tt.wantUser {
				t.Errorf("UserMessage() = %q, want %q", got, tt.wantUser)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *GridError
		code       Code
		wantWhat   string
		wantStatus int
	}{
		{"not found", ErrNotFound("project", "DEMO"), CodeNotFound, "project DEMO not found", 404},
		{"unique", ErrUniqueViolation("asset", "DEMO/hero", nil), CodeUniqueViolation, "asset DEMO/hero already exists", 409},
		{"validation", ErrValidation("name", "must not be empty"), CodeValidation, "invalid name", 400},
		{"storage", ErrStorage("create task", errors.New("disk full")), CodeStorage, "storage failure during create task", 500},
		{"config", ErrConfigInvalid("database.driver", "unknown"), CodeConfigInvalid, "invalid configuration: database.driver", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if tt.err.What != tt.wantWhat {
				t.Errorf("What = %q, want %q", tt.err.What, tt.wantWhat)
			}
			if got := tt.err.HTTPStatus(); got != tt.wantStatus {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}

func TestSentinelsMatchWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("create asset: %w", ErrUniqueViolation("asset", "hero", nil))

	if !errors.Is(wrapped, UniqueViolation) {
		t.Error("errors.Is(wrapped, UniqueViolation) = false, want true")
	}
	if errors.Is(wrapped, NotFound) {
		t.Error("errors.Is(wrapped, NotFound) = true, want false")
	}
	if !IsUniqueViolation(wrapped) {
		t.Error("IsUniqueViolation = false, want true")
	}
	if IsNotFound(wrapped) || IsValidation(wrapped) {
		t.Error("unexpected category match")
	}
}

func TestAsGridError(t *testing.T) {
	if AsGridError(nil) != nil {
		t.Error("AsGridError(nil) should be nil")
	}
	if AsGridError(errors.New("plain")) != nil {
		t.Error("AsGridError(plain) should be nil")
	}

	inner := ErrNotFound("task", "42")
	got := AsGridError(fmt.Errorf("update task: %w", inner))
	if got != inner {
		t.Errorf("AsGridError returned %v, want %v", got, inner)
	}
}

func TestWithCause(t *testing.T) {
	cause := errors.New("boom")
	base := ErrValidation("priority", "must be between 0 and 100")
	withCause := base.WithCause(cause)

	if base.Cause != nil {
		t.Error("WithCause must not mutate the receiver")
	}
	if !errors.Is(withCause, cause) {
		t.Error("errors.Is(withCause, cause) = false, want true")
	}
	if withCause.Code != CodeValidation {
		t.Errorf("Code = %v, want %v", withCause.Code, CodeValidation)
	}
}

func TestUnknownCategory(t *testing.T) {
	err := &GridError{Code: Code("SOMETHING_ELSE")}
	if err.Category() != CategoryUnknown {
		t.Errorf("Category() = %v, want CategoryUnknown", err.Category())
	}
	if err.HTTPStatus() != 500 {
		t.Errorf("HTTPStatus() = %d, want 500", err.HTTPStatus())
	}
}
