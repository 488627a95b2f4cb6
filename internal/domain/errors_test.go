package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeElementNotFound,
				Message: "element css=#x not found",
			},
			want: "[ELEMENT_NOT_FOUND] element css=#x not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeNavigation,
				Message: "navigation failed",
				Cause:   errors.New("net::ERR_NAME_NOT_RESOLVED"),
			},
			want: "[NAVIGATION_ERROR] navigation failed: net::ERR_NAME_NOT_RESOLVED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("timeout 500ms exceeded")
	err := ErrElementNotFound("role=button", 500*time.Millisecond, inner)

	if !errors.Is(err, inner) {
		t.Error("AppError.Unwrap() should allow errors.Is to find inner error")
	}
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel *AppError
	}{
		{"navigation", ErrNavigation("https://x", nil), ErrNavigationSentinel},
		{"not found", ErrElementNotFound("css=#a", time.Second, nil), ErrElementNotFoundSentinel},
		{"not interactable", ErrNotInteractable("css=#a", "click", nil), ErrNotInteractableSentinel},
		{"steady state", ErrSteadyStateTimeout(time.Second, nil), ErrSteadyStateSentinel},
		{"assertion", ErrAssertion("visible", "css=#a", true, false), ErrAssertionSentinel},
		{"auth", ErrAuthTimeout("standard", nil), ErrAuthTimeoutSentinel},
		{"engine", ErrUnsupportedEngine("opera"), ErrUnsupportedEngineSentinel},
		{"validation", ErrValidation("bad"), ErrValidationSentinel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("step failed: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("errors.Is(%v, %s) = false", wrapped, tt.sentinel.Code)
			}
			if errors.Is(wrapped, ErrInternal("", nil)) {
				t.Error("errors.Is matched a different code")
			}
		})
	}
}

func TestErrAssertion_CarriesExpectedAndActual(t *testing.T) {
	err := ErrAssertion("to have text", "css=.title", "Job Titles", "Users")

	if err.Metadata[MetaExpected] != "Job Titles" {
		t.Errorf("Metadata[expected] = %v, want 'Job Titles'", err.Metadata[MetaExpected])
	}
	if err.Metadata[MetaActual] != "Users" {
		t.Errorf("Metadata[actual] = %v, want 'Users'", err.Metadata[MetaActual])
	}
	if !strings.Contains(err.Error(), "want Job Titles, got Users") {
		t.Errorf("Error() = %q, want expected/actual in message", err.Error())
	}
}

func TestIsNonFatal(t *testing.T) {
	if !IsNonFatal(ErrSteadyStateTimeout(15*time.Second, nil)) {
		t.Error("steady state timeout should be non-fatal")
	}
	if IsNonFatal(ErrElementNotFound("css=#a", time.Second, nil)) {
		t.Error("element not found should be fatal")
	}
	if IsNonFatal(errors.New("plain")) {
		t.Error("non-app errors should be fatal")
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"app error", ErrUnsupportedEngine("opera"), ErrCodeUnsupportedEngine},
		{"wrapped app error", fmt.Errorf("launch: %w", ErrAuthTimeout("sso", nil)), ErrCodeAuthTimeout},
		{"plain error", errors.New("boom"), ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.want {
				t.Errorf("GetErrorCode() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestErrValidationField(t *testing.T) {
	err := ErrValidationField("hours_from", "bad time")

	if err.Code != ErrCodeValidation {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodeValidation)
	}
	if err.Metadata["field"] != "hours_from" {
		t.Errorf("Metadata[field] = %v, want 'hours_from'", err.Metadata["field"])
	}
}

func TestAppError_ToJSON(t *testing.T) {
	err := ErrElementNotFound("role=row[has-text=\"QA\"]", time.Second, nil)
	data := string(err.ToJSON())

	if !strings.Contains(data, ErrCodeElementNotFound) {
		t.Error("ToJSON should contain error code")
	}
	if !strings.Contains(data, `"locator"`) {
		t.Error("ToJSON should contain metadata")
	}
}
