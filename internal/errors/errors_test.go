package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
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
				Code:    ErrCodeNotFound,
				Message: "resource not found",
			},
			want: "resource not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeNetwork,
				Message: "unreachable",
				Cause:   errors.New("dial tcp: refused"),
			},
			want: "unreachable: dial tcp: refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Network(cause)

	if !errors.Is(err, cause) {
		t.Errorf("expected Network error to wrap cause")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   ErrorCode
		wantStatus int
		check      func(error) bool
	}{
		{"auth", Auth("token missing"), ErrCodeAuth, http.StatusUnauthorized, IsAuth},
		{"network", Network(errors.New("eof")), ErrCodeNetwork, 0, IsNetwork},
		{"server", Server(http.StatusBadGateway, "bad gateway"), ErrCodeServer, http.StatusBadGateway, IsServer},
		{"validation", Validation("name is required"), ErrCodeValidation, 0, IsValidation},
		{"not found", NotFoundf("order %s not found", "o-1"), ErrCodeNotFound, 0, IsNotFound},
		{"internal", Internal("boom"), ErrCodeInternal, 0, IsInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %v, want %v", tt.err.Code, tt.wantCode)
			}
			if GetStatus(tt.err) != tt.wantStatus {
				t.Errorf("status = %d, want %d", GetStatus(tt.err), tt.wantStatus)
			}
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !tt.check(wrapped) {
				t.Errorf("predicate did not match wrapped error")
			}
		})
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("gst", "GST must be between 0 and 100.")
	if err.Field != "gst" {
		t.Errorf("Field = %q, want gst", err.Field)
	}
	if GetField(fmt.Errorf("wrap: %w", err)) != "gst" {
		t.Error("GetField should see through wrapping")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("conn reset")
	err := Wrapf(cause, ErrCodeTimeout, "list %s", "orders")
	if err.Message != "list orders" || !IsTimeout(err) {
		t.Fatalf("unexpected wrap: %+v", err)
	}
	if Wrap(nil, ErrCodeInternal, "noop") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestGetCode_PlainError(t *testing.T) {
	if GetCode(errors.New("plain")) != "" {
		t.Error("plain errors carry no code")
	}
	if IsCanceled(errors.New("plain")) {
		t.Error("plain error must not be canceled")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("x"), "Something went wrong. Please try again."},
		{"auth", Auth("expired"), "Your session has expired. Please sign in again."},
		{"network", Network(errors.New("x")), "Unable to reach the marketplace API. Check your connection and retry."},
		{"server hides detail", Server(500, "stack trace here"), "The marketplace API failed to process the request. Please try again later."},
		{"validation verbatim", Validation("Email already registered"), "Email already registered"},
		{"validation empty", Validation(""), "The request was rejected."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
