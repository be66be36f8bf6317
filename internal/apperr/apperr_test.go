package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAuthenticationError(t *testing.T) {
	err := &AuthenticationError{Reason: InvalidCredentials}

	expected := "authentication failed: invalid credentials"
	if err.Error() != expected {
		t.Errorf("AuthenticationError.Error() = %q, want %q", err.Error(), expected)
	}

	inner := errors.New("token is expired")
	wrapped := &AuthenticationError{Reason: ExpiredToken, Err: inner}

	if !errors.Is(wrapped, inner) {
		t.Error("errors.Is should find the inner error")
	}
}

func TestRemoteProviderError(t *testing.T) {
	tests := []struct {
		name string
		err  *RemoteProviderError
		want string
	}{
		{
			name: "with status",
			err:  &RemoteProviderError{Provider: "github", Operation: "create repository", Status: 422, Message: "name already exists"},
			want: "github create repository failed: 422 name already exists",
		},
		{
			name: "network failure",
			err:  &RemoteProviderError{Provider: "github", Operation: "list members", Err: errors.New("connection refused")},
			want: "github list members failed: connection refused",
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

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitUnclassified},
		{"authentication", &AuthenticationError{Reason: ExpiredToken}, ExitAuthentication},
		{"authorization", &AuthorizationError{Reason: NotOwner}, ExitAuthorization},
		{"not found", &NotFoundError{Reason: RepositoryMissing, Subject: "alpha"}, ExitNotFound},
		{"conflict", &ConflictError{Reason: NameTaken, Subject: "alpha"}, ExitConflict},
		{"remote", &RemoteProviderError{Provider: "github", Status: 500}, ExitRemoteProvider},
		{"wrapped remote", fmt.Errorf("delete alpha: %w", &RemoteProviderError{Status: 502}), ExitRemoteProvider},
		{"generation is unclassified", &GenerationError{Err: errors.New("quota")}, ExitUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &RemoteProviderError{Status: http.StatusNotFound})
	if !IsRemoteStatus(err, http.StatusNotFound) {
		t.Error("IsRemoteStatus should match wrapped 404")
	}

	if IsRemoteStatus(err, http.StatusInternalServerError) {
		t.Error("IsRemoteStatus should not match a different status")
	}

	if !IsConflict(&ConflictError{Reason: NameTaken}) {
		t.Error("IsConflict should match ConflictError")
	}

	if !IsNotFound(&NotFoundError{Reason: UserMissing}, UserMissing) {
		t.Error("IsNotFound should match reason")
	}

	if IsAuthentication(&AuthenticationError{Reason: ExpiredToken}, InvalidSignature) {
		t.Error("IsAuthentication should compare reasons")
	}
}
