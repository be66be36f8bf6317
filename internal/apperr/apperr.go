// Package apperr defines the error taxonomy shared by every rael command.
//
// Each kind is a concrete pointer type so callers branch with errors.As.
// [ExitCode] maps a kind to the documented process exit status.
package apperr

import (
	"errors"
	"fmt"
)

// AuthReason categorizes an authentication failure
type AuthReason string

const (
	InvalidCredentials    AuthReason = "invalid credentials"
	ExpiredToken          AuthReason = "expired token"
	InvalidSignature      AuthReason = "invalid token signature"
	UnknownRemoteIdentity AuthReason = "no local identity for remote account"
	MissingToken          AuthReason = "not logged in"
)

// AuthzReason categorizes an authorization failure
type AuthzReason string

const (
	NotOwner AuthzReason = "not the owner"
)

// NotFoundReason categorizes a missing entity
type NotFoundReason string

const (
	UserMissing             NotFoundReason = "user not found"
	RepositoryMissing       NotFoundReason = "repository not found"
	ProviderIdentityMissing NotFoundReason = "user not found on the provider"
)

// ConflictReason categorizes a uniqueness violation
type ConflictReason string

const (
	NameTaken  ConflictReason = "name already taken"
	EmailTaken ConflictReason = "email already registered"
)

// AuthenticationError indicates the caller could not be authenticated
type AuthenticationError struct {
	Reason AuthReason
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}

	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// AuthorizationError indicates an authenticated caller may not act
type AuthorizationError struct {
	Reason  AuthzReason
	Subject string
}

func (e *AuthorizationError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("not authorized: %s of %s", e.Reason, e.Subject)
	}

	return fmt.Sprintf("not authorized: %s", e.Reason)
}

// NotFoundError indicates a required entity does not exist
type NotFoundError struct {
	Reason  NotFoundReason
	Subject string
}

func (e *NotFoundError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Subject)
	}

	return string(e.Reason)
}

// ConflictError indicates a uniqueness constraint would be violated
type ConflictError struct {
	Reason  ConflictReason
	Subject string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %q", e.Reason, e.Subject)
}

// RemoteProviderError wraps a failed call to a remote hosting provider.
// Status is the upstream HTTP status, or 0 when no response was received.
type RemoteProviderError struct {
	Provider  string
	Operation string
	Status    int
	Message   string
	Err       error
}

func (e *RemoteProviderError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Status == 0 {
		return fmt.Sprintf("%s %s failed: %s", e.Provider, e.Operation, msg)
	}

	return fmt.Sprintf("%s %s failed: %d %s", e.Provider, e.Operation, e.Status, msg)
}

func (e *RemoteProviderError) Unwrap() error {
	return e.Err
}

// GenerationError wraps a text generation failure. It is always recovered
// locally and never reaches the command boundary.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("text generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsAuthentication reports whether err is an AuthenticationError with the given reason
func IsAuthentication(err error, reason AuthReason) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr) && authErr.Reason == reason
}

// IsNotFound reports whether err is a NotFoundError with the given reason
func IsNotFound(err error, reason NotFoundReason) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) && nf.Reason == reason
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsRemoteStatus reports whether err is a RemoteProviderError carrying status
func IsRemoteStatus(err error, status int) bool {
	var rp *RemoteProviderError
	return errors.As(err, &rp) && rp.Status == status
}
