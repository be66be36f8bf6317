package provider

import (
	"net/http"

	"github.com/inovacc/rael/internal/apperr"
)

// StatusError builds the RemoteProviderError for a failed call. status is 0
// when no response arrived.
func StatusError(provider, operation string, status int, message string, err error) error {
	if message == "" && status != 0 && err == nil {
		message = http.StatusText(status)
	}

	return &apperr.RemoteProviderError{
		Provider:  provider,
		Operation: operation,
		Status:    status,
		Message:   message,
		Err:       err,
	}
}

// IsGone reports whether err means the remote repository no longer exists
func IsGone(err error) bool {
	return apperr.IsRemoteStatus(err, http.StatusNotFound)
}
