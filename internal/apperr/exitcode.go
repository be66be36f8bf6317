package apperr

import "errors"

// Process exit statuses, one per taxonomy kind
const (
	ExitOK             = 0
	ExitUnclassified   = 1
	ExitAuthentication = 3
	ExitAuthorization  = 4
	ExitNotFound       = 5
	ExitConflict       = 6
	ExitRemoteProvider = 7
)

// ExitCode maps err to the process exit status for its taxonomy kind.
// Wrapped errors are unwrapped, so a RemoteProviderError behind a command
// message still exits with ExitRemoteProvider.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		authErr   *AuthenticationError
		authzErr  *AuthorizationError
		nfErr     *NotFoundError
		confErr   *ConflictError
		remoteErr *RemoteProviderError
	)

	switch {
	case errors.As(err, &authErr):
		return ExitAuthentication
	case errors.As(err, &authzErr):
		return ExitAuthorization
	case errors.As(err, &nfErr):
		return ExitNotFound
	case errors.As(err, &confErr):
		return ExitConflict
	case errors.As(err, &remoteErr):
		return ExitRemoteProvider
	default:
		return ExitUnclassified
	}
}
