package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/inovacc/rael/internal/apperr"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// GoogleScopes are requested on every Google login
var GoogleScopes = []string{"profile", "email"}

// ProfileFetcher returns the email of the account an access token belongs to
type ProfileFetcher interface {
	Email(ctx context.Context, token *oauth2.Token) (string, error)
}

// GoogleOAuthConfig returns the client configuration for Google login.
// RedirectURL is filled in once the callback listener is bound.
func GoogleOAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       GoogleScopes,
	}
}

// GoogleProfiles fetches the Google userinfo profile.
type GoogleProfiles struct {
	// Endpoint overrides the API base URL; empty means Google's.
	Endpoint string
}

// Email implements ProfileFetcher
func (g GoogleProfiles) Email(ctx context.Context, token *oauth2.Token) (string, error) {
	opts := []option.ClientOption{option.WithTokenSource(oauth2.StaticTokenSource(token))}
	if g.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.Endpoint))
	}

	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("creating userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", err
	}

	if info.Email == "" {
		return "", errors.New("google profile has no email")
	}

	return info.Email, nil
}

// remoteError converts an exchange or profile failure into the taxonomy
func remoteError(operation string, err error) error {
	rp := &apperr.RemoteProviderError{Provider: "google", Operation: operation, Err: err}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		rp.Status = retrieveErr.Response.StatusCode
		rp.Message = retrieveErr.ErrorDescription
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		rp.Status = apiErr.Code
		rp.Message = apiErr.Message
	}

	return rp
}
