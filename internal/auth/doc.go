// Package auth authenticates rael users and verifies their bearer tokens.
//
// Two login paths issue the same kind of token:
//
//   - [CredentialAuthenticator] checks an email and password against the
//     identity store.
//   - [OAuthAuthenticator] runs a browser handshake against Google through a
//     one-shot loopback listener and maps the Google account to a local
//     identity by email.
//
// Tokens are HS256 JWTs valid for seven days, issued and checked by
// [Tokens]. A [Session] ties the on-disk token cache to verification and is
// the credential context every protected command receives.
package auth
