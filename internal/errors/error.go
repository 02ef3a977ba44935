package errors

import "github.com/pkg/errors"

var (
	// account errors
	ErrUnknownAccount      = errors.New("unknown account")
	ErrMissingCredential   = errors.New("missing credential")
	ErrProtocolUnsupported = errors.New("protocol not configured for account")

	// oauth errors
	ErrNoTokens              = errors.New("no tokens found, run 'oauth-init' first")
	ErrOAuthExpiredNoRefresh = errors.New("oauth token rejected and no refresh token available")
	ErrExchangeFailed        = errors.New("token exchange failed")
	ErrRefreshFailed         = errors.New("token refresh failed")
	ErrNotConfigured         = errors.New("oauth client not configured")

	// session errors
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrConnectionFailed     = errors.New("connection failed")
)
