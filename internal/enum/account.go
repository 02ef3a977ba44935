package enum

type AuthMode string

const (
	AuthModeStatic AuthMode = "static"
	AuthModeOAuth2 AuthMode = "oauth2"
)

func (t AuthMode) String() string {
	return string(t)
}

type SessionRole string

const (
	SessionRoleRead SessionRole = "read"
	SessionRoleSend SessionRole = "send"
)

func (t SessionRole) String() string {
	return string(t)
}

type EmailSecurity string

const (
	EmailSecuritySSL      EmailSecurity = "ssl"
	EmailSecurityStartTLS EmailSecurity = "startTLS"
)

func (t EmailSecurity) String() string {
	return string(t)
}

type TokenGrant string

const (
	TokenGrantAuthorizationCode TokenGrant = "authorization_code"
	TokenGrantRefreshToken      TokenGrant = "refresh_token"
)

func (t TokenGrant) String() string {
	return string(t)
}
