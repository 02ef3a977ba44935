package models

import "github.com/operatorhq/mailops/internal/enum"

// Account is the frozen connection and authentication profile for one
// logical mail account. Host/port fields left empty mean the protocol is
// not available for that account.
type Account struct {
	ID           string
	ImapServer   string
	ImapPort     int
	SmtpServer   string
	SmtpPort     int
	SmtpSecurity enum.EmailSecurity
	AuthMode     enum.AuthMode

	// Environment variable names the credential resolver reads at
	// resolve time. Kept as names so error messages can point the
	// operator at the exact missing variable.
	AddressEnv  string
	PasswordEnv string

	// ImapLogin overrides the address as the IMAP login string for
	// providers that use a separate login identifier.
	ImapLogin string
}

// SupportsRole reports whether the account has a server configured for the
// requested protocol role.
func (a *Account) SupportsRole(role enum.SessionRole) bool {
	switch role {
	case enum.SessionRoleRead:
		return a.ImapServer != ""
	case enum.SessionRoleSend:
		return a.SmtpServer != ""
	default:
		return false
	}
}

// Credentials is the per-request resolution of an account to concrete
// login material. Secret is empty for oauth2 accounts, where the access
// token is sourced from the token store instead.
type Credentials struct {
	Address   string
	Secret    string
	ImapLogin string
	AuthMode  enum.AuthMode
}

// LoginIdentifier returns the string to present at IMAP LOGIN time,
// preferring the provider-specific override.
func (c *Credentials) LoginIdentifier() string {
	if c.ImapLogin != "" {
		return c.ImapLogin
	}
	return c.Address
}
