package accounts

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	er "github.com/operatorhq/mailops/internal/errors"
)

func TestCredentialResolver_Resolve(t *testing.T) {
	// Arrange
	t.Setenv("GMAIL_ADDRESS", "someone@gmail.com")
	t.Setenv("GMAIL_APP_PASSWORD", "abcdefghijklmnop")
	resolver := NewCredentialResolver(NewRegistry(testConfig()))

	// Act
	creds, err := resolver.Resolve(AccountGmail)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "someone@gmail.com", creds.Address)
	assert.Equal(t, "abcdefghijklmnop", creds.Secret)
}

func TestCredentialResolver_StripsAppPasswordSpaces(t *testing.T) {
	// Gmail displays app passwords in groups of four
	t.Setenv("GMAIL_ADDRESS", "someone@gmail.com")
	t.Setenv("GMAIL_APP_PASSWORD", "abcd efgh ijkl mnop")
	resolver := NewCredentialResolver(NewRegistry(testConfig()))

	// Act
	creds, err := resolver.Resolve(AccountGmail)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "abcdefghijklmnop", creds.Secret)
}

func TestCredentialResolver_MissingAddressNamesVariable(t *testing.T) {
	// Arrange
	t.Setenv("GMAIL_ADDRESS", "")
	resolver := NewCredentialResolver(NewRegistry(testConfig()))

	// Act
	creds, err := resolver.Resolve(AccountGmail)

	// Assert
	assert.Nil(t, creds)
	assert.True(t, errors.Is(err, er.ErrMissingCredential))
	assert.Contains(t, err.Error(), "GMAIL_ADDRESS")
}

func TestCredentialResolver_MissingPasswordNamesVariable(t *testing.T) {
	// Arrange
	t.Setenv("AC_CRETEIL_EMAIL", "prof@ac-creteil.fr")
	t.Setenv("AC_CRETEIL_PASSWORD", "")
	resolver := NewCredentialResolver(NewRegistry(testConfig()))

	// Act
	creds, err := resolver.Resolve(AccountAcCreteil)

	// Assert
	assert.Nil(t, creds)
	assert.True(t, errors.Is(err, er.ErrMissingCredential))
	assert.Contains(t, err.Error(), "AC_CRETEIL_PASSWORD")
}

func TestCredentialResolver_OAuthAccountNeedsNoPassword(t *testing.T) {
	// Arrange
	t.Setenv("HOTMAIL_ADDRESS", "someone@hotmail.com")
	resolver := NewCredentialResolver(NewRegistry(testConfig()))

	// Act
	creds, err := resolver.Resolve(AccountHotmail)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "someone@hotmail.com", creds.Address)
	assert.Empty(t, creds.Secret)
}

func TestCredentialResolver_ImapLoginOverride(t *testing.T) {
	// Arrange
	t.Setenv("AC_CRETEIL_EMAIL", "prof@ac-creteil.fr")
	t.Setenv("AC_CRETEIL_PASSWORD", "secret")
	cfg := testConfig()
	cfg.AcCreteilConfig.ImapLogin = "pdupont"
	resolver := NewCredentialResolver(NewRegistry(cfg))

	// Act
	creds, err := resolver.Resolve(AccountAcCreteil)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "pdupont", creds.LoginIdentifier())
	assert.Equal(t, "prof@ac-creteil.fr", creds.Address)
}

func TestCredentialResolver_UnknownAccount(t *testing.T) {
	// Arrange
	resolver := NewCredentialResolver(NewRegistry(testConfig()))

	// Act
	creds, err := resolver.Resolve("fastmail")

	// Assert
	assert.Nil(t, creds)
	assert.True(t, errors.Is(err, er.ErrUnknownAccount))
}
