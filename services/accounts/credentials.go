package accounts

import (
	"os"

	"github.com/pkg/errors"

	"github.com/operatorhq/mailops/internal/enum"
	er "github.com/operatorhq/mailops/internal/errors"
	"github.com/operatorhq/mailops/internal/models"
	"github.com/operatorhq/mailops/internal/utils"
)

// CredentialResolver turns an account identifier into concrete login
// material. Pure lookup and validation; secrets are read at resolve time
// and never retained.
type CredentialResolver struct {
	registry *Registry
}

func NewCredentialResolver(registry *Registry) *CredentialResolver {
	return &CredentialResolver{registry: registry}
}

// Resolve validates the account's credential sources and returns the
// per-request Credentials. For oauth2 accounts the secret stays empty; the
// access token is fetched from the token store at session-open time.
func (r *CredentialResolver) Resolve(accountID string) (*models.Credentials, error) {
	account, err := r.registry.Lookup(accountID)
	if err != nil {
		return nil, err
	}

	address := os.Getenv(account.AddressEnv)
	if address == "" {
		return nil, errors.Wrap(er.ErrMissingCredential, account.AddressEnv)
	}

	creds := &models.Credentials{
		Address:   address,
		ImapLogin: account.ImapLogin,
		AuthMode:  account.AuthMode,
	}

	if account.AuthMode == enum.AuthModeOAuth2 {
		return creds, nil
	}

	secret := os.Getenv(account.PasswordEnv)
	if secret == "" {
		return nil, errors.Wrap(er.ErrMissingCredential, account.PasswordEnv)
	}

	// App passwords are often displayed with grouping spaces; servers
	// expect the compact form.
	creds.Secret = utils.StripWhitespace(secret)

	return creds, nil
}
