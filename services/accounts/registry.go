package accounts

import (
	"github.com/pkg/errors"

	"github.com/operatorhq/mailops/config"
	"github.com/operatorhq/mailops/internal/enum"
	er "github.com/operatorhq/mailops/internal/errors"
	"github.com/operatorhq/mailops/internal/models"
)

const (
	AccountGmail     = "gmail"
	AccountAcCreteil = "ac-creteil"
	AccountHotmail   = "hotmail"
)

// Registry holds the frozen account table. Built once from config at
// startup; read-only afterwards.
type Registry struct {
	accounts map[string]*models.Account
}

func NewRegistry(cfg *config.Config) *Registry {
	accounts := map[string]*models.Account{
		AccountGmail: {
			ID:           AccountGmail,
			ImapServer:   cfg.GmailConfig.ImapServer,
			ImapPort:     cfg.GmailConfig.ImapPort,
			SmtpServer:   cfg.GmailConfig.SmtpServer,
			SmtpPort:     cfg.GmailConfig.SmtpPort,
			SmtpSecurity: enum.EmailSecurityStartTLS,
			AuthMode:     enum.AuthModeStatic,
			AddressEnv:   "GMAIL_ADDRESS",
			PasswordEnv:  "GMAIL_APP_PASSWORD",
		},
		AccountAcCreteil: {
			ID:           AccountAcCreteil,
			ImapServer:   cfg.AcCreteilConfig.ImapServer,
			ImapPort:     cfg.AcCreteilConfig.ImapPort,
			SmtpServer:   cfg.AcCreteilConfig.SmtpServer,
			SmtpPort:     cfg.AcCreteilConfig.SmtpPort,
			SmtpSecurity: enum.EmailSecuritySSL,
			AuthMode:     enum.AuthModeStatic,
			AddressEnv:   "AC_CRETEIL_EMAIL",
			PasswordEnv:  "AC_CRETEIL_PASSWORD",
			ImapLogin:    cfg.AcCreteilConfig.ImapLogin,
		},
		AccountHotmail: {
			ID:           AccountHotmail,
			ImapServer:   cfg.HotmailConfig.ImapServer,
			ImapPort:     cfg.HotmailConfig.ImapPort,
			SmtpServer:   cfg.HotmailConfig.SmtpServer,
			SmtpPort:     cfg.HotmailConfig.SmtpPort,
			SmtpSecurity: enum.EmailSecurityStartTLS,
			AuthMode:     enum.AuthModeOAuth2,
			AddressEnv:   "HOTMAIL_ADDRESS",
		},
	}

	return &Registry{accounts: accounts}
}

// Lookup resolves an account identifier to its frozen profile.
func (r *Registry) Lookup(accountID string) (*models.Account, error) {
	account, ok := r.accounts[accountID]
	if !ok {
		return nil, errors.Wrap(er.ErrUnknownAccount, accountID)
	}
	return account, nil
}

// IDs returns the enumerated account identifiers.
func (r *Registry) IDs() []string {
	return []string{AccountGmail, AccountAcCreteil, AccountHotmail}
}
