package config

import (
	"github.com/operatorhq/mailops/internal/logger"
	"github.com/operatorhq/mailops/internal/tracing"
)

type AppConfig struct {
	Logger  *logger.Config
	Tracing *tracing.JaegerConfig
}

// GmailConfig covers the Gmail account (app-password authentication).
type GmailConfig struct {
	ImapServer string `env:"GMAIL_IMAP" envDefault:"imap.gmail.com"`
	ImapPort   int    `env:"GMAIL_IMAP_PORT" envDefault:"993"`
	SmtpServer string `env:"GMAIL_SMTP" envDefault:"smtp.gmail.com"`
	SmtpPort   int    `env:"GMAIL_SMTP_PORT" envDefault:"587"`
}

// AcCreteilConfig covers the academy account. SMTP is submission over
// implicit TLS on 465, and IMAP login may use an identifier distinct from
// the public address.
type AcCreteilConfig struct {
	ImapServer string `env:"AC_CRETEIL_IMAP" envDefault:"imap.ac-creteil.fr"`
	ImapPort   int    `env:"AC_CRETEIL_IMAP_PORT" envDefault:"993"`
	SmtpServer string `env:"AC_CRETEIL_SMTP" envDefault:"smtp.ac-creteil.fr"`
	SmtpPort   int    `env:"AC_CRETEIL_SMTP_PORT" envDefault:"465"`
	ImapLogin  string `env:"AC_CRETEIL_IMAP_LOGIN"`
}

// HotmailConfig covers the Outlook consumer account (XOAUTH2).
type HotmailConfig struct {
	ImapServer string `env:"HOTMAIL_IMAP" envDefault:"outlook.office365.com"`
	ImapPort   int    `env:"HOTMAIL_IMAP_PORT" envDefault:"993"`
	SmtpServer string `env:"HOTMAIL_SMTP" envDefault:"smtp.office365.com"`
	SmtpPort   int    `env:"HOTMAIL_SMTP_PORT" envDefault:"587"`
}

// AzureConfig is the single identity-provider registration. The client is
// registered as a public (desktop) app, so no client secret is ever sent.
type AzureConfig struct {
	ClientID    string `env:"AZURE_CLIENT_ID"`
	TenantID    string `env:"AZURE_TENANT_ID" envDefault:"consumers"`
	Authority   string `env:"AZURE_AUTHORITY" envDefault:"https://login.microsoftonline.com"`
	RedirectURI string `env:"AZURE_REDIRECT_URI" envDefault:"https://login.microsoftonline.com/common/oauth2/nativeclient"`
	Scopes      string `env:"AZURE_SCOPES" envDefault:"https://outlook.office.com/IMAP.AccessAsUser.All https://outlook.office.com/SMTP.Send offline_access"`
}

// TokenStoreConfig locates the durable token file. When Path is empty the
// store falls back to the default under the operator's home directory.
type TokenStoreConfig struct {
	Path string `env:"MAILOPS_TOKEN_FILE"`
}
