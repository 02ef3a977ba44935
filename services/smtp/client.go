package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/operatorhq/mailops/interfaces"
	"github.com/operatorhq/mailops/internal/enum"
	"github.com/operatorhq/mailops/internal/logger"
	"github.com/operatorhq/mailops/internal/models"
	"github.com/operatorhq/mailops/internal/tracing"
	"github.com/operatorhq/mailops/services/oauth"
)

// Connector dials SMTP submission servers. Accounts marked implicit-TLS
// get a TLS dial; everything else connects in the clear and upgrades with
// STARTTLS before any credentials are sent.
type Connector struct {
	log logger.Logger
}

func NewConnector(log logger.Logger) *Connector {
	return &Connector{log: log}
}

func (c *Connector) Connect(ctx context.Context, account *models.Account) (interfaces.SendConn, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPConnector.Connect")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("server", account.SmtpServer)
	span.SetTag("port", account.SmtpPort)
	span.SetTag("security", account.SmtpSecurity.String())

	addr := fmt.Sprintf("%s:%d", account.SmtpServer, account.SmtpPort)

	tlsConfig := &tls.Config{
		ServerName: account.SmtpServer,
	}

	var cl *smtp.Client

	if account.SmtpSecurity == enum.EmailSecuritySSL {
		tlsConn, err := tls.DialWithDialer(&net.Dialer{Timeout: 30 * time.Second}, "tcp", addr, tlsConfig)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		cl, err = smtp.NewClient(tlsConn, account.SmtpServer)
		if err != nil {
			tlsConn.Close()
			tracing.TraceErr(span, err)
			return nil, fmt.Errorf("failed to create SMTP client: %w", err)
		}
	} else {
		plainConn, err := net.DialTimeout("tcp", addr, 30*time.Second)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		cl, err = smtp.NewClient(plainConn, account.SmtpServer)
		if err != nil {
			plainConn.Close()
			tracing.TraceErr(span, err)
			return nil, fmt.Errorf("failed to create SMTP client: %w", err)
		}
		if err = cl.StartTLS(tlsConfig); err != nil {
			cl.Close()
			tracing.TraceErr(span, err)
			return nil, fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	c.log.Debugf("Connected to %s", addr)

	return &conn{client: cl, account: account, log: c.log}, nil
}

// conn wraps an established submission connection pending
// authentication.
type conn struct {
	client  *smtp.Client
	account *models.Account
	log     logger.Logger
}

func (c *conn) Login(username, secret string) error {
	auth := smtp.PlainAuth("", username, secret, c.account.SmtpServer)
	if err := c.client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	return nil
}

func (c *conn) AuthenticateBearer(identity, accessToken string) error {
	auth := oauth.NewXOAuth2SmtpAuth(identity, accessToken)
	if err := c.client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP XOAUTH2 authentication failed: %w", err)
	}
	return nil
}

func (c *conn) Session() interfaces.SendSession {
	return &submitSession{client: c.client, log: c.log}
}

func (c *conn) Close() error {
	return c.client.Close()
}
