package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"

	"github.com/operatorhq/mailops/interfaces"
	"github.com/operatorhq/mailops/internal/logger"
	"github.com/operatorhq/mailops/internal/models"
	"github.com/operatorhq/mailops/internal/tracing"
	"github.com/operatorhq/mailops/services/oauth"
)

const loginTimeout = 30 * time.Second

// Connector dials IMAP servers and hands back unauthenticated
// connections; the session factory drives the authentication handshake.
type Connector struct {
	log logger.Logger
}

func NewConnector(log logger.Logger) *Connector {
	return &Connector{log: log}
}

// Connect establishes a TLS connection to the account's IMAP server and
// verifies capabilities. Authentication is left to the caller.
func (c *Connector) Connect(ctx context.Context, account *models.Account) (interfaces.ReadConn, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPConnector.Connect")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("server", account.ImapServer)
	span.SetTag("port", account.ImapPort)

	serverAddr := fmt.Sprintf("%s:%d", account.ImapServer, account.ImapPort)

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	tlsConfig := &tls.Config{
		ServerName: account.ImapServer,
	}

	cl, err := client.DialWithDialerTLS(dialer, serverAddr, tlsConfig)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, fmt.Errorf("failed to connect to %s: %w", serverAddr, err)
	}

	caps, err := cl.Capability()
	if err != nil {
		cl.Logout()
		tracing.TraceErr(span, err)
		return nil, fmt.Errorf("failed to get capabilities: %w", err)
	}
	span.SetTag("server.capabilities", fmt.Sprintf("%v", caps))

	c.log.Debugf("Connected to %s", serverAddr)

	return &conn{client: cl, log: c.log}, nil
}

// conn wraps an established go-imap client pending authentication.
type conn struct {
	client *client.Client
	log    logger.Logger
}

func (c *conn) Login(username, secret string) error {
	c.client.Timeout = loginTimeout
	err := c.client.Login(username, secret)
	c.client.Timeout = 0
	if err != nil {
		return fmt.Errorf("failed to login as %s: %w", username, err)
	}
	return nil
}

func (c *conn) AuthenticateBearer(identity, accessToken string) error {
	c.client.Timeout = loginTimeout
	err := c.client.Authenticate(oauth.NewXOAuth2Client(identity, accessToken))
	c.client.Timeout = 0
	if err != nil {
		return fmt.Errorf("XOAUTH2 authentication failed for %s: %w", identity, err)
	}
	return nil
}

func (c *conn) Session() interfaces.ReadSession {
	return &mailboxSession{client: c.client, log: c.log}
}

func (c *conn) Close() error {
	c.client.Timeout = 5 * time.Second
	return c.client.Logout()
}
