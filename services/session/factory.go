package session

import (
	"context"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/operatorhq/mailops/interfaces"
	"github.com/operatorhq/mailops/internal/enum"
	er "github.com/operatorhq/mailops/internal/errors"
	"github.com/operatorhq/mailops/internal/logger"
	"github.com/operatorhq/mailops/internal/models"
	"github.com/operatorhq/mailops/internal/tracing"
	"github.com/operatorhq/mailops/services/accounts"
)

// Factory produces authenticated protocol sessions. For oauth2 accounts it
// performs exactly one refresh-then-retry cycle when the server rejects
// the stored access token; every other failure surfaces immediately.
type Factory struct {
	registry      *accounts.Registry
	resolver      *accounts.CredentialResolver
	tokenStore    interfaces.TokenStore
	oauthManager  interfaces.OAuthManager
	readConnector interfaces.ReadConnector
	sendConnector interfaces.SendConnector
	log           logger.Logger
}

func NewFactory(
	registry *accounts.Registry,
	resolver *accounts.CredentialResolver,
	tokenStore interfaces.TokenStore,
	oauthManager interfaces.OAuthManager,
	readConnector interfaces.ReadConnector,
	sendConnector interfaces.SendConnector,
	log logger.Logger,
) *Factory {
	return &Factory{
		registry:      registry,
		resolver:      resolver,
		tokenStore:    tokenStore,
		oauthManager:  oauthManager,
		readConnector: readConnector,
		sendConnector: sendConnector,
		log:           log,
	}
}

// authConn is the authentication surface shared by read and send
// connections.
type authConn interface {
	Login(username, secret string) error
	AuthenticateBearer(identity, accessToken string) error
	Close() error
}

// OpenReadSession returns an authenticated mailbox session for the
// account. The caller owns the session and must Close it.
func (f *Factory) OpenReadSession(ctx context.Context, accountID string) (interfaces.ReadSession, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Factory.OpenReadSession")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagAccount(span, accountID)

	account, creds, err := f.prepare(accountID, enum.SessionRoleRead)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	conn, err := f.readConnector.Connect(ctx, account)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(er.ErrConnectionFailed, err.Error())
	}

	if err := f.authenticate(ctx, conn, creds, enum.SessionRoleRead); err != nil {
		conn.Close()
		tracing.TraceErr(span, err)
		return nil, err
	}

	f.log.Infof("Opened read session for %s", accountID)
	return conn.Session(), nil
}

// OpenSendSession returns an authenticated submission session for the
// account.
func (f *Factory) OpenSendSession(ctx context.Context, accountID string) (interfaces.SendSession, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Factory.OpenSendSession")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagAccount(span, accountID)

	account, creds, err := f.prepare(accountID, enum.SessionRoleSend)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	conn, err := f.sendConnector.Connect(ctx, account)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(er.ErrConnectionFailed, err.Error())
	}

	if err := f.authenticate(ctx, conn, creds, enum.SessionRoleSend); err != nil {
		conn.Close()
		tracing.TraceErr(span, err)
		return nil, err
	}

	f.log.Infof("Opened send session for %s", accountID)
	return conn.Session(), nil
}

// ResolveCredentials exposes credential resolution to collaborators that
// only need the resolved address (draft preparation).
func (f *Factory) ResolveCredentials(accountID string) (*models.Credentials, error) {
	return f.resolver.Resolve(accountID)
}

func (f *Factory) prepare(accountID string, role enum.SessionRole) (*models.Account, *models.Credentials, error) {
	account, err := f.registry.Lookup(accountID)
	if err != nil {
		return nil, nil, err
	}

	if !account.SupportsRole(role) {
		return nil, nil, errors.Wrapf(er.ErrProtocolUnsupported, "%s for %s", role, accountID)
	}

	creds, err := f.resolver.Resolve(accountID)
	if err != nil {
		return nil, nil, err
	}

	return account, creds, nil
}

// authenticate runs the per-attempt state machine. Static accounts get a
// single login attempt. OAuth accounts try the stored access token first
// and, only when that attempt itself fails, refresh once and retry on the
// same connection. A second rejection is terminal.
func (f *Factory) authenticate(ctx context.Context, conn authConn, creds *models.Credentials, role enum.SessionRole) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Factory.authenticate")
	defer span.Finish()
	span.LogFields(tracingLog.String("auth_mode", creds.AuthMode.String()))

	if creds.AuthMode == enum.AuthModeStatic {
		username := creds.Address
		if role == enum.SessionRoleRead {
			username = creds.LoginIdentifier()
		}
		if err := conn.Login(username, creds.Secret); err != nil {
			tracing.TraceErr(span, err)
			return errors.Wrap(er.ErrAuthenticationFailed, err.Error())
		}
		return nil
	}

	accessToken, err := f.tokenStore.CurrentAccessToken()
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	firstErr := conn.AuthenticateBearer(creds.Address, accessToken)
	if firstErr == nil {
		return nil
	}
	span.LogFields(tracingLog.String("first_attempt_error", firstErr.Error()))

	tokens, err := f.tokenStore.Load()
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if tokens == nil || !tokens.HasRefreshToken() {
		err := errors.Wrap(er.ErrOAuthExpiredNoRefresh, firstErr.Error())
		tracing.TraceErr(span, err)
		return err
	}

	f.log.Warnf("Bearer authentication rejected, refreshing access token")
	refreshed, err := f.oauthManager.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	if err := conn.AuthenticateBearer(creds.Address, refreshed.AccessToken); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(er.ErrAuthenticationFailed, err.Error())
	}

	return nil
}
