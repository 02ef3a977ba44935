package services

import (
	"github.com/operatorhq/mailops/config"
	"github.com/operatorhq/mailops/interfaces"
	"github.com/operatorhq/mailops/internal/logger"
	"github.com/operatorhq/mailops/services/accounts"
	"github.com/operatorhq/mailops/services/imap"
	"github.com/operatorhq/mailops/services/oauth"
	"github.com/operatorhq/mailops/services/session"
	"github.com/operatorhq/mailops/services/smtp"
)

type Services struct {
	Registry           *accounts.Registry
	CredentialResolver *accounts.CredentialResolver
	TokenStore         interfaces.TokenStore
	OAuthService       interfaces.OAuthManager
	SessionFactory     *session.Factory
}

func InitServices(cfg *config.Config, log logger.Logger) *Services {
	registry := accounts.NewRegistry(cfg)
	resolver := accounts.NewCredentialResolver(registry)
	tokenStore := oauth.NewFileTokenStore(cfg.TokenStoreConfig)
	oauthService := oauth.NewOAuthService(cfg.AzureConfig, log, tokenStore)

	factory := session.NewFactory(
		registry,
		resolver,
		tokenStore,
		oauthService,
		imap.NewConnector(log),
		smtp.NewConnector(log),
		log,
	)

	return &Services{
		Registry:           registry,
		CredentialResolver: resolver,
		TokenStore:         tokenStore,
		OAuthService:       oauthService,
		SessionFactory:     factory,
	}
}
