package interfaces

import (
	"context"

	"github.com/operatorhq/mailops/internal/models"
)

// TokenStore persists OAuth token sets across process restarts. Load
// returns (nil, nil) when no usable token set exists; only unexpected I/O
// failures surface as errors.
type TokenStore interface {
	Save(tokens *models.TokenSet) error
	Load() (*models.TokenSet, error)
	CurrentAccessToken() (string, error)
	Status() *models.TokenStatus
}

// OAuthManager owns the authorization-code and refresh-token exchanges
// against the identity provider. Successful exchanges are persisted to the
// token store before returning.
type OAuthManager interface {
	AuthorizationURL() (string, error)
	ExchangeCode(ctx context.Context, code string) (*models.TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenSet, error)
}
