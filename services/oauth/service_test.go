package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/operatorhq/mailops/config"
	er "github.com/operatorhq/mailops/internal/errors"
	"github.com/operatorhq/mailops/internal/logger"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func testAzureConfig(authority string) *config.AzureConfig {
	return &config.AzureConfig{
		ClientID:    "client-123",
		TenantID:    "consumers",
		Authority:   authority,
		RedirectURI: "https://login.microsoftonline.com/common/oauth2/nativeclient",
		Scopes:      "https://outlook.office.com/IMAP.AccessAsUser.All offline_access",
	}
}

func TestOAuthService_AuthorizationURL(t *testing.T) {
	// Arrange
	service := NewOAuthService(testAzureConfig("https://login.microsoftonline.com"), getLogger(), testTokenStore(t))

	// Act
	rawURL, err := service.AuthorizationURL()

	// Assert
	assert.NoError(t, err)
	parsed, parseErr := url.Parse(rawURL)
	assert.NoError(t, parseErr)
	assert.Equal(t, "/consumers/oauth2/v2.0/authorize", parsed.Path)
	query := parsed.Query()
	assert.Equal(t, "client-123", query.Get("client_id"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "query", query.Get("response_mode"))
	assert.Equal(t, "12345", query.Get("state"))
	assert.Contains(t, query.Get("scope"), "offline_access")
}

func TestOAuthService_AuthorizationURLWithoutClientID(t *testing.T) {
	// Arrange
	cfg := testAzureConfig("https://login.microsoftonline.com")
	cfg.ClientID = ""
	service := NewOAuthService(cfg, getLogger(), testTokenStore(t))

	// Act
	rawURL, err := service.AuthorizationURL()

	// Assert
	assert.Empty(t, rawURL)
	assert.True(t, errors.Is(err, er.ErrNotConfigured))
	assert.Contains(t, err.Error(), "AZURE_CLIENT_ID")
}

func TestOAuthService_ExchangeCodePersistsTokens(t *testing.T) {
	// Arrange
	var gotGrant, gotCode string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		gotGrant = r.PostFormValue("grant_type")
		gotCode = r.PostFormValue("code")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"access-1","refresh_token":"refresh-1","token_type":"Bearer","expires_in":3600}`))
	}))
	defer server.Close()

	store := testTokenStore(t)
	service := NewOAuthService(testAzureConfig(server.URL), getLogger(), store)

	// Act
	tokens, err := service.ExchangeCode(context.Background(), "auth-code-1")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "authorization_code", gotGrant)
	assert.Equal(t, "auth-code-1", gotCode)
	assert.Equal(t, "access-1", tokens.AccessToken)
	assert.NotEmpty(t, tokens.SavedAt)

	persisted, loadErr := store.Load()
	assert.NoError(t, loadErr)
	assert.Equal(t, "access-1", persisted.AccessToken)
	assert.Equal(t, "refresh-1", persisted.RefreshToken)
}

func TestOAuthService_ExchangeCodeKeepsProviderError(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"AADSTS70008: The provided authorization code has expired."}`))
	}))
	defer server.Close()

	store := testTokenStore(t)
	service := NewOAuthService(testAzureConfig(server.URL), getLogger(), store)

	// Act
	tokens, err := service.ExchangeCode(context.Background(), "stale-code")

	// Assert
	assert.Nil(t, tokens)
	assert.True(t, errors.Is(err, er.ErrExchangeFailed))
	assert.Contains(t, err.Error(), "AADSTS70008")

	persisted, loadErr := store.Load()
	assert.NoError(t, loadErr)
	assert.Nil(t, persisted)
}

func TestOAuthService_RefreshPersistsRotatedTokens(t *testing.T) {
	// Arrange
	var gotGrant, gotRefreshToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		gotGrant = r.PostFormValue("grant_type")
		gotRefreshToken = r.PostFormValue("refresh_token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"access-2","refresh_token":"refresh-2","token_type":"Bearer","expires_in":3600}`))
	}))
	defer server.Close()

	store := testTokenStore(t)
	service := NewOAuthService(testAzureConfig(server.URL), getLogger(), store)

	// Act
	tokens, err := service.Refresh(context.Background(), "refresh-1")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "refresh_token", gotGrant)
	assert.Equal(t, "refresh-1", gotRefreshToken)
	assert.Equal(t, "access-2", tokens.AccessToken)

	persisted, loadErr := store.Load()
	assert.NoError(t, loadErr)
	assert.Equal(t, "refresh-2", persisted.RefreshToken)
}

func TestOAuthService_RefreshKeepsProviderError(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"AADSTS700082: The refresh token has expired due to inactivity."}`))
	}))
	defer server.Close()

	service := NewOAuthService(testAzureConfig(server.URL), getLogger(), testTokenStore(t))

	// Act
	tokens, err := service.Refresh(context.Background(), "expired-refresh")

	// Assert
	assert.Nil(t, tokens)
	assert.True(t, errors.Is(err, er.ErrRefreshFailed))
	assert.Contains(t, err.Error(), "AADSTS700082")
}

func TestOAuthService_ResponseWithoutAccessToken(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token_type":"Bearer"}`))
	}))
	defer server.Close()

	service := NewOAuthService(testAzureConfig(server.URL), getLogger(), testTokenStore(t))

	// Act
	tokens, err := service.ExchangeCode(context.Background(), "auth-code-1")

	// Assert
	assert.Nil(t, tokens)
	assert.True(t, errors.Is(err, er.ErrExchangeFailed))
	assert.Contains(t, err.Error(), "missing access_token")
}

func TestParseCallbackURL(t *testing.T) {
	// Act
	code, err := ParseCallbackURL("https://login.microsoftonline.com/common/oauth2/nativeclient?code=M.C107_BAY.2.U.abc-def&state=12345")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "M.C107_BAY.2.U.abc-def", code)
}

func TestParseCallbackURL_ProviderError(t *testing.T) {
	// Act
	code, err := ParseCallbackURL("https://login.microsoftonline.com/common/oauth2/nativeclient?error=access_denied&error_description=User+declined+consent")

	// Assert
	assert.Empty(t, code)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "User declined consent")
}

func TestParseCallbackURL_MissingCode(t *testing.T) {
	// Act
	code, err := ParseCallbackURL("https://login.microsoftonline.com/common/oauth2/nativeclient?state=12345")

	// Assert
	assert.Empty(t, code)
	assert.Error(t, err)
}
