package oauth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/operatorhq/mailops/config"
	"github.com/operatorhq/mailops/interfaces"
	"github.com/operatorhq/mailops/internal/enum"
	er "github.com/operatorhq/mailops/internal/errors"
	"github.com/operatorhq/mailops/internal/logger"
	"github.com/operatorhq/mailops/internal/models"
	"github.com/operatorhq/mailops/internal/tracing"
)

// OAuthService implements the authorization-code grant with refresh for
// the single Azure public-client registration. No client secret is ever
// transmitted. Successful exchanges persist through the token store; this
// service is the only writer of tokens.
type OAuthService struct {
	cfg        *config.AzureConfig
	log        logger.Logger
	tokenStore interfaces.TokenStore
	httpClient *http.Client
}

func NewOAuthService(cfg *config.AzureConfig, log logger.Logger, tokenStore interfaces.TokenStore) *OAuthService {
	return &OAuthService{
		cfg:        cfg,
		log:        log,
		tokenStore: tokenStore,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *OAuthService) authorizeEndpoint() string {
	return s.cfg.Authority + "/" + s.cfg.TenantID + "/oauth2/v2.0/authorize"
}

func (s *OAuthService) tokenEndpoint() string {
	return s.cfg.Authority + "/" + s.cfg.TenantID + "/oauth2/v2.0/token"
}

// AuthorizationURL builds the browser URL that starts the interactive
// consent flow.
func (s *OAuthService) AuthorizationURL() (string, error) {
	if s.cfg.ClientID == "" {
		return "", errors.Wrap(er.ErrNotConfigured, "AZURE_CLIENT_ID")
	}

	params := url.Values{}
	params.Set("client_id", s.cfg.ClientID)
	params.Set("response_type", "code")
	params.Set("redirect_uri", s.cfg.RedirectURI)
	params.Set("response_mode", "query")
	params.Set("scope", s.cfg.Scopes)
	params.Set("state", "12345")

	return s.authorizeEndpoint() + "?" + params.Encode(), nil
}

// ExchangeCode trades a one-time authorization code for a token set and
// persists it.
func (s *OAuthService) ExchangeCode(ctx context.Context, code string) (*models.TokenSet, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "OAuthService.ExchangeCode")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if s.cfg.ClientID == "" {
		return nil, errors.Wrap(er.ErrNotConfigured, "AZURE_CLIENT_ID")
	}

	form := url.Values{}
	form.Set("client_id", s.cfg.ClientID)
	form.Set("code", code)
	form.Set("redirect_uri", s.cfg.RedirectURI)
	form.Set("grant_type", enum.TokenGrantAuthorizationCode.String())
	form.Set("scope", s.cfg.Scopes)

	tokens, err := s.postTokenForm(ctx, form)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(er.ErrExchangeFailed, err.Error())
	}

	if err := s.tokenStore.Save(tokens); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	s.log.Infof("Authorization code exchanged, tokens saved")
	return tokens, nil
}

// Refresh trades the currently stored refresh token for a fresh token set
// and persists it. When the provider rotates refresh tokens, the rotated
// token is what gets saved, so sequential refreshes remain valid.
func (s *OAuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenSet, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "OAuthService.Refresh")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if s.cfg.ClientID == "" {
		return nil, errors.Wrap(er.ErrNotConfigured, "AZURE_CLIENT_ID")
	}

	form := url.Values{}
	form.Set("client_id", s.cfg.ClientID)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", enum.TokenGrantRefreshToken.String())
	form.Set("scope", s.cfg.Scopes)

	tokens, err := s.postTokenForm(ctx, form)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(er.ErrRefreshFailed, err.Error())
	}

	if err := s.tokenStore.Save(tokens); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	s.log.Infof("Access token refreshed")
	return tokens, nil
}

// postTokenForm performs the form-encoded POST shared by both grants. The
// provider's error payload is returned verbatim so the operator sees the
// exact server response.
func (s *OAuthService) postTokenForm(ctx context.Context, form url.Values) (*models.TokenSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenEndpoint(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(strings.TrimSpace(string(body)))
	}

	var tokens models.TokenSet
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, errors.Wrap(err, "unexpected token response")
	}
	if tokens.AccessToken == "" {
		return nil, errors.New("token response missing access_token")
	}

	return &tokens, nil
}

// ParseCallbackURL extracts the authorization code from the redirect URL
// the operator pastes back after consenting in the browser.
func ParseCallbackURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", errors.Wrap(err, "invalid callback URL")
	}

	query := parsed.Query()
	if errCode := query.Get("error"); errCode != "" {
		detail := query.Get("error_description")
		if detail == "" {
			detail = errCode
		}
		return "", errors.Errorf("provider returned error: %s", detail)
	}

	code := query.Get("code")
	if code == "" {
		return "", errors.New("no authorization code in URL")
	}

	return code, nil
}
