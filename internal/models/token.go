package models

import (
	"time"

	"github.com/operatorhq/mailops/internal/utils"
)

// TokenSet mirrors the provider's token endpoint response plus the
// saved_at stamp recorded at persist time. Field names match the on-disk
// token file and must not change.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`
	SavedAt      string `json:"saved_at,omitempty"`
}

// HasRefreshToken reports whether a refresh exchange is possible. Some
// grant responses omit the refresh token, in which case the access token
// is usable until the server rejects it and recovery requires re-running
// the interactive flow.
func (t *TokenSet) HasRefreshToken() bool {
	return t.RefreshToken != ""
}

// Expired reports whether the access token is past its advertised
// lifetime, judged from saved_at. Informational only: session
// establishment always tries the stored token first and reacts to the
// server's verdict.
func (t *TokenSet) Expired() bool {
	if t.SavedAt == "" || t.ExpiresIn <= 0 {
		return false
	}
	savedAt, err := time.Parse(time.RFC3339, t.SavedAt)
	if err != nil {
		return false
	}
	return utils.Now().After(savedAt.Add(time.Duration(t.ExpiresIn) * time.Second))
}

// TokenStatus is the operator-facing report of the durable token state.
type TokenStatus struct {
	Configured      bool   `json:"configured"`
	HasRefreshToken bool   `json:"has_refresh_token,omitempty"`
	SavedAt         string `json:"saved_at,omitempty"`
	TokenFile       string `json:"token_file,omitempty"`
}
