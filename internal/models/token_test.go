package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenSet_HasRefreshToken(t *testing.T) {
	assert.True(t, (&TokenSet{RefreshToken: "refresh-1"}).HasRefreshToken())
	assert.False(t, (&TokenSet{AccessToken: "access-1"}).HasRefreshToken())
}

func TestTokenSet_Expired(t *testing.T) {
	// Arrange
	stale := &TokenSet{
		ExpiresIn: 3600,
		SavedAt:   time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC3339),
	}
	fresh := &TokenSet{
		ExpiresIn: 3600,
		SavedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	// Assert
	assert.True(t, stale.Expired())
	assert.False(t, fresh.Expired())
}

func TestTokenSet_ExpiredWithoutMetadata(t *testing.T) {
	// A token set lacking expiry metadata is never reported expired; the
	// server remains the authority
	assert.False(t, (&TokenSet{AccessToken: "access-1"}).Expired())
	assert.False(t, (&TokenSet{AccessToken: "access-1", ExpiresIn: 3600}).Expired())
	assert.False(t, (&TokenSet{AccessToken: "access-1", SavedAt: "not-a-date", ExpiresIn: 3600}).Expired())
}
