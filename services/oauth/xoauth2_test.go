package oauth

import (
	"encoding/base64"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerAssertion(t *testing.T) {
	// Act
	assertion := BearerAssertion("user@hotmail.com", "token-1")

	// Assert
	assert.Equal(t, "user=user@hotmail.com\x01auth=Bearer token-1\x01\x01", assertion)
}

func TestBearerAssertionBase64(t *testing.T) {
	// Act
	encoded := BearerAssertionBase64("user@hotmail.com", "token-1")

	// Assert
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	assert.NoError(t, err)
	assert.Equal(t, BearerAssertion("user@hotmail.com", "token-1"), string(decoded))
}

func TestXOAuth2Client_Start(t *testing.T) {
	// Arrange
	client := NewXOAuth2Client("user@hotmail.com", "token-1")

	// Act
	mechanism, initial, err := client.Start()

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "XOAUTH2", mechanism)
	assert.Equal(t, BearerAssertion("user@hotmail.com", "token-1"), string(initial))
}

func TestXOAuth2Client_NextReturnsEmptyLine(t *testing.T) {
	// Arrange
	client := NewXOAuth2Client("user@hotmail.com", "token-1")

	// Act
	response, err := client.Next([]byte(`{"status":"401"}`))

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, []byte(""), response)
}

func TestXOAuth2SmtpAuth_Start(t *testing.T) {
	// Arrange
	auth := NewXOAuth2SmtpAuth("user@hotmail.com", "token-1")

	// Act
	mechanism, initial, err := auth.Start(&smtp.ServerInfo{Name: "smtp.office365.com", TLS: true})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "XOAUTH2", mechanism)
	assert.Equal(t, BearerAssertion("user@hotmail.com", "token-1"), string(initial))
}

func TestXOAuth2SmtpAuth_StartWithoutTLS(t *testing.T) {
	// Arrange
	auth := NewXOAuth2SmtpAuth("user@hotmail.com", "token-1")

	// Act
	_, _, err := auth.Start(&smtp.ServerInfo{Name: "smtp.office365.com", TLS: false})

	// Assert
	assert.Error(t, err)
}
