package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutgoingEmail_BuildHeaders(t *testing.T) {
	// Arrange
	email := &OutgoingEmail{
		FromAddress: "prof@ac-creteil.fr",
		ToAddress:   "parent@example.com",
		Subject:     "Réunion parents-professeurs",
		BodyText:    "Bonjour",
	}

	// Act
	headers := email.BuildHeaders()

	// Assert
	assert.Equal(t, "prof@ac-creteil.fr", headers["From"])
	assert.Equal(t, "parent@example.com", headers["To"])
	assert.Equal(t, "Réunion parents-professeurs", headers["Subject"])
	assert.Equal(t, "1.0", headers["MIME-Version"])
	assert.NotEmpty(t, headers["Date"])
	assert.True(t, strings.HasPrefix(headers["Message-ID"], "<"))
	assert.True(t, strings.HasSuffix(headers["Message-ID"], "@ac-creteil.fr>"))
	_, hasReply := headers["In-Reply-To"]
	assert.False(t, hasReply)
}

func TestOutgoingEmail_BuildHeadersThreading(t *testing.T) {
	// Arrange
	email := &OutgoingEmail{
		FromAddress: "prof@ac-creteil.fr",
		ToAddress:   "parent@example.com",
		Subject:     "Re: Réunion",
		BodyText:    "Bonjour",
		InReplyTo:   "abc123@mail.example.com",
	}

	// Act
	headers := email.BuildHeaders()

	// Assert
	assert.Equal(t, "<abc123@mail.example.com>", headers["In-Reply-To"])
	assert.Equal(t, "<abc123@mail.example.com>", headers["References"])
}

func TestOutgoingEmail_BuildHeadersReusesMessageID(t *testing.T) {
	// Arrange
	email := &OutgoingEmail{
		FromAddress: "prof@ac-creteil.fr",
		ToAddress:   "parent@example.com",
		Subject:     "Sujet",
		BodyText:    "Bonjour",
	}

	// Act
	first := email.BuildHeaders()["Message-ID"]
	second := email.BuildHeaders()["Message-ID"]

	// Assert
	assert.Equal(t, first, second)
}
