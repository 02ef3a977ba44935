package oauth

import (
	"encoding/base64"
	"fmt"
	"net/smtp"

	"github.com/emersion/go-sasl"
	"github.com/pkg/errors"
)

// BearerAssertion builds the XOAUTH2 authentication blob shared by the
// IMAP and SMTP handshakes: user identity, bearer marker and access token,
// separated by 0x01 and double-terminated.
func BearerAssertion(username, accessToken string) string {
	return fmt.Sprintf("user=%s\x01auth=Bearer %s\x01\x01", username, accessToken)
}

// BearerAssertionBase64 is the encoded form expected by protocols that
// take the initial response as a base64 line.
func BearerAssertionBase64(username, accessToken string) string {
	return base64.StdEncoding.EncodeToString([]byte(BearerAssertion(username, accessToken)))
}

type xoauth2Client struct {
	username    string
	accessToken string
}

// NewXOAuth2Client returns a sasl.Client implementing the XOAUTH2
// mechanism for go-imap's Authenticate.
func NewXOAuth2Client(username, accessToken string) sasl.Client {
	return &xoauth2Client{username: username, accessToken: accessToken}
}

func (c *xoauth2Client) Start() (string, []byte, error) {
	return "XOAUTH2", []byte(BearerAssertion(c.username, c.accessToken)), nil
}

// Next is only invoked when the server rejects the initial response and
// sends a challenge; replying with an empty line makes the server emit the
// final NO so the error surfaces through the normal path.
func (c *xoauth2Client) Next(challenge []byte) ([]byte, error) {
	return []byte(""), nil
}

type xoauth2SmtpAuth struct {
	username    string
	accessToken string
}

// NewXOAuth2SmtpAuth returns an smtp.Auth implementing XOAUTH2 for
// net/smtp's Auth step.
func NewXOAuth2SmtpAuth(username, accessToken string) smtp.Auth {
	return &xoauth2SmtpAuth{username: username, accessToken: accessToken}
}

func (a *xoauth2SmtpAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS {
		return "", nil, errors.New("XOAUTH2 requires a TLS connection")
	}
	return "XOAUTH2", []byte(BearerAssertion(a.username, a.accessToken)), nil
}

func (a *xoauth2SmtpAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if more {
		// Server sent an error challenge; an empty response triggers the
		// final 535 reply.
		return []byte(""), nil
	}
	return nil, nil
}
