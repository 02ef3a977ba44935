package models

import (
	"time"

	"github.com/operatorhq/mailops/internal/utils"
)

// EmailMessage is a message summary or full read as returned to the CLI.
// ID is the IMAP sequence number within the selected folder.
type EmailMessage struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to,omitempty"`
	ReplyTo   string `json:"reply_to,omitempty"`
	Subject   string `json:"subject"`
	Date      string `json:"date"`
	MessageID string `json:"message_id,omitempty"`
	Unread    bool   `json:"unread"`
	Preview   string `json:"preview,omitempty"`
	Body      string `json:"body,omitempty"`
}

// OutgoingEmail is a message prepared for SMTP submission.
type OutgoingEmail struct {
	FromAddress string
	ToAddress   string
	Subject     string
	BodyText    string
	InReplyTo   string
	MessageID   string
}

// BuildHeaders generates the wire headers for the message. The Message-ID
// is generated on first use so retries reuse the same ID.
func (e *OutgoingEmail) BuildHeaders() map[string]string {
	if e.MessageID == "" {
		e.MessageID = utils.GenerateMessageID(e.FromAddress)
	}

	headers := map[string]string{
		"From":         e.FromAddress,
		"To":           e.ToAddress,
		"Subject":      e.Subject,
		"Date":         time.Now().Format(time.RFC1123Z),
		"Message-ID":   e.MessageID,
		"MIME-Version": "1.0",
	}

	if e.InReplyTo != "" {
		ref := utils.EnsureAngleBrackets(e.InReplyTo)
		headers["In-Reply-To"] = ref
		headers["References"] = ref
	}

	return headers
}
