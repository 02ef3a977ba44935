package imap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/jhillyerd/enmime"
	"github.com/opentracing/opentracing-go"

	"github.com/operatorhq/mailops/interfaces"
	"github.com/operatorhq/mailops/internal/logger"
	"github.com/operatorhq/mailops/internal/models"
	"github.com/operatorhq/mailops/internal/tracing"
	"github.com/operatorhq/mailops/internal/utils"
)

const (
	inboxFolder    = "INBOX"
	previewLength  = 150
	defaultListCap = 10
)

// mailboxSession is an authenticated IMAP session bound to one account.
// IDs handed to callers are sequence numbers within INBOX.
type mailboxSession struct {
	client *client.Client
	log    logger.Logger
}

func (s *mailboxSession) ListMessages(ctx context.Context, opts interfaces.ListOptions) ([]*models.EmailMessage, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailboxSession.ListMessages")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	criteria := imap.NewSearchCriteria()
	if opts.UnreadOnly {
		criteria.WithoutFlags = append(criteria.WithoutFlags, imap.SeenFlag)
	}
	if opts.FromFilter != "" {
		criteria.Header.Add("From", opts.FromFilter)
	}

	messages, err := s.fetchMatching(ctx, criteria, opts.Limit, false)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return messages, nil
}

func (s *mailboxSession) SearchMessages(ctx context.Context, opts interfaces.SearchOptions) ([]*models.EmailMessage, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailboxSession.SearchMessages")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	criteria := imap.NewSearchCriteria()
	if opts.From != "" {
		criteria.Header.Add("From", opts.From)
	}
	if opts.Subject != "" {
		criteria.Header.Add("Subject", opts.Subject)
	}
	if opts.Keyword != "" {
		criteria.Body = append(criteria.Body, opts.Keyword)
	}
	if opts.UnreadOnly {
		criteria.WithoutFlags = append(criteria.WithoutFlags, imap.SeenFlag)
	}

	messages, err := s.fetchMatching(ctx, criteria, opts.Limit, false)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return messages, nil
}

func (s *mailboxSession) ReadMessage(ctx context.Context, id string) (*models.EmailMessage, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailboxSession.ReadMessage")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("message_id", id)

	seqNum, err := parseSeqID(id)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if _, err := s.client.Select(inboxFolder, false); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNum)

	fetched, err := s.fetchSeqSet(seqSet, 1)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if len(fetched) == 0 {
		err = fmt.Errorf("email %s not found", id)
		tracing.TraceErr(span, err)
		return nil, err
	}

	message := buildMessage(fetched[0], true)
	return message, nil
}

func (s *mailboxSession) ListFolders(ctx context.Context) ([]string, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "MailboxSession.ListFolders")
	defer span.Finish()

	mailboxes := make(chan *imap.MailboxInfo, 10)
	done := make(chan error, 1)
	go func() {
		done <- s.client.List("", "*", mailboxes)
	}()

	var folders []string
	for mbox := range mailboxes {
		folders = append(folders, mbox.Name)
	}

	if err := <-done; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return folders, nil
}

func (s *mailboxSession) MoveMessage(ctx context.Context, id string, folder string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "MailboxSession.MoveMessage")
	defer span.Finish()
	span.SetTag("message_id", id)
	span.SetTag("folder", folder)

	seqNum, err := parseSeqID(id)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	if _, err := s.client.Select(inboxFolder, false); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	// Create the destination first; the error is ignored because the
	// folder usually already exists.
	_ = s.client.Create(folder)

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNum)

	if err := s.client.Copy(seqSet, folder); err != nil {
		tracing.TraceErr(span, err)
		return fmt.Errorf("failed to copy email to %s: %w", folder, err)
	}

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := s.client.Store(seqSet, item, []interface{}{imap.DeletedFlag}, nil); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	if err := s.client.Expunge(nil); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	return nil
}

func (s *mailboxSession) MarkRead(ctx context.Context, id string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "MailboxSession.MarkRead")
	defer span.Finish()
	span.SetTag("message_id", id)

	seqNum, err := parseSeqID(id)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	if _, err := s.client.Select(inboxFolder, false); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNum)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := s.client.Store(seqSet, item, []interface{}{imap.SeenFlag}, nil); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	return nil
}

func (s *mailboxSession) Close() error {
	s.client.Timeout = 5 * time.Second
	return s.client.Logout()
}

// fetchMatching selects INBOX, searches, and fetches the newest matches
// first.
func (s *mailboxSession) fetchMatching(ctx context.Context, criteria *imap.SearchCriteria, limit int, fullBody bool) ([]*models.EmailMessage, error) {
	if limit <= 0 {
		limit = defaultListCap
	}

	if _, err := s.client.Select(inboxFolder, false); err != nil {
		return nil, err
	}

	seqNums, err := s.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search emails: %w", err)
	}

	if len(seqNums) == 0 {
		return []*models.EmailMessage{}, nil
	}

	if len(seqNums) > limit {
		seqNums = seqNums[len(seqNums)-limit:]
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)

	fetched, err := s.fetchSeqSet(seqSet, len(seqNums))
	if err != nil {
		return nil, err
	}

	// Newest first
	results := make([]*models.EmailMessage, 0, len(fetched))
	for i := len(fetched) - 1; i >= 0; i-- {
		results = append(results, buildMessage(fetched[i], fullBody))
	}

	return results, nil
}

func (s *mailboxSession) fetchSeqSet(seqSet *imap.SeqSet, capacity int) ([]*imap.Message, error) {
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchFlags}

	messages := make(chan *imap.Message, capacity)
	done := make(chan error, 1)
	go func() {
		done <- s.client.Fetch(seqSet, items, messages)
	}()

	var fetched []*imap.Message
	for msg := range messages {
		fetched = append(fetched, msg)
	}

	if err := <-done; err != nil {
		return nil, err
	}

	return fetched, nil
}

// buildMessage converts a fetched IMAP message into the CLI-facing shape.
// With fullBody false only a flattened preview is produced.
func buildMessage(msg *imap.Message, fullBody bool) *models.EmailMessage {
	message := &models.EmailMessage{
		ID:      strconv.FormatUint(uint64(msg.SeqNum), 10),
		Subject: "(no subject)",
		Unread:  !hasFlag(msg.Flags, imap.SeenFlag),
	}

	section := &imap.BodySectionName{Peek: true}
	literal := msg.GetBody(section)
	if literal == nil {
		return message
	}

	raw, err := io.ReadAll(literal)
	if err != nil {
		return message
	}

	envelope, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return message
	}

	message.From = envelope.GetHeader("From")
	message.To = envelope.GetHeader("To")
	if subject := envelope.GetHeader("Subject"); subject != "" {
		message.Subject = subject
	}
	message.Date = formatDate(envelope.GetHeader("Date"))

	body := extractBody(envelope)
	if fullBody {
		message.ReplyTo = envelope.GetHeader("Reply-To")
		if message.ReplyTo == "" {
			message.ReplyTo = message.From
		}
		message.MessageID = envelope.GetHeader("Message-ID")
		message.Body = body
	} else {
		message.Preview = utils.TruncatePreview(utils.CleanPreview(body), previewLength)
	}

	return message
}

// extractBody prefers the plain part and falls back to converted HTML.
func extractBody(envelope *enmime.Envelope) string {
	if text := strings.TrimSpace(envelope.Text); text != "" {
		return text
	}
	if envelope.HTML != "" {
		return utils.HTMLToText(envelope.HTML)
	}
	return ""
}

func formatDate(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := mail.ParseDate(raw)
	if err != nil {
		return raw
	}
	return parsed.Format("2006-01-02 15:04")
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}

func parseSeqID(id string) (uint32, error) {
	seqNum, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid email id %q", id)
	}
	return uint32(seqNum), nil
}
