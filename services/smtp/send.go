package smtp

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/operatorhq/mailops/internal/logger"
	"github.com/operatorhq/mailops/internal/models"
	"github.com/operatorhq/mailops/internal/tracing"
)

// submitSession is an authenticated submission session. It performs one
// MAIL/RCPT/DATA transaction per Send and stays open until Close.
type submitSession struct {
	client *smtp.Client
	log    logger.Logger
}

func (s *submitSession) Send(ctx context.Context, email *models.OutgoingEmail) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SubmitSession.Send")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if err := validateEmail(email); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	buffer := prepareMessage(email)
	tracing.LogObjectAsJson(span, "headers", email.BuildHeaders())

	if err := s.client.Mail(email.FromAddress); err != nil {
		tracing.TraceErr(span, err)
		return fmt.Errorf("SMTP MAIL command failed: %w", err)
	}

	if err := s.client.Rcpt(email.ToAddress); err != nil {
		tracing.TraceErr(span, err)
		return fmt.Errorf("SMTP RCPT command failed for %s: %w", email.ToAddress, err)
	}

	dataWriter, err := s.client.Data()
	if err != nil {
		tracing.TraceErr(span, err)
		return fmt.Errorf("SMTP DATA command failed: %w", err)
	}

	if _, err = dataWriter.Write(buffer.Bytes()); err != nil {
		tracing.TraceErr(span, err)
		return fmt.Errorf("failed to write email data: %w", err)
	}

	if err = dataWriter.Close(); err != nil {
		tracing.TraceErr(span, err)
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	s.log.Infof("Email sent from %s to %s", email.FromAddress, email.ToAddress)
	return nil
}

func (s *submitSession) Close() error {
	return s.client.Quit()
}

// validateEmail performs basic validation on the outgoing email
func validateEmail(email *models.OutgoingEmail) error {
	if email == nil {
		return errors.New("email cannot be nil")
	}

	if email.FromAddress == "" {
		return errors.New("from address is required")
	}
	if validation := mailvalidate.ValidateEmailSyntax(email.FromAddress); !validation.IsValid {
		return errors.New("from address is not valid")
	}

	if email.ToAddress == "" {
		return errors.New("at least one recipient is required")
	}
	if validation := mailvalidate.ValidateEmailSyntax(email.ToAddress); !validation.IsValid {
		return errors.Errorf("recipient address %s is not valid", email.ToAddress)
	}

	if email.Subject == "" {
		return errors.New("email must have a subject")
	}

	if email.BodyText == "" {
		return errors.New("email must have text content")
	}

	return nil
}

// prepareMessage builds the wire form: headers, blank line, UTF-8 text
// body.
func prepareMessage(email *models.OutgoingEmail) *bytes.Buffer {
	buffer := bytes.NewBuffer(nil)

	headers := email.BuildHeaders()
	headers["Content-Type"] = "text/plain; charset=UTF-8"

	writeHeaders(headers, buffer)

	buffer.WriteString(email.BodyText)
	buffer.WriteString("\r\n")

	return buffer
}

// writeHeaders writes email headers to the buffer
func writeHeaders(headers map[string]string, buffer *bytes.Buffer) {
	for k, v := range headers {
		buffer.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	buffer.WriteString("\r\n")
}
