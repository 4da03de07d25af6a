package services

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"taskfollowup/internal/config"
)

// Attachment is a file sent along with a message
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is one outgoing email. From fields override the configured sender when set.
type Message struct {
	Reference    string
	FromEmail    string
	FromName     string
	ToEmail      string
	ToName       string
	Subject      string
	PlainContent string
	HTMLContent  string
	Attachments  []Attachment
}

// MailSender delivers a message synchronously
type MailSender interface {
	Send(ctx context.Context, msg Message) error
}

type sendgridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type EmailService struct {
	client    sendgridClient
	fromEmail string
	fromName  string
}

func NewEmailService(mailCfg config.MailConfig, exportCfg config.ExportConfig) *EmailService {
	return &EmailService{
		client:    sendgrid.NewSendClient(mailCfg.SendGridAPIKey),
		fromEmail: exportCfg.SenderEmail,
		fromName:  exportCfg.SenderName,
	}
}

// Send implements MailSender
func (s *EmailService) Send(ctx context.Context, msg Message) error {
	fromEmail, fromName := s.fromEmail, s.fromName
	if msg.FromEmail != "" {
		fromEmail, fromName = msg.FromEmail, msg.FromName
	}

	from := mail.NewEmail(fromName, fromEmail)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.PlainContent, msg.HTMLContent)
	for _, a := range msg.Attachments {
		attachment := mail.NewAttachment().
			SetFilename(a.Filename).
			SetType(a.ContentType).
			SetDisposition("attachment").
			SetContent(base64.StdEncoding.EncodeToString(a.Content))
		message.AddAttachment(attachment)
	}

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send %s email to %s: %d", msg.Reference, msg.ToEmail, response.StatusCode)
	}
	return nil
}
