// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// providerTimeout bounds a single provider API call.
const providerTimeout = 30 * time.Second

// # Mailgun

// MailgunSender delivers through the Mailgun HTTP API.
type MailgunSender struct {
	client *mailgun.MailgunImpl
	from   Address
}

// NewMailgunSender creates a sender bound to one Mailgun domain.
func NewMailgunSender(domain, apiKey string, from Address) *MailgunSender {
	return &MailgunSender{
		client: mailgun.NewMailgun(domain, apiKey),
		from:   from,
	}
}

// Name implements [Sender].
func (s *MailgunSender) Name() string { return "mailgun" }

// Send implements [Sender].
func (s *MailgunSender) Send(ctx context.Context, message Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	from := s.from.Email
	if s.from.Name != "" {
		from = fmt.Sprintf("%s <%s>", s.from.Name, s.from.Email)
	}

	mgMessage := s.client.NewMessage(from, message.Subject, message.Text, message.To)
	if message.HTML != "" {
		mgMessage.SetHtml(message.HTML)
	}

	if _, _, err := s.client.Send(ctx, mgMessage); err != nil {
		return fmt.Errorf("mailgun: send failed: %w", err)
	}
	return nil
}

// # SendGrid

// SendgridSender delivers through the SendGrid v3 API.
type SendgridSender struct {
	client *sendgrid.Client
	from   Address
}

// NewSendgridSender creates a SendGrid sender.
func NewSendgridSender(apiKey string, from Address) *SendgridSender {
	return &SendgridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
	}
}

// Name implements [Sender].
func (s *SendgridSender) Name() string { return "sendgrid" }

// Send implements [Sender].
func (s *SendgridSender) Send(ctx context.Context, message Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	sgMessage := mail.NewSingleEmail(
		mail.NewEmail(s.from.Name, s.from.Email),
		message.Subject,
		mail.NewEmail(message.ToName, message.To),
		message.Text,
		message.HTML,
	)

	response, err := s.client.SendWithContext(ctx, sgMessage)
	if err != nil {
		return fmt.Errorf("sendgrid: send failed: %w", err)
	}
	if response.StatusCode != http.StatusAccepted {
		return fmt.Errorf("sendgrid: unexpected status code %d", response.StatusCode)
	}
	return nil
}
