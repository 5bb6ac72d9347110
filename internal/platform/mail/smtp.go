// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// implicitTLSPort is the SMTPS port; every other port negotiates STARTTLS.
const implicitTLSPort = 465

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender delivers messages through an authenticated SMTP server.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender returns a sender for cfg. No connection is opened until the first Send.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send implements [Sender]. Each call dials, authenticates and quits.
func (sender *SMTPSender) Send(ctx context.Context, message Message) error {
	msg, err := sender.compose(message)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(sender.cfg.Host, sender.clientOptions()...)
	if err != nil {
		return fmt.Errorf("mail_client_init_failed: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail_send_failed: %w", err)
	}

	return nil
}

func (sender *SMTPSender) compose(message Message) (*gomail.Msg, error) {
	msg := gomail.NewMsg()

	if err := msg.FromFormat(sender.cfg.FromName, sender.cfg.From); err != nil {
		return nil, fmt.Errorf("mail_invalid_sender: %w", err)
	}

	if err := msg.AddToFormat(message.ToName, message.To); err != nil {
		return nil, fmt.Errorf("mail_invalid_recipient: %w", err)
	}

	msg.Subject(message.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, message.Body)

	return msg, nil
}

func (sender *SMTPSender) clientOptions() []gomail.Option {
	options := []gomail.Option{
		gomail.WithPort(sender.cfg.Port),
	}

	if sender.cfg.Username != "" {
		options = append(options,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(sender.cfg.Username),
			gomail.WithPassword(sender.cfg.Password),
		)
	}

	if sender.cfg.Port == implicitTLSPort {
		options = append(options, gomail.WithSSL())
	} else {
		options = append(options, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}

	return options
}
