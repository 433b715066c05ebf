// Package mailer sends transactional email through SMTP, the Gmail API or the log.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskup-backend/pkg/config"
)

// Transports
const (
	TransportSMTP  = "smtp"
	TransportGmail = "gmail"
	TransportLog   = "log"
)

var ErrNoRecipient = errors.New("mailer: message has no recipient")

// Message is one outgoing email with an HTML body and a plain text fallback
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return ErrNoRecipient
	}
	return nil
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Sender identifies the From header
type Sender struct {
	Name    string
	Address string
}

// New builds the transport selected by cfg.MailTransport
func New(cfg *config.Config) (Mailer, error) {
	from := Sender{Name: cfg.MailFromName, Address: cfg.MailFrom}

	switch strings.ToLower(cfg.MailTransport) {
	case TransportSMTP:
		return NewSMTPMailer(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		}, from)
	case TransportGmail:
		return NewGmailMailer(GmailConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RefreshToken: cfg.GmailRefreshToken,
		}, from)
	case TransportLog, "":
		return NewLogMailer(), nil
	default:
		return nil, fmt.Errorf("mailer: unknown transport %q", cfg.MailTransport)
	}
}
