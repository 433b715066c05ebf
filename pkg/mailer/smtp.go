package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type SMTPMailer struct {
	from Sender
	opts []mail.Option
	host string
}

func NewSMTPMailer(cfg SMTPConfig, from Sender) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("mailer: SMTP_HOST is required for the smtp transport")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	return &SMTPMailer{from: from, opts: opts, host: cfg.Host}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	built, err := buildMsg(m.from, msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.host, m.opts...)
	if err != nil {
		return fmt.Errorf("mailer: create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, built); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", msg.To, err)
	}
	return nil
}

// buildMsg renders msg as a multipart/alternative go-mail message
func buildMsg(from Sender, msg Message) (*mail.Msg, error) {
	if err := msg.validate(); err != nil {
		return nil, err
	}

	m := mail.NewMsg()
	if err := m.FromFormat(from.Name, from.Address); err != nil {
		return nil, fmt.Errorf("mailer: invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("mailer: invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	if msg.Text != "" {
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
		if msg.HTML != "" {
			m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
		}
	} else {
		m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}
