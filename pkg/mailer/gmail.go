package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	gomail "github.com/emersion/go-message/mail"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// GmailMailer sends as the account that owns the refresh token
type GmailMailer struct {
	from   Sender
	tokens oauth2.TokenSource
}

func NewGmailMailer(cfg GmailConfig, from Sender) (*GmailMailer, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, errors.New("mailer: gmail transport needs GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GMAIL_REFRESH_TOKEN")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	// expired on purpose so the first call refreshes
	token := &oauth2.Token{RefreshToken: cfg.RefreshToken, TokenType: "Bearer", Expiry: time.Now()}

	return &GmailMailer{
		from:   from,
		tokens: oauth2.ReuseTokenSource(nil, oauthCfg.TokenSource(context.Background(), token)),
	}, nil
}

func (m *GmailMailer) Send(ctx context.Context, msg Message) error {
	raw, err := composeMIME(m.from, msg, time.Now())
	if err != nil {
		return err
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, m.tokens)))
	if err != nil {
		return fmt.Errorf("mailer: unable to create Gmail service: %w", err)
	}

	sent, err := srv.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("mailer: gmail send to %s: %w", msg.To, err)
	}
	log.Printf("[Mailer] gmail message %s sent to %s", sent.Id, msg.To)
	return nil
}

// composeMIME writes an RFC 5322 message with text and HTML alternatives
func composeMIME(from Sender, msg Message, date time.Time) ([]byte, error) {
	if err := msg.validate(); err != nil {
		return nil, err
	}

	var h gomail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*gomail.Address{{Name: from.Name, Address: from.Address}})
	h.SetAddressList("To", []*gomail.Address{{Address: msg.To}})
	h.SetSubject(msg.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw, err := gomail.CreateWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	tw, err := mw.CreateInline()
	if err != nil {
		return nil, err
	}

	parts := []struct{ contentType, body string }{
		{"text/plain", msg.Text},
		{"text/html", msg.HTML},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		var ph gomail.InlineHeader
		ph.SetContentType(p.contentType, map[string]string{"charset": "utf-8"})
		w, err := tw.CreatePart(ph)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(w, p.body); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
