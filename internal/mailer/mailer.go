// Package mailer wraps SMTP delivery for a configured account: client
// construction with the right TLS mode, provider inference when only an
// IMAP host is known, and per-message sends with a short retry on
// transient dial failures.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v3"
	"github.com/wneessen/go-mail"

	"github.com/crucial707/mailprobe/internal/models"
)

const dialTimeout = 30 * time.Second

// Mailer sends messages through one SMTP account. Construct with New;
// the zero value is not usable.
type Mailer struct {
	account models.Account
	client  *mail.Client
}

// New builds a mailer for the account. When the account has no SMTP
// server, one is inferred from its IMAP server; accounts with neither
// are rejected.
func New(account models.Account) (*Mailer, error) {
	if account.SMTPServer == "" {
		host, port, ssl, ok := InferSMTP(account.IMAPServer)
		if !ok {
			return nil, fmt.Errorf("account %q has no SMTP server and none could be inferred from IMAP host %q", account.Name, account.IMAPServer)
		}
		account.SMTPServer = host
		account.SMTPPort = port
		if ssl {
			account.UseSSL = true
			account.UseTLS = false
		}
	}
	if account.SMTPPort == 0 {
		account.SMTPPort = 587
	}

	opts := []mail.Option{
		mail.WithPort(account.SMTPPort),
		mail.WithTimeout(dialTimeout),
	}
	if account.Username != "" && account.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(account.Username),
			mail.WithPassword(account.Password),
		)
	}
	switch {
	case account.UseSSL:
		opts = append(opts, mail.WithSSL())
	case account.UseTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(account.SMTPServer, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client for %q: %w", account.Name, err)
	}
	return &Mailer{account: account, client: client}, nil
}

// Send delivers one message. Connection-level failures are retried twice
// with a constant backoff before giving up.
func (m *Mailer) Send(ctx context.Context, e models.Email) error {
	msg, err := m.buildMessage(e)
	if err != nil {
		return err
	}

	op := func() error {
		return m.client.DialAndSendWithContext(ctx, msg)
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(2*time.Second), 2), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return fmt.Errorf("send %q: %w", e.Subject, err)
	}
	return nil
}

func (m *Mailer) buildMessage(e models.Email) (*mail.Msg, error) {
	msg := mail.NewMsg()

	from := m.account.Username
	if from == "" {
		return nil, fmt.Errorf("account %q has no username to send as", m.account.Name)
	}
	if e.DisplayName != "" {
		if err := msg.FromFormat(e.DisplayName, from); err != nil {
			return nil, fmt.Errorf("invalid from address %q: %w", from, err)
		}
	} else if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", from, err)
	}

	if err := msg.To(e.Recipients...); err != nil {
		return nil, fmt.Errorf("invalid recipients %v: %w", e.Recipients, err)
	}
	msg.Subject(e.Subject)
	msg.SetBodyString(mail.TypeTextPlain, e.Body)

	for _, att := range e.Attachments {
		msg.AttachReader(att.Filename, bytes.NewReader(att.Content))
	}
	return msg, nil
}

// InferSMTP maps a known IMAP host to its provider's SMTP endpoint.
// ssl reports whether the provider requires implicit TLS on the port.
func InferSMTP(imapHost string) (host string, port int, ssl bool, ok bool) {
	if imapHost == "" {
		return "", 0, false, false
	}
	switch {
	case strings.Contains(imapHost, "gmx.com"):
		return "mail.gmx.com", 587, false, true
	case strings.Contains(imapHost, "gmail.com"):
		return "smtp.gmail.com", 587, false, true
	case strings.Contains(imapHost, "aol.com"):
		return "smtp.aol.com", 465, true, true
	case strings.Contains(imapHost, "office365.com"):
		return "smtp.office365.com", 587, false, true
	case strings.Contains(imapHost, "outlook.com"):
		return "smtp-mail.outlook.com", 587, false, true
	case strings.Contains(imapHost, "yahoo.com"):
		return "smtp.mail.yahoo.com", 587, false, true
	case strings.Contains(imapHost, "mail.me.com"):
		return "smtp.mail.me.com", 587, false, true
	case strings.Contains(imapHost, "zoho.com"):
		return "smtp.zoho.com", 587, false, true
	default:
		return "", 0, false, false
	}
}
