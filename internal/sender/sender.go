// Package sender turns a send request into delivered messages: it
// resolves the active SMTP account, generates the emails for the
// requested type, delivers them sequentially, records history, and
// aggregates the outcome. It never panics past its boundary and never
// returns a Go error for delivery problems: the outcome is the
// SendResult, which callers persist or return as-is.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crucial707/mailprobe/internal/generators"
	"github.com/crucial707/mailprobe/internal/mailer"
	"github.com/crucial707/mailprobe/internal/metrics"
	"github.com/crucial707/mailprobe/internal/models"
	"github.com/crucial707/mailprobe/internal/repo"
	"github.com/crucial707/mailprobe/internal/secrets"
)

// maxReportedErrors caps the error list carried in a SendResult.
const maxReportedErrors = 10

// deliverer sends a single message. Satisfied by *mailer.Mailer.
type deliverer interface {
	Send(ctx context.Context, e models.Email) error
}

// Sender wires generation, account resolution and SMTP delivery.
type Sender struct {
	Accounts  *repo.AccountRepo
	Settings  *repo.SettingsRepo
	History   *repo.HistoryRepo
	Keychain  *secrets.Keychain
	Generator *generators.Generator
	Log       *slog.Logger

	// newMailer builds the SMTP client for an account. Tests stub it.
	newMailer func(models.Account) (deliverer, error)
}

// New builds a Sender using the real SMTP mailer.
func New(accounts *repo.AccountRepo, settings *repo.SettingsRepo, history *repo.HistoryRepo, keychain *secrets.Keychain, gen *generators.Generator, log *slog.Logger) *Sender {
	return &Sender{
		Accounts:  accounts,
		Settings:  settings,
		History:   history,
		Keychain:  keychain,
		Generator: gen,
		Log:       log,
		newMailer: func(a models.Account) (deliverer, error) { return mailer.New(a) },
	}
}

// Send generates and delivers emails of the given type.
func (s *Sender) Send(ctx context.Context, emailType string, req generators.Request) models.SendResult {
	m, err := s.activeMailer(ctx)
	if err != nil {
		s.Log.Error("send aborted", "email_type", emailType, "err", err)
		return models.SendResult{Error: err.Error()}
	}

	emails, err := s.Generator.Generate(ctx, emailType, req)
	if err != nil {
		s.Log.Error("generate failed", "email_type", emailType, "err", err)
		return models.SendResult{Error: err.Error()}
	}

	return s.deliver(ctx, m, emailType, emails)
}

// SendForSchedule adapts a schedule into a send request. It is the
// scheduler's SendFunc.
func (s *Sender) SendForSchedule(ctx context.Context, sched models.Schedule) models.SendResult {
	return s.Send(ctx, sched.EmailType, generators.Request{
		Count:          sched.Count,
		Recipients:     sched.Recipients,
		TemplateType:   sched.TemplateType,
		Subject:        sched.Subject,
		Body:           sched.Body,
		DisplayName:    sched.DisplayName,
		AttachmentType: sched.AttachmentType,
	})
}

// SendTest delivers a single plain test message to one recipient,
// bypassing the generators.
func (s *Sender) SendTest(ctx context.Context, recipient string) models.SendResult {
	m, err := s.activeMailer(ctx)
	if err != nil {
		return models.SendResult{Error: err.Error()}
	}
	emails := []models.Email{{
		Subject:    "Test Email",
		Body:       "This is a test email to verify the SMTP configuration is working.",
		Recipients: []string{recipient},
	}}
	return s.deliver(ctx, m, "test", emails)
}

// activeMailer resolves the currently selected account, decrypts its
// password and builds an SMTP client for it.
func (s *Sender) activeMailer(ctx context.Context) (deliverer, error) {
	name, err := s.Settings.CurrentAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve current account: %w", err)
	}
	if name == "" {
		return nil, fmt.Errorf("no email account configured")
	}
	account, err := s.Accounts.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load account %q: %w", name, err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %q not found", name)
	}

	password, err := s.Keychain.Decrypt(account.Password)
	if err != nil {
		return nil, fmt.Errorf("decrypt password for %q: %w", name, err)
	}
	account.Password = password

	return s.newMailer(*account)
}

// deliver sends each message in order and aggregates the outcome. One
// failed recipient batch does not stop the rest.
func (s *Sender) deliver(ctx context.Context, m deliverer, emailType string, emails []models.Email) models.SendResult {
	res := models.SendResult{Total: len(emails)}

	for _, e := range emails {
		if err := s.sendOne(ctx, m, e); err != nil {
			res.Failed++
			metrics.IncEmailSendFailures(emailType)
			if len(res.Errors) < maxReportedErrors {
				res.Errors = append(res.Errors, fmt.Sprintf("Error sending %s: %v", e.Subject, err))
			}
			s.Log.Error("email send failed", "email_type", emailType, "subject", e.Subject, "err", err)
			continue
		}

		res.Sent++
		metrics.IncEmailsSent(emailType)
		s.recordHistory(ctx, emailType, e)
	}

	res.Success = res.Failed == 0
	if !res.Success && res.Error == "" && len(res.Errors) > 0 {
		res.Error = res.Errors[0]
	}
	return res
}

// sendOne contains the per-message panic guard: a misbehaving SMTP
// library must cost one message, not the batch.
func (s *Sender) sendOne(ctx context.Context, m deliverer, e models.Email) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic during send: %v", p)
		}
	}()
	return m.Send(ctx, e)
}

func (s *Sender) recordHistory(ctx context.Context, emailType string, e models.Email) {
	if s.History == nil {
		return
	}
	err := s.History.Add(ctx, models.HistoryEntry{
		EmailType:  emailType,
		Subject:    e.Subject,
		Recipients: e.Recipients,
		Status:     "sent",
	})
	if err != nil {
		s.Log.Error("record history failed", "subject", e.Subject, "err", err)
	}
}
