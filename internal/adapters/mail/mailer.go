package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"

	"github.com/MaxGalant/auth-api/config"
)

// Sender delivers plain-text mail. Lifecycle operations treat delivery as
// best-effort: a failed send is logged, never rolled back.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, text string) error
}

type Mailer struct {
	addr string
	auth smtp.Auth
	from string
}

func New(cfg *config.Config) *Mailer {
	return &Mailer{
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		auth: smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost),
		from: cfg.MailFrom,
	}
}

func (m *Mailer) SendEmail(ctx context.Context, to, subject, text string) error {
	msg := mailyak.New(m.addr, m.auth)
	msg.To(to)
	msg.From(m.from)
	msg.Subject(subject)
	msg.Plain().Set(text)

	done := make(chan error, 1)
	go func() { done <- msg.Send() }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email to %s: %w", to, err)
		}
		return nil
	}
}
