package mailer

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"

	"hirelane/api/internal/config"
)

// Mailer delivers transactional email. Callers treat a send failure as
// non-fatal: the token backing the email has already committed.
type Mailer interface {
	Send(to, subject, html string) error
}

type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		host: cfg.Host,
		port: cfg.Port,
		user: cfg.Username,
		pass: cfg.Password,
		from: cfg.From,
	}
}

func (m *SMTPMailer) Send(to, subject, html string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	d := mail.NewDialer(m.host, m.port, m.user, m.pass)
	d.TLSConfig = &tls.Config{ServerName: m.host}

	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
