package notify

import (
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/saajjewels/storefront/config"
)

// Mailer delivers plain-text notifications
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends through an SMTP relay with gomail
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}

// LogMailer only logs; used when SMTP is not configured
type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	zap.L().Info("mail (smtp disabled)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_len", len(body)))
	return nil
}
