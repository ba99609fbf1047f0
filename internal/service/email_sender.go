package service

import (
	"crypto/tls"
	"fmt"
	"html"
	"time"

	"github.com/go-mail/mail/v2"
	"github.com/sirupsen/logrus"
)

// Notifier delivers account notifications. Failures are reported, never fatal to the caller.
type Notifier interface {
	SendWelcome(email, name string) error
}

type EmailSenderOptions struct {
	Enabled            bool
	Host               string
	Port               int
	User               string
	Password           string
	InsecureSkipVerify bool
}

// messageSender is satisfied by *mail.Dialer.
type messageSender interface {
	DialAndSend(m ...*mail.Message) error
}

type EmailSender struct {
	sender  messageSender
	from    string
	logger  *logrus.Logger
	enabled bool
}

func NewEmailSender(opts EmailSenderOptions, logger *logrus.Logger) *EmailSender {
	d := mail.NewDialer(opts.Host, opts.Port, opts.User, opts.Password)
	d.TLSConfig = &tls.Config{
		ServerName:         opts.Host,
		InsecureSkipVerify: opts.InsecureSkipVerify,
	}
	return &EmailSender{
		sender:  d,
		from:    opts.User,
		logger:  logger,
		enabled: opts.Enabled,
	}
}

func (es *EmailSender) SendWelcome(email, name string) error {
	if !es.enabled {
		es.logger.Debug("Email notifications are disabled")
		return nil
	}

	subject := "Welcome to the ledger"
	content := fmt.Sprintf(`
		<h1>Welcome, %s</h1>
		<p>Your account was created on <strong>%s</strong>.</p>
		<p>You can now deposit assets and place orders.</p>
		<small>This is an automated message, please do not reply</small>
	`, html.EscapeString(name), time.Now().UTC().Format("2006-01-02 15:04 MST"))

	return es.sendEmail(email, subject, content)
}

func (es *EmailSender) sendEmail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", es.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := es.sender.DialAndSend(m); err != nil {
		es.logger.WithError(err).Error("Failed to send email")
		return fmt.Errorf("send email: %w", err)
	}

	es.logger.Infof("Email sent to %s", to)
	return nil
}
