// Package notify sends best-effort email notifications. Delivery
// failures are logged, never surfaced to the request that caused them.
package notify

import (
	"fmt"
	"net/smtp"

	"github.com/intellimanage/platform/internal/config"
	"github.com/intellimanage/platform/internal/logger"
)

// Mailer sends email over SMTP. With no host configured it is a
// silent no-op, which keeps local development mail-free.
type Mailer struct {
	cfg config.SMTPConfig
}

// NewMailer creates a Mailer.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send delivers one message asynchronously.
func (m *Mailer) Send(to, subject, body string) {
	if m.cfg.Host == "" {
		return
	}
	go func() {
		if err := m.deliver(to, subject, body); err != nil {
			logger.Error("failed to send notification email", "to", to, "error", err)
		}
	}()
}

func (m *Mailer) deliver(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.cfg.From, to, subject, body))

	var a smtp.Auth
	if m.cfg.User != "" {
		a = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}
	return smtp.SendMail(addr, a, m.cfg.From, []string{to}, msg)
}
