// Package notifier delivers best-effort counterparty notifications. Delivery
// failures are the caller's to log; they must never fail a state transition.
package notifier

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/oakline-furniture/trade-api/internal/config"
	"go.uber.org/zap"
)

// Notifier sends a message to a counterparty
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}

// SMTPNotifier delivers notifications through a plain SMTP relay
type SMTPNotifier struct {
	cfg *config.SMTPConfig
}

func NewSMTPNotifier(cfg *config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) Notify(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		n.cfg.From, recipient, subject, body)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := smtp.SendMail(n.cfg.Addr(), auth, n.cfg.From, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// LogNotifier writes notifications to the log instead of delivering them.
// Used when no SMTP host is configured (development, tests).
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, recipient, subject, body string) error {
	n.logger.Info("notification (not delivered, no SMTP configured)",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.Int("bodyBytes", len(body)))
	return nil
}

// FromConfig picks the SMTP notifier when a host is configured, otherwise
// the logging fallback
func FromConfig(cfg *config.SMTPConfig, logger *zap.Logger) Notifier {
	if cfg.Host == "" {
		return NewLogNotifier(logger)
	}
	return NewSMTPNotifier(cfg)
}
