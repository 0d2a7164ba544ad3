package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"employee-management/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNoRecipient = errors.New("mail recipient is empty")

type Receipt struct {
	MessageID string   `json:"message_id"`
	Accepted  []string `json:"accepted"`
	Delivered bool     `json:"delivered"`
}

type Mailer interface {
	Send(ctx context.Context, to, body, subject string) (*Receipt, error)
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
	send   sendFunc
}

// NewSMTPMailer sends through cfg. With empty credentials messages are only
// logged, which is the development mode.
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger, send: smtp.SendMail}
}

func (m *SMTPMailer) Send(ctx context.Context, to, body, subject string) (*Receipt, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return nil, ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	receipt := &Receipt{
		MessageID: fmt.Sprintf("<%s@%s>", uuid.NewString(), m.domain()),
		Accepted:  []string{to},
	}

	if m.cfg.Username == "" || m.cfg.Password == "" {
		m.logger.Warn("SMTP credentials not configured, mail not sent",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.String("body", body),
		)
		return receipt, nil
	}

	msg := m.buildMessage(receipt.MessageID, to, subject, body)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := m.cfg.Host + ":" + strconv.Itoa(m.cfg.Port)

	if err := m.send(addr, auth, m.cfg.FromEmail, []string{to}, msg); err != nil {
		m.logger.Error("Failed to send email", zap.String("server", addr), zap.String("to", to), zap.Error(err))
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	receipt.Delivered = true
	m.logger.Info("Email sent", zap.String("to", to), zap.String("message_id", receipt.MessageID))
	return receipt, nil
}

func (m *SMTPMailer) buildMessage(messageID, to, subject, body string) []byte {
	headers := [][2]string{
		{"From", fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromEmail)},
		{"To", to},
		{"Subject", subject},
		{"Message-ID", messageID},
		{"Date", time.Now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var sb strings.Builder
	for _, h := range headers {
		sb.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return []byte(sb.String())
}

func (m *SMTPMailer) domain() string {
	if _, d, ok := strings.Cut(m.cfg.FromEmail, "@"); ok && d != "" {
		return d
	}
	return "localhost"
}
