package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/obrienhr/cv-triage/internal/secrets"
)

// SMTPConfig configures the real mail transport. The password is resolved
// through the secrets loader so it never lives in the config file.
type SMTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Sender       string `mapstructure:"sender"`
	PasswordFile string `mapstructure:"password-file"`
}

// SMTP delivers notifications over plain SMTP with STARTTLS-capable auth.
type SMTP struct {
	addr     string
	host     string
	sender   string
	password string
	logger   *zap.Logger

	// send is swapped in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTP resolves credentials and builds the transport. Missing or empty
// credentials are a configuration error.
func NewSMTP(cfg SMTPConfig, logger *zap.Logger) (*SMTP, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	sender := strings.TrimSpace(cfg.Sender)
	if sender == "" {
		return nil, fmt.Errorf("smtp sender is required")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}

	password, err := secrets.Load(secrets.Source{
		Name: "smtp password",
		File: cfg.PasswordFile,
		Env:  "EMAIL_PASSWORD",
	})
	if err != nil {
		return nil, err
	}

	return &SMTP{
		addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		host:     host,
		sender:   sender,
		password: password,
		logger:   logger,
		send:     smtp.SendMail,
	}, nil
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.sender, msg.To, msg.Subject, msg.Body)

	auth := smtp.PlainAuth("", s.sender, s.password, s.host)
	if err := s.send(s.addr, auth, s.sender, []string{msg.To}, []byte(payload)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}

	s.logger.Debug("smtp delivery succeeded", zap.String("to", msg.To))
	return nil
}
