package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/openlearn/lms-api/internal/config"
)

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendPasswordReset(_ context.Context, email string, token string) error {
	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Use this token to set a new password: %s\n\n"+
			"If you did not request a reset, ignore this message.",
		token,
	)
	return s.send(email, "Password reset", body)
}

func (s *smtpService) SendCustom(_ context.Context, to string, subject string, content string) error {
	return s.send(to, subject, content)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
