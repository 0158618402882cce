package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"bidpilot_backend/internal/config"
)

// GomailProvider реализует Provider поверх gomail (SMTP)
type GomailProvider struct {
	dialer    *gomail.Dialer
	fromEmail string
	fromName  string
}

// NewGomailProvider создает SMTP провайдер из конфигурации приложения
func NewGomailProvider(cfg *config.Config) *GomailProvider {
	dialer := gomail.NewDialer(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUsername,
		cfg.Email.SMTPPassword,
	)

	return &GomailProvider{
		dialer:    dialer,
		fromEmail: cfg.Email.FromEmail,
		fromName:  cfg.Email.FromName,
	}
}

func (p *GomailProvider) Send(email *Email) error {
	if err := p.Validate(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	from := email.From
	if from == "" {
		from = p.fromEmail
	}
	m.SetAddressHeader("From", from, p.fromName)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/plain", email.Body)

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (p *GomailProvider) SendWelcome(to, fullName string) error {
	return p.Send(&Email{
		To:      []string{to},
		Subject: "Welcome to BidPilot",
		Body: fmt.Sprintf(
			"Hello %s,\n\nYour account has been created. You can now track discovered tenders and manage bid responses.\n",
			fullName,
		),
	})
}

func (p *GomailProvider) SendResponseStatusChanged(to, responseTitle, newStatus string) error {
	return p.Send(&Email{
		To:      []string{to},
		Subject: fmt.Sprintf("Response status changed: %s", newStatus),
		Body: fmt.Sprintf(
			"The response \"%s\" has moved to status %s.\n",
			responseTitle, newStatus,
		),
	})
}

func (p *GomailProvider) Validate() error {
	if p.dialer.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if p.dialer.Port <= 0 || p.dialer.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", p.dialer.Port)
	}
	return nil
}

func (p *GomailProvider) Close() error {
	return nil
}
