package app

import (
	"bidpilot_backend/internal/email"
	"bidpilot_backend/internal/logger"
)

// MockEmailProvider - заглушка для dev/test окружений, письма пишутся в лог.
type MockEmailProvider struct{}

func (m *MockEmailProvider) Send(e *email.Email) error {
	logger.Info("[MOCK EMAIL] send", "to", e.To, "subject", e.Subject)
	return nil
}

func (m *MockEmailProvider) SendWelcome(to, fullName string) error {
	logger.Info("[MOCK EMAIL] welcome", "to", to, "name", fullName)
	return nil
}

func (m *MockEmailProvider) SendResponseStatusChanged(to, responseTitle, newStatus string) error {
	logger.Info("[MOCK EMAIL] response status changed", "to", to, "title", responseTitle, "status", newStatus)
	return nil
}

func (m *MockEmailProvider) Validate() error { return nil }

func (m *MockEmailProvider) Close() error { return nil }
