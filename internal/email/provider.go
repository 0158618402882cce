package email

// Email - простое email сообщение
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Provider определяет интерфейс для отправки email
type Provider interface {
	// Send отправляет простое email сообщение
	Send(email *Email) error

	// SendWelcome отправляет приветственное письмо новому пользователю
	SendWelcome(to, fullName string) error

	// SendResponseStatusChanged уведомляет о смене статуса отклика
	SendResponseStatusChanged(to, responseTitle, newStatus string) error

	// Validate проверяет конфигурацию провайдера
	Validate() error

	// Close закрывает соединение с провайдером
	Close() error
}
