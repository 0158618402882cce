package services

import (
	"bidpilot_backend/internal/email"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService      AuthService
	DiscoveryService DiscoveryService
	ResponseService  ResponseService
	CommentService   CommentService
	EmailService     email.Provider
}
