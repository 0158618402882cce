package auth

import (
	"errors"

	"bidpilot_backend/internal/models"
)

// Permissions список разрешений по ролям
var Permissions = map[models.UserRole][]string{
	models.UserRoleAdmin: {
		"tenders:read",
		"tenders:moderate",
		"tenders:delete",
		"responses:read",
		"responses:write",
		"responses:approve",
		"comments:write",
		"system:admin",
	},
	models.UserRoleManager: {
		"tenders:read",
		"tenders:moderate",
		"responses:read",
		"responses:write",
		"responses:approve",
		"comments:write",
	},
	models.UserRoleUser: {
		"tenders:read",
		"responses:read",
		"responses:write",
		"comments:write",
	},
	models.UserRoleAuditor: {
		"tenders:read",
		"responses:read",
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role models.UserRole, permission string) bool {
	permissions, exists := Permissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CanPerformAction проверяет может ли пользователь выполнить действие
func CanPerformAction(claims *Claims, permission string) bool {
	return HasPermission(claims.Role, permission)
}

// IsAdmin проверяет является ли пользователь администратором
func IsAdmin(claims *Claims) bool {
	return claims.Role == models.UserRoleAdmin
}

// ValidateRole проверяет валидность роли
func ValidateRole(role string) error {
	switch models.UserRole(role) {
	case models.UserRoleAdmin, models.UserRoleManager, models.UserRoleUser, models.UserRoleAuditor:
		return nil
	default:
		return errors.New("invalid role")
	}
}
