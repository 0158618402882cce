package validator

import (
	"log"

	"bidpilot_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {

	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Если правило не удалось зарегистрировать, приложение
			// не должно запускаться, так как это критическая ошибка.
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// Правила, основанные на 'statuses.go'

	// 'is-user-role': Проверяет, что роль пользователя валидна
	mustRegister("is-user-role", validateUserRole)

	// 'is-tender-status': Проверяет, что статус тендера валиден
	mustRegister("is-tender-status", validateTenderStatus)

	// 'is-response-status': Проверяет, что статус отклика валиден
	mustRegister("is-response-status", validateResponseStatus)

	// 'is-generation-mode': Проверяет режим генерации отклика
	mustRegister("is-generation-mode", validateGenerationMode)

	// 'is-tone': Проверяет тон генерируемого текста
	mustRegister("is-tone", validateTone)
}

// --- Функции валидации ---

func validateUserRole(fl validator.FieldLevel) bool {
	// Получаем значение поля как строку
	value := fl.Field().String()
	if value == "" {
		return true // Не проверяем пустые значения, для этого есть 'required'
	}

	switch models.UserRole(value) {
	case models.UserRoleUser, models.UserRoleManager, models.UserRoleAdmin, models.UserRoleAuditor:
		return true
	default:
		return false
	}
}

func validateTenderStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // 'required' обрабатывает пустые
	}
	switch models.TenderStatus(value) {
	case models.TenderStatusPending, models.TenderStatusApproved, models.TenderStatusRejected, models.TenderStatusArchived:
		return true
	default:
		return false
	}
}

func validateResponseStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.ResponseStatus(value) {
	case models.ResponseStatusDraft, models.ResponseStatusPendingReview, models.ResponseStatusApproved, models.ResponseStatusRejected:
		return true
	default:
		return false
	}
}

func validateGenerationMode(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.GenerationMode(value) {
	case models.GenerationModeBalanced, models.GenerationModeAggressive, models.GenerationModeCreative:
		return true
	default:
		return false
	}
}

func validateTone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.ResponseTone(value) {
	case models.ResponseToneProfessional, models.ResponseToneCasual, models.ResponseToneFormal,
		models.ResponseToneSimple, models.ResponseToneAcademic:
		return true
	default:
		return false
	}
}
