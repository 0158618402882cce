package models

type UserRole string
type TenderStatus string
type ResponseStatus string
type GenerationMode string
type ResponseTone string

const (
	UserRoleUser    UserRole = "USER"
	UserRoleManager UserRole = "MANAGER"
	UserRoleAdmin   UserRole = "ADMIN"
	UserRoleAuditor UserRole = "AUDITOR"

	// Статусы модерации найденного тендера
	TenderStatusPending  TenderStatus = "PENDING"
	TenderStatusApproved TenderStatus = "APPROVED"
	TenderStatusRejected TenderStatus = "REJECTED"
	TenderStatusArchived TenderStatus = "ARCHIVED"

	// Жизненный цикл отклика на тендер
	ResponseStatusDraft         ResponseStatus = "DRAFT"
	ResponseStatusPendingReview ResponseStatus = "PENDING_REVIEW"
	ResponseStatusApproved      ResponseStatus = "APPROVED"
	ResponseStatusRejected      ResponseStatus = "REJECTED"

	GenerationModeBalanced   GenerationMode = "balanced"
	GenerationModeAggressive GenerationMode = "aggressive"
	GenerationModeCreative   GenerationMode = "creative"

	ResponseToneProfessional ResponseTone = "professional"
	ResponseToneCasual       ResponseTone = "casual"
	ResponseToneFormal       ResponseTone = "formal"
	ResponseToneSimple       ResponseTone = "simple"
	ResponseToneAcademic     ResponseTone = "academic"
)

// tenderTransitions описывает допустимые переходы статуса модерации.
var tenderTransitions = map[TenderStatus][]TenderStatus{
	TenderStatusPending:  {TenderStatusApproved, TenderStatusRejected},
	TenderStatusApproved: {TenderStatusArchived},
	TenderStatusRejected: {},
	TenderStatusArchived: {},
}

// responseTransitions описывает жизненный цикл отклика.
var responseTransitions = map[ResponseStatus][]ResponseStatus{
	ResponseStatusDraft:         {ResponseStatusPendingReview},
	ResponseStatusPendingReview: {ResponseStatusApproved, ResponseStatusRejected},
	ResponseStatusRejected:      {ResponseStatusPendingReview},
	ResponseStatusApproved:      {},
}

// CanTransition проверяет допустимость перехода статуса тендера.
func (s TenderStatus) CanTransition(to TenderStatus) bool {
	for _, allowed := range tenderTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanTransition проверяет допустимость перехода статуса отклика.
func (s ResponseStatus) CanTransition(to ResponseStatus) bool {
	for _, allowed := range responseTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsEditable сообщает, можно ли менять текст отклика в данном статусе.
func (s ResponseStatus) IsEditable() bool {
	return s == ResponseStatusDraft || s == ResponseStatusPendingReview
}

// CanApprove сообщает, может ли роль одобрять отклики.
func (r UserRole) CanApprove() bool {
	return r == UserRoleAdmin || r == UserRoleManager
}

// IsReadOnly сообщает, что роль не имеет права на запись.
func (r UserRole) IsReadOnly() bool {
	return r == UserRoleAuditor
}
