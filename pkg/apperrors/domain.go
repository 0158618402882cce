package apperrors

import (
	"net/http"
)

/*
Этот файл содержит фабрики и предопределенные переменные
для ошибок бизнес-логики платформы (discovery, responses, comments).
*/

// =========================================================================
// Фабричные ФУНКЦИИ (Используются для оборачивания ошибок, напр. из репозитория)
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404)
// Используется, когда ошибка репозитория (типа gorm.ErrRecordNotFound)
// должна быть преобразована в AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrInvalidStatus - фабрика для недопустимых переходов статуса (400)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrExternalService - фабрика для ошибок внешних сервисов (502)
func ErrExternalService(err error, domain, message string) *AppError {
	return Wrap(err, CodeExternalServiceError, domain, message, http.StatusBadGateway)
}

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ (Для частых, статичных ошибок)
// =========================================================================

// ErrTenderNotPending - модерация разрешена только для тендеров в статусе PENDING.
var ErrTenderNotPending = New(
	CodeInvalidStatus,
	"discovery",
	"Tender is not pending moderation",
	http.StatusBadRequest,
)

// ErrScanInFlight - для арендатора уже выполняется сканирование порталов.
var ErrScanInFlight = New(
	CodeConflict,
	"discovery",
	"Scan already in progress for this tenant",
	http.StatusConflict,
)

// ErrResponseNotEditable - текст отклика можно менять только в DRAFT/PENDING_REVIEW.
var ErrResponseNotEditable = New(
	CodeInvalidStatus,
	"responses",
	"Cannot edit approved response",
	http.StatusBadRequest,
)

// ErrResponseAlreadySubmitted - submit разрешен только из DRAFT.
var ErrResponseAlreadySubmitted = New(
	CodeInvalidStatus,
	"responses",
	"Response already submitted",
	http.StatusBadRequest,
)

// ErrAuditorReadOnly - роль AUDITOR имеет доступ только на чтение.
var ErrAuditorReadOnly = New(
	CodeForbidden,
	"responses",
	"Auditors have read-only access",
	http.StatusForbidden,
)

// ErrApproveForbidden - одобрять отклики могут только MANAGER и ADMIN.
var ErrApproveForbidden = New(
	CodeForbidden,
	"responses",
	"Only Managers or Admins can approve responses",
	http.StatusForbidden,
)

// ErrEmptyComment - пустой комментарий отклоняется до обращения к БД.
var ErrEmptyComment = New(
	CodeValidationFailed,
	"comments",
	"Comment text cannot be empty",
	http.StatusBadRequest,
)

// ErrInsufficientPermissions - используется, когда роли не хватает прав на действие.
var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)
