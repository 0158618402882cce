package client

import (
	"context"
	"errors"
	"strings"

	"bidpilot_backend/internal/models"
	"bidpilot_backend/internal/services/dto"
)

var (
	// ErrUnsavedChanges - операция требует сначала сохранить или сбросить правки.
	ErrUnsavedChanges = errors.New("unsaved changes in editor")

	// ErrNotLoaded - в редактор еще не загружен отклик.
	ErrNotLoaded = errors.New("no response loaded")

	// ErrTextTooShort - текст слишком короткий для хуманизации.
	ErrTextTooShort = errors.New("text too short to humanize")
)

const minHumanizeLength = 10

// ResponseEditor - контроллер редактирования отклика.
// Держит локальный буфер текста и флаг несохраненных правок:
// пока правки не сохранены, обновления с сервера буфер не трогают.
type ResponseEditor struct {
	api      *Client
	notifier Notifier

	response   *dto.ResponseDTO
	buffer     string
	hasChanges bool
	role       models.UserRole
}

func NewResponseEditor(api *Client, notifier Notifier, role models.UserRole) *ResponseEditor {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &ResponseEditor{api: api, notifier: notifier, role: role}
}

func (e *ResponseEditor) Response() *dto.ResponseDTO { return e.response }
func (e *ResponseEditor) Text() string               { return e.buffer }
func (e *ResponseEditor) HasChanges() bool           { return e.hasChanges }

// Load загружает отклик и сбрасывает буфер.
func (e *ResponseEditor) Load(ctx context.Context, responseID string) error {
	resp, err := e.api.GetResponse(ctx, responseID)
	if err != nil {
		e.notifier.Error("Failed to load response")
		return err
	}
	e.response = resp
	e.buffer = resp.Text
	e.hasChanges = false
	return nil
}

// SetText меняет локальный буфер и помечает правки несохраненными.
func (e *ResponseEditor) SetText(text string) {
	if e.response == nil {
		return
	}
	if text == e.buffer {
		return
	}
	e.buffer = text
	e.hasChanges = true
}

// Reset откатывает буфер к последней сохраненной версии.
func (e *ResponseEditor) Reset() {
	if e.response == nil {
		return
	}
	e.buffer = e.response.Text
	e.hasChanges = false
}

// Save отправляет буфер на сервер. Сервер поднимает версию.
func (e *ResponseEditor) Save(ctx context.Context) error {
	if e.response == nil {
		return ErrNotLoaded
	}
	if !e.hasChanges {
		return nil
	}

	resp, err := e.api.UpdateResponseText(ctx, e.response.ID, e.buffer)
	if err != nil {
		e.notifier.Error("Failed to save response")
		return err
	}
	e.response = resp
	e.buffer = resp.Text
	e.hasChanges = false
	e.notifier.Success("Response saved")
	return nil
}

// Submit отправляет отклик на ревью. Несохраненные правки
// сохраняются автоматически перед отправкой.
func (e *ResponseEditor) Submit(ctx context.Context) error {
	if e.response == nil {
		return ErrNotLoaded
	}
	if e.hasChanges {
		if err := e.Save(ctx); err != nil {
			return err
		}
	}

	resp, err := e.api.SubmitResponse(ctx, e.response.ID)
	if err != nil {
		e.notifier.Error("Failed to submit response")
		return err
	}
	e.response = resp
	e.buffer = resp.Text
	e.notifier.Success("Response submitted for review")
	return nil
}

// CanApprove сообщает, доступна ли кнопка одобрения текущему пользователю.
func (e *ResponseEditor) CanApprove() bool {
	if e.response == nil {
		return false
	}
	return e.role.CanApprove() && e.response.Status == string(models.ResponseStatusPendingReview)
}

// Approve одобряет отклик. Доступно менеджеру и админу на статусе PENDING_REVIEW.
func (e *ResponseEditor) Approve(ctx context.Context) error {
	if e.response == nil {
		return ErrNotLoaded
	}
	if !e.CanApprove() {
		return errors.New("approve is not available for this response")
	}

	resp, err := e.api.ApproveResponse(ctx, e.response.ID)
	if err != nil {
		e.notifier.Error("Failed to approve response")
		return err
	}
	e.response = resp
	e.buffer = resp.Text
	e.hasChanges = false
	e.notifier.Success("Response approved")
	return nil
}

// Reject возвращает отклик в черновик с комментарием причины.
func (e *ResponseEditor) Reject(ctx context.Context, reason string) error {
	if e.response == nil {
		return ErrNotLoaded
	}

	resp, err := e.api.RejectResponse(ctx, e.response.ID, reason)
	if err != nil {
		e.notifier.Error("Failed to reject response")
		return err
	}
	e.response = resp
	e.buffer = resp.Text
	e.hasChanges = false
	e.notifier.Success("Response rejected")
	return nil
}

// Regenerate перегенерирует текст. Непустые mode/tone меняют настройки
// генерации. Блокируется при несохраненных правках, чтобы не потерять
// работу пользователя.
func (e *ResponseEditor) Regenerate(ctx context.Context, mode, tone string) error {
	if e.response == nil {
		return ErrNotLoaded
	}
	if e.hasChanges {
		e.notifier.Info("Save or reset changes before regenerating")
		return ErrUnsavedChanges
	}

	resp, err := e.api.RegenerateResponse(ctx, e.response.ID, mode, tone)
	if err != nil {
		e.notifier.Error("Failed to regenerate response")
		return err
	}
	e.response = resp
	e.buffer = resp.Text
	e.notifier.Success("Response regenerated")
	return nil
}

// Delete удаляет отклик без возврата. Работает из любого статуса,
// поэтому требует подтверждения. После удаления редактор пуст.
func (e *ResponseEditor) Delete(ctx context.Context, confirm func() bool) error {
	if e.response == nil {
		return ErrNotLoaded
	}
	if confirm != nil && !confirm() {
		return nil
	}

	if err := e.api.DeleteResponse(ctx, e.response.ID); err != nil {
		e.notifier.Error("Failed to delete response")
		return err
	}
	e.response = nil
	e.buffer = ""
	e.hasChanges = false
	e.notifier.Success("Response deleted")
	return nil
}

// Humanize прогоняет буфер через внешний сервис хуманизации.
// Результат кладется в буфер как несохраненная правка.
func (e *ResponseEditor) Humanize(ctx context.Context, humanizer *Humanizer) error {
	if e.response == nil {
		return ErrNotLoaded
	}
	if len(strings.TrimSpace(e.buffer)) < minHumanizeLength {
		e.notifier.Error("Text is too short to humanize")
		return ErrTextTooShort
	}

	result, err := humanizer.HumanizeText(ctx, e.buffer)
	if err != nil {
		e.notifier.Error("Humanization failed")
		return err
	}

	e.buffer = result.Text
	e.hasChanges = true
	e.notifier.Success("Text humanized, review and save")
	return nil
}

// Refresh подтягивает свежую версию с сервера. Если в буфере есть
// несохраненные правки, текст не перезаписывается - обновляются
// только метаданные (статус, версия).
func (e *ResponseEditor) Refresh(ctx context.Context) error {
	if e.response == nil {
		return ErrNotLoaded
	}

	resp, err := e.api.GetResponse(ctx, e.response.ID)
	if err != nil {
		return err
	}

	e.response = resp
	if !e.hasChanges {
		e.buffer = resp.Text
	}
	return nil
}
