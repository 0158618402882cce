package services

import (
	"context"
	"errors"
	"time"

	"bidpilot_backend/internal/composer"
	"bidpilot_backend/internal/email"
	"bidpilot_backend/internal/logger"
	"bidpilot_backend/internal/models"
	"bidpilot_backend/internal/repositories"
	"bidpilot_backend/internal/services/dto"
	"bidpilot_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// Actor - кто выполняет операцию над откликом.
type Actor struct {
	UserID   string
	TenantID string
	Role     models.UserRole
}

type ResponseService interface {
	// Generation
	Generate(ctx context.Context, db *gorm.DB, tenderID string, mode models.GenerationMode, tone models.ResponseTone, actor Actor) ([]*dto.ResponseDTO, error)
	Regenerate(ctx context.Context, db *gorm.DB, responseID string, mode models.GenerationMode, tone models.ResponseTone, actor Actor) (*dto.ResponseDTO, error)

	// Lifecycle
	ListResponses(db *gorm.DB, tenantID string, status models.ResponseStatus, page, pageSize int) (*dto.ResponseListResponse, error)
	ListByTender(db *gorm.DB, tenderID string) ([]*dto.ResponseDTO, error)
	GetResponse(db *gorm.DB, id string) (*dto.ResponseDTO, error)
	UpdateText(db *gorm.DB, id, text string, actor Actor) (*dto.ResponseDTO, error)
	Submit(db *gorm.DB, id string, actor Actor) (*dto.ResponseDTO, error)
	Approve(db *gorm.DB, id string, actor Actor) (*dto.ResponseDTO, error)
	Reject(db *gorm.DB, id, reason string, actor Actor) (*dto.ResponseDTO, error)
	DeleteResponse(db *gorm.DB, id string, actor Actor) error
	GetHistory(db *gorm.DB, id string) ([]*dto.HistoryEntryDTO, error)
}

type responseService struct {
	responseRepo repositories.ResponseRepository
	tenderRepo   repositories.TenderRepository
	userRepo     repositories.UserRepository
	composer     composer.Composer
	email        email.Provider
}

func NewResponseService(
	responseRepo repositories.ResponseRepository,
	tenderRepo repositories.TenderRepository,
	userRepo repositories.UserRepository,
	composer composer.Composer,
	emailProvider email.Provider,
) ResponseService {
	return &responseService{
		responseRepo: responseRepo,
		tenderRepo:   tenderRepo,
		userRepo:     userRepo,
		composer:     composer,
		email:        emailProvider,
	}
}

// ---------------- Generation ----------------

// Generate создает (или перегенерирует) черновики откликов по каждому
// требованию тендера. Повторная генерация поднимает version.
func (s *responseService) Generate(ctx context.Context, db *gorm.DB, tenderID string, mode models.GenerationMode, tone models.ResponseTone, actor Actor) ([]*dto.ResponseDTO, error) {
	if actor.Role.IsReadOnly() {
		return nil, apperrors.ErrAuditorReadOnly
	}

	tender, err := s.tenderRepo.FindTenderByID(db, tenderID)
	if err != nil {
		if errors.Is(err, repositories.ErrTenderNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, err
	}

	if tender.Status != models.TenderStatusApproved {
		return nil, apperrors.ErrInvalidStatus("responses", "Responses can only be generated for approved tenders")
	}

	if mode == "" {
		mode = models.GenerationModeBalanced
	}
	if tone == "" {
		tone = models.ResponseToneProfessional
	}

	requirements, err := s.tenderRepo.FindRequirementsByTender(db, tenderID)
	if err != nil {
		return nil, err
	}

	// Без извлеченных требований пишем один общий отклик
	if len(requirements) == 0 {
		general := &models.Requirement{
			TenderID:    tenderID,
			Title:       "General Response",
			Description: tender.Description,
		}
		if err := s.tenderRepo.CreateRequirement(db, general); err != nil {
			return nil, err
		}
		requirements = []models.Requirement{*general}
	}

	var result []*dto.ResponseDTO
	for i := range requirements {
		req := &requirements[i]

		text, err := s.composer.Compose(ctx, tender, req, mode, tone)
		if err != nil {
			return nil, apperrors.ErrExternalService(err, "responses", "Response generation failed")
		}

		existing, err := s.responseRepo.FindResponseByRequirement(db, tenderID, req.ID)
		switch {
		case err == nil:
			if !existing.Status.IsEditable() {
				continue // одобренные отклики не трогаем
			}
			existing.Text = text
			existing.Version++
			existing.Mode = mode
			existing.Tone = tone
			if err := s.responseRepo.UpdateResponse(db, existing); err != nil {
				return nil, err
			}
			result = append(result, buildResponseDTO(existing))
		case errors.Is(err, repositories.ErrResponseNotFound):
			response := &models.Response{
				TenderID:      tenderID,
				RequirementID: &req.ID,
				TenantID:      actor.TenantID,
				Title:         req.Title,
				Text:          text,
				Version:       1,
				Status:        models.ResponseStatusDraft,
				Mode:          mode,
				Tone:          tone,
			}
			if err := s.responseRepo.CreateResponse(db, response); err != nil {
				return nil, err
			}
			result = append(result, buildResponseDTO(response))
		default:
			return nil, err
		}
	}

	logger.CtxInfo(ctx, "responses generated", "tender_id", tenderID, "count", len(result))
	return result, nil
}

// Regenerate заново составляет текст одного отклика, version+1.
// Непустые mode/tone перезаписывают сохраненные настройки генерации.
func (s *responseService) Regenerate(ctx context.Context, db *gorm.DB, responseID string, mode models.GenerationMode, tone models.ResponseTone, actor Actor) (*dto.ResponseDTO, error) {
	if actor.Role.IsReadOnly() {
		return nil, apperrors.ErrAuditorReadOnly
	}

	response, err := s.findResponse(db, responseID)
	if err != nil {
		return nil, err
	}

	if !response.Status.IsEditable() {
		return nil, apperrors.ErrResponseNotEditable
	}

	tender, err := s.tenderRepo.FindTenderByID(db, response.TenderID)
	if err != nil {
		return nil, err
	}

	var requirement *models.Requirement
	if response.RequirementID != nil {
		reqs, err := s.tenderRepo.FindRequirementsByTender(db, response.TenderID)
		if err != nil {
			return nil, err
		}
		for i := range reqs {
			if reqs[i].ID == *response.RequirementID {
				requirement = &reqs[i]
				break
			}
		}
	}

	if mode != "" {
		response.Mode = mode
	}
	if tone != "" {
		response.Tone = tone
	}

	text, err := s.composer.Compose(ctx, tender, requirement, response.Mode, response.Tone)
	if err != nil {
		return nil, apperrors.ErrExternalService(err, "responses", "Response generation failed")
	}

	response.Text = text
	response.Version++
	if err := s.responseRepo.UpdateResponse(db, response); err != nil {
		return nil, err
	}

	return buildResponseDTO(response), nil
}

// ---------------- Lifecycle ----------------

func (s *responseService) ListResponses(db *gorm.DB, tenantID string, status models.ResponseStatus, page, pageSize int) (*dto.ResponseListResponse, error) {
	offset := (page - 1) * pageSize
	responses, total, err := s.responseRepo.FindResponsesByTenant(db, tenantID, status, pageSize, offset)
	if err != nil {
		return nil, err
	}

	var items []*dto.ResponseDTO
	for i := range responses {
		items = append(items, buildResponseDTO(&responses[i]))
	}

	return &dto.ResponseListResponse{
		Responses:  items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: calculateTotalPages(total, pageSize),
	}, nil
}

func (s *responseService) ListByTender(db *gorm.DB, tenderID string) ([]*dto.ResponseDTO, error) {
	responses, err := s.responseRepo.FindResponsesByTender(db, tenderID)
	if err != nil {
		return nil, err
	}

	var items []*dto.ResponseDTO
	for i := range responses {
		items = append(items, buildResponseDTO(&responses[i]))
	}
	return items, nil
}

func (s *responseService) GetResponse(db *gorm.DB, id string) (*dto.ResponseDTO, error) {
	response, err := s.findResponse(db, id)
	if err != nil {
		return nil, err
	}
	return buildResponseDTO(response), nil
}

// UpdateText меняет текст отклика. Разрешено только в DRAFT/PENDING_REVIEW,
// каждое изменение поднимает version.
func (s *responseService) UpdateText(db *gorm.DB, id, text string, actor Actor) (*dto.ResponseDTO, error) {
	if actor.Role.IsReadOnly() {
		return nil, apperrors.ErrAuditorReadOnly
	}

	response, err := s.findResponse(db, id)
	if err != nil {
		return nil, err
	}

	if !response.Status.IsEditable() {
		return nil, apperrors.ErrResponseNotEditable
	}

	response.Text = text
	response.Version++
	if err := s.responseRepo.UpdateResponse(db, response); err != nil {
		return nil, err
	}

	return buildResponseDTO(response), nil
}

// Submit отправляет черновик на ревью: DRAFT -> PENDING_REVIEW.
func (s *responseService) Submit(db *gorm.DB, id string, actor Actor) (*dto.ResponseDTO, error) {
	if actor.Role.IsReadOnly() {
		return nil, apperrors.ErrAuditorReadOnly
	}

	response, err := s.findResponse(db, id)
	if err != nil {
		return nil, err
	}

	if response.Status != models.ResponseStatusDraft {
		return nil, apperrors.ErrResponseAlreadySubmitted
	}

	return s.transition(db, response, models.ResponseStatusPendingReview, actor, "", func(r *models.Response) {
		now := time.Now()
		r.SubmittedAt = &now
	})
}

// Approve одобряет отклик: PENDING_REVIEW -> APPROVED. Только MANAGER/ADMIN.
func (s *responseService) Approve(db *gorm.DB, id string, actor Actor) (*dto.ResponseDTO, error) {
	if !actor.Role.CanApprove() {
		return nil, apperrors.ErrApproveForbidden
	}

	response, err := s.findResponse(db, id)
	if err != nil {
		return nil, err
	}

	if !response.Status.CanTransition(models.ResponseStatusApproved) {
		return nil, apperrors.ErrInvalidStatus("responses", "Only responses pending review can be approved")
	}

	return s.transition(db, response, models.ResponseStatusApproved, actor, "", func(r *models.Response) {
		now := time.Now()
		r.ApprovedBy = &actor.UserID
		r.ApprovedAt = &now
	})
}

// Reject возвращает отклик с ревью: PENDING_REVIEW -> REJECTED.
func (s *responseService) Reject(db *gorm.DB, id, reason string, actor Actor) (*dto.ResponseDTO, error) {
	if !actor.Role.CanApprove() {
		return nil, apperrors.ErrApproveForbidden
	}

	response, err := s.findResponse(db, id)
	if err != nil {
		return nil, err
	}

	if !response.Status.CanTransition(models.ResponseStatusRejected) {
		return nil, apperrors.ErrInvalidStatus("responses", "Only responses pending review can be rejected")
	}

	return s.transition(db, response, models.ResponseStatusRejected, actor, reason, nil)
}

func (s *responseService) DeleteResponse(db *gorm.DB, id string, actor Actor) error {
	if actor.Role.IsReadOnly() {
		return apperrors.ErrAuditorReadOnly
	}

	err := s.responseRepo.DeleteResponse(db, id)
	if errors.Is(err, repositories.ErrResponseNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return err
}

func (s *responseService) GetHistory(db *gorm.DB, id string) ([]*dto.HistoryEntryDTO, error) {
	if _, err := s.findResponse(db, id); err != nil {
		return nil, err
	}

	history, err := s.responseRepo.FindHistoryByResponse(db, id)
	if err != nil {
		return nil, err
	}

	var entries []*dto.HistoryEntryDTO
	for _, h := range history {
		entries = append(entries, &dto.HistoryEntryDTO{
			ID:         h.ID,
			FromStatus: string(h.FromStatus),
			ToStatus:   string(h.ToStatus),
			ActorID:    h.ActorID,
			Note:       h.Note,
			CreatedAt:  h.CreatedAt,
		})
	}
	return entries, nil
}

// ---------------- Helpers ----------------

func (s *responseService) findResponse(db *gorm.DB, id string) (*models.Response, error) {
	response, err := s.responseRepo.FindResponseByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrResponseNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, err
	}
	return response, nil
}

// transition выполняет переход статуса с записью в журнал workflow.
func (s *responseService) transition(db *gorm.DB, response *models.Response, target models.ResponseStatus, actor Actor, note string, mutate func(*models.Response)) (*dto.ResponseDTO, error) {
	from := response.Status
	response.Status = target
	if mutate != nil {
		mutate(response)
	}

	if err := s.responseRepo.UpdateResponse(db, response); err != nil {
		return nil, err
	}

	entry := &models.WorkflowHistory{
		ResponseID: response.ID,
		FromStatus: from,
		ToStatus:   target,
		ActorID:    actor.UserID,
		Note:       note,
	}
	if err := s.responseRepo.AddHistory(db, entry); err != nil {
		return nil, err
	}

	s.notifyStatusChange(db, response, target)

	return buildResponseDTO(response), nil
}

// notifyStatusChange шлет письмо автору отправки (последний переход в
// PENDING_REVIEW). Отправка не должна блокировать переход статуса.
func (s *responseService) notifyStatusChange(db *gorm.DB, response *models.Response, target models.ResponseStatus) {
	history, err := s.responseRepo.FindHistoryByResponse(db, response.ID)
	if err != nil {
		logger.Warn("status change notification skipped", "response_id", response.ID, "error", err.Error())
		return
	}

	var submitterID string
	for _, h := range history {
		if h.ToStatus == models.ResponseStatusPendingReview {
			submitterID = h.ActorID
		}
	}
	if submitterID == "" {
		return
	}

	user, err := s.userRepo.FindUserByID(db, submitterID)
	if err != nil {
		logger.Warn("status change notification skipped", "response_id", response.ID, "error", err.Error())
		return
	}

	to := user.Email
	title := response.Title
	status := string(target)
	go func() {
		if err := s.email.SendResponseStatusChanged(to, title, status); err != nil {
			logger.Warn("status change email failed", "email", to, "error", err.Error())
		}
	}()
}

func buildResponseDTO(r *models.Response) *dto.ResponseDTO {
	return &dto.ResponseDTO{
		ID:            r.ID,
		TenderID:      r.TenderID,
		RequirementID: r.RequirementID,
		Title:         r.Title,
		Text:          r.Text,
		Version:       r.Version,
		Status:        string(r.Status),
		Mode:          string(r.Mode),
		Tone:          string(r.Tone),
		AIScore:       r.AIScore,
		ApprovedBy:    r.ApprovedBy,
		ApprovedAt:    r.ApprovedAt,
		SubmittedAt:   r.SubmittedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
