package services

import (
	"context"
	"encoding/json"
	"errors"

	"bidpilot_backend/internal/discovery"
	"bidpilot_backend/internal/logger"
	"bidpilot_backend/internal/models"
	"bidpilot_backend/internal/repositories"
	"bidpilot_backend/internal/services/dto"
	"bidpilot_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type DiscoveryService interface {
	// Tender listing and moderation
	ListTenders(db *gorm.DB, tenantID string, status models.TenderStatus, page, pageSize int) (*dto.TenderListResponse, error)
	GetTender(db *gorm.DB, id string) (*dto.TenderResponse, error)
	ApproveTender(db *gorm.DB, tenderID, reviewerID string) error
	RejectTender(db *gorm.DB, tenderID, reviewerID string) error
	DeleteTender(db *gorm.DB, tenderID string) error

	// Scan orchestration (used by the discovery worker)
	Scan(ctx context.Context, db *gorm.DB, tenantID string) (int, error)
}

type discoveryService struct {
	tenderRepo repositories.TenderRepository
	scrapers   []discovery.Scraper
	matcher    discovery.Matcher
}

func NewDiscoveryService(
	tenderRepo repositories.TenderRepository,
	scrapers []discovery.Scraper,
	matcher discovery.Matcher,
) DiscoveryService {
	return &discoveryService{
		tenderRepo: tenderRepo,
		scrapers:   scrapers,
		matcher:    matcher,
	}
}

// ---------------- Listing and moderation ----------------

func (s *discoveryService) ListTenders(db *gorm.DB, tenantID string, status models.TenderStatus, page, pageSize int) (*dto.TenderListResponse, error) {
	offset := (page - 1) * pageSize
	tenders, total, err := s.tenderRepo.FindTenders(db, tenantID, status, pageSize, offset)
	if err != nil {
		return nil, err
	}

	var tenderResponses []*dto.TenderResponse
	for i := range tenders {
		tenderResponses = append(tenderResponses, buildTenderResponse(&tenders[i]))
	}

	return &dto.TenderListResponse{
		Tenders:    tenderResponses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: calculateTotalPages(total, pageSize),
	}, nil
}

func (s *discoveryService) GetTender(db *gorm.DB, id string) (*dto.TenderResponse, error) {
	tender, err := s.tenderRepo.FindTenderByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTenderNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, err
	}
	return buildTenderResponse(tender), nil
}

func (s *discoveryService) ApproveTender(db *gorm.DB, tenderID, reviewerID string) error {
	return s.moderate(db, tenderID, models.TenderStatusApproved, reviewerID)
}

func (s *discoveryService) RejectTender(db *gorm.DB, tenderID, reviewerID string) error {
	return s.moderate(db, tenderID, models.TenderStatusRejected, reviewerID)
}

func (s *discoveryService) moderate(db *gorm.DB, tenderID string, target models.TenderStatus, reviewerID string) error {
	tender, err := s.tenderRepo.FindTenderByID(db, tenderID)
	if err != nil {
		if errors.Is(err, repositories.ErrTenderNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return err
	}

	if !tender.Status.CanTransition(target) {
		return apperrors.ErrTenderNotPending
	}

	return s.tenderRepo.UpdateTenderStatus(db, tenderID, target, reviewerID)
}

func (s *discoveryService) DeleteTender(db *gorm.DB, tenderID string) error {
	err := s.tenderRepo.DeleteTender(db, tenderID)
	if errors.Is(err, repositories.ErrTenderNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return err
}

// ---------------- Scan orchestration ----------------

// Scan опрашивает все порталы, скорит находки и сохраняет новые тендеры.
// Возвращает число новых тендеров. Дубликаты (tenant + external ref) пропускаются.
func (s *discoveryService) Scan(ctx context.Context, db *gorm.DB, tenantID string) (int, error) {
	created := 0

	for _, scraper := range s.scrapers {
		found, err := scraper.Scan(ctx)
		if err != nil {
			logger.CtxWithError(ctx, "portal scan failed", err, "tenant_id", tenantID)
			return created, apperrors.ErrExternalService(err, "discovery", "Portal scan failed")
		}

		for _, raw := range found {
			// Дубликат - пропускаем до запроса деталей
			if _, err := s.tenderRepo.FindTenderByExternalRef(db, tenantID, raw.ExternalRefID); err == nil {
				continue
			} else if !errors.Is(err, repositories.ErrTenderNotFound) {
				return created, err
			}

			detailed, err := scraper.GetDetails(ctx, raw)
			if err != nil {
				logger.CtxWithError(ctx, "tender details fetch failed", err, "external_ref_id", raw.ExternalRefID)
				continue
			}

			match, err := s.matcher.Match(ctx, detailed)
			if err != nil {
				return created, err
			}

			tender := buildTenderModel(tenantID, detailed, match)
			if err := s.tenderRepo.CreateTender(db, tender); err != nil {
				if errors.Is(err, repositories.ErrTenderAlreadyExists) {
					continue
				}
				return created, err
			}

			for _, att := range detailed.Attachments {
				attachment := &models.TenderAttachment{
					TenderID: tender.ID,
					FileName: att.Name,
					FileURL:  att.URL,
				}
				if err := s.tenderRepo.CreateAttachment(db, attachment); err != nil {
					return created, err
				}
			}

			created++
		}
	}

	logger.CtxInfo(ctx, "discovery scan finished", "tenant_id", tenantID, "new_tenders", created)
	return created, nil
}

// ---------------- Helpers ----------------

func buildTenderModel(tenantID string, d discovery.DiscoveredTender, match discovery.MatchResult) *models.Tender {
	tagsJSON, _ := json.Marshal(match.Tags)

	return &models.Tender{
		TenantID:         tenantID,
		ExternalRefID:    d.ExternalRefID,
		SourcePortal:     d.SourcePortal,
		Title:            d.Title,
		Description:      d.Description,
		Customer:         d.Authority,
		Category:         d.Category,
		Region:           d.Location,
		Deadline:         d.Deadline,
		PublishedAt:      d.PublishDate,
		SourceURL:        d.SourceURL,
		MatchScore:       match.Score,
		MatchLabel:       match.Label,
		MatchExplanation: match.Explanation,
		MatchTags:        tagsJSON,
		Status:           models.TenderStatusPending,
	}
}

func buildTenderResponse(t *models.Tender) *dto.TenderResponse {
	resp := &dto.TenderResponse{
		ID:               t.ID,
		ExternalRefID:    t.ExternalRefID,
		SourcePortal:     t.SourcePortal,
		Title:            t.Title,
		Description:      t.Description,
		Customer:         t.Customer,
		Category:         t.Category,
		Deadline:         t.Deadline,
		PublishedAt:      t.PublishedAt,
		MatchScore:       t.MatchScore,
		MatchLabel:       t.MatchLabel,
		MatchExplanation: t.MatchExplanation,
		Status:           string(t.Status),
		CreatedAt:        t.CreatedAt,
	}

	if len(t.MatchTags) > 0 {
		var tags []string
		if err := json.Unmarshal(t.MatchTags, &tags); err == nil {
			resp.MatchTags = tags
		}
	}

	for _, att := range t.Attachments {
		resp.Attachments = append(resp.Attachments, dto.AttachmentInfo{
			ID:       att.ID,
			FileName: att.FileName,
			FileURL:  att.FileURL,
		})
	}

	return resp
}

func calculateTotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}
