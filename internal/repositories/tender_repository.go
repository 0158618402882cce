package repositories

import (
	"errors"
	"time"

	"bidpilot_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrTenderNotFound      = errors.New("tender not found")
	ErrTenderAlreadyExists = errors.New("tender already discovered for this tenant")
)

type TenderRepository interface {
	// Tender operations
	CreateTender(db *gorm.DB, tender *models.Tender) error
	FindTenderByID(db *gorm.DB, id string) (*models.Tender, error)
	FindTenderByExternalRef(db *gorm.DB, tenantID, externalRefID string) (*models.Tender, error)
	FindTenders(db *gorm.DB, tenantID string, status models.TenderStatus, limit, offset int) ([]models.Tender, int64, error)
	UpdateTender(db *gorm.DB, tender *models.Tender) error
	UpdateTenderStatus(db *gorm.DB, id string, status models.TenderStatus, reviewerID string) error
	DeleteTender(db *gorm.DB, id string) error

	// Attachment operations
	CreateAttachment(db *gorm.DB, attachment *models.TenderAttachment) error
	FindAttachmentsByTender(db *gorm.DB, tenderID string) ([]models.TenderAttachment, error)

	// Requirement operations
	CreateRequirement(db *gorm.DB, requirement *models.Requirement) error
	FindRequirementsByTender(db *gorm.DB, tenderID string) ([]models.Requirement, error)
}

type TenderRepositoryImpl struct {
}

func NewTenderRepository() TenderRepository {
	return &TenderRepositoryImpl{}
}

// Tender operations

func (r *TenderRepositoryImpl) CreateTender(db *gorm.DB, tender *models.Tender) error {
	// Dedupe: one discovery row per (tenant, external ref)
	var existing models.Tender
	err := db.Where("tenant_id = ? AND external_ref_id = ?", tender.TenantID, tender.ExternalRefID).
		First(&existing).Error
	if err == nil {
		return ErrTenderAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return db.Create(tender).Error
}

func (r *TenderRepositoryImpl) FindTenderByID(db *gorm.DB, id string) (*models.Tender, error) {
	var tender models.Tender
	err := db.Preload("Attachments").First(&tender, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenderNotFound
		}
		return nil, err
	}
	return &tender, nil
}

func (r *TenderRepositoryImpl) FindTenderByExternalRef(db *gorm.DB, tenantID, externalRefID string) (*models.Tender, error) {
	var tender models.Tender
	err := db.Where("tenant_id = ? AND external_ref_id = ?", tenantID, externalRefID).
		First(&tender).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenderNotFound
		}
		return nil, err
	}
	return &tender, nil
}

func (r *TenderRepositoryImpl) FindTenders(db *gorm.DB, tenantID string, status models.TenderStatus, limit, offset int) ([]models.Tender, int64, error) {
	var tenders []models.Tender

	query := db.Model(&models.Tender{}).Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Attachments").
		Order("match_score DESC, created_at DESC").
		Limit(limit).Offset(offset).
		Find(&tenders).Error

	return tenders, total, err
}

func (r *TenderRepositoryImpl) UpdateTender(db *gorm.DB, tender *models.Tender) error {
	result := db.Save(tender)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTenderNotFound
	}
	return nil
}

func (r *TenderRepositoryImpl) UpdateTenderStatus(db *gorm.DB, id string, status models.TenderStatus, reviewerID string) error {
	now := time.Now()
	result := db.Model(&models.Tender{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      status,
		"reviewed_by": reviewerID,
		"reviewed_at": now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTenderNotFound
	}
	return nil
}

func (r *TenderRepositoryImpl) DeleteTender(db *gorm.DB, id string) error {
	// Children go first, the FK cascade is not guaranteed on sqlite
	responseIDs := db.Model(&models.Response{}).Select("id").Where("tender_id = ?", id)
	if err := db.Where("response_id IN (?)", responseIDs).Delete(&models.ReviewComment{}).Error; err != nil {
		return err
	}
	if err := db.Where("response_id IN (?)", responseIDs).Delete(&models.WorkflowHistory{}).Error; err != nil {
		return err
	}
	if err := db.Where("tender_id = ?", id).Delete(&models.Response{}).Error; err != nil {
		return err
	}
	if err := db.Where("tender_id = ?", id).Delete(&models.TenderAttachment{}).Error; err != nil {
		return err
	}
	if err := db.Where("tender_id = ?", id).Delete(&models.Requirement{}).Error; err != nil {
		return err
	}

	result := db.Where("id = ?", id).Delete(&models.Tender{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTenderNotFound
	}
	return nil
}

// Attachment operations

func (r *TenderRepositoryImpl) CreateAttachment(db *gorm.DB, attachment *models.TenderAttachment) error {
	return db.Create(attachment).Error
}

func (r *TenderRepositoryImpl) FindAttachmentsByTender(db *gorm.DB, tenderID string) ([]models.TenderAttachment, error) {
	var attachments []models.TenderAttachment
	err := db.Where("tender_id = ?", tenderID).
		Order("created_at ASC").
		Find(&attachments).Error
	return attachments, err
}

// Requirement operations

func (r *TenderRepositoryImpl) CreateRequirement(db *gorm.DB, requirement *models.Requirement) error {
	return db.Create(requirement).Error
}

func (r *TenderRepositoryImpl) FindRequirementsByTender(db *gorm.DB, tenderID string) ([]models.Requirement, error) {
	var requirements []models.Requirement
	err := db.Where("tender_id = ?", tenderID).
		Order("sort_order ASC, created_at ASC").
		Find(&requirements).Error
	return requirements, err
}
