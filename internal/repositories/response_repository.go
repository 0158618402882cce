package repositories

import (
	"errors"

	"bidpilot_backend/internal/models"

	"gorm.io/gorm"
)

var ErrResponseNotFound = errors.New("response not found")

type ResponseRepository interface {
	// Response operations
	CreateResponse(db *gorm.DB, response *models.Response) error
	FindResponseByID(db *gorm.DB, id string) (*models.Response, error)
	FindResponsesByTender(db *gorm.DB, tenderID string) ([]models.Response, error)
	FindResponsesByTenant(db *gorm.DB, tenantID string, status models.ResponseStatus, limit, offset int) ([]models.Response, int64, error)
	FindResponseByRequirement(db *gorm.DB, tenderID, requirementID string) (*models.Response, error)
	UpdateResponse(db *gorm.DB, response *models.Response) error
	DeleteResponse(db *gorm.DB, id string) error

	// Workflow history
	AddHistory(db *gorm.DB, entry *models.WorkflowHistory) error
	FindHistoryByResponse(db *gorm.DB, responseID string) ([]models.WorkflowHistory, error)
}

type ResponseRepositoryImpl struct {
}

func NewResponseRepository() ResponseRepository {
	return &ResponseRepositoryImpl{}
}

// Response operations

func (r *ResponseRepositoryImpl) CreateResponse(db *gorm.DB, response *models.Response) error {
	return db.Create(response).Error
}

func (r *ResponseRepositoryImpl) FindResponseByID(db *gorm.DB, id string) (*models.Response, error) {
	var response models.Response
	err := db.First(&response, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResponseNotFound
		}
		return nil, err
	}
	return &response, nil
}

func (r *ResponseRepositoryImpl) FindResponsesByTender(db *gorm.DB, tenderID string) ([]models.Response, error) {
	var responses []models.Response
	err := db.Where("tender_id = ?", tenderID).
		Order("created_at ASC").
		Find(&responses).Error
	return responses, err
}

func (r *ResponseRepositoryImpl) FindResponsesByTenant(db *gorm.DB, tenantID string, status models.ResponseStatus, limit, offset int) ([]models.Response, int64, error) {
	var responses []models.Response

	query := db.Model(&models.Response{}).Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&responses).Error

	return responses, total, err
}

func (r *ResponseRepositoryImpl) FindResponseByRequirement(db *gorm.DB, tenderID, requirementID string) (*models.Response, error) {
	var response models.Response
	err := db.Where("tender_id = ? AND requirement_id = ?", tenderID, requirementID).
		First(&response).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResponseNotFound
		}
		return nil, err
	}
	return &response, nil
}

func (r *ResponseRepositoryImpl) UpdateResponse(db *gorm.DB, response *models.Response) error {
	result := db.Save(response)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrResponseNotFound
	}
	return nil
}

func (r *ResponseRepositoryImpl) DeleteResponse(db *gorm.DB, id string) error {
	// Комментарии и журнал удаляются вместе с откликом
	if err := db.Where("response_id = ?", id).Delete(&models.ReviewComment{}).Error; err != nil {
		return err
	}
	if err := db.Where("response_id = ?", id).Delete(&models.WorkflowHistory{}).Error; err != nil {
		return err
	}

	result := db.Where("id = ?", id).Delete(&models.Response{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrResponseNotFound
	}
	return nil
}

// Workflow history

func (r *ResponseRepositoryImpl) AddHistory(db *gorm.DB, entry *models.WorkflowHistory) error {
	return db.Create(entry).Error
}

func (r *ResponseRepositoryImpl) FindHistoryByResponse(db *gorm.DB, responseID string) ([]models.WorkflowHistory, error) {
	var history []models.WorkflowHistory
	err := db.Where("response_id = ?", responseID).
		Order("created_at ASC").
		Find(&history).Error
	return history, err
}
