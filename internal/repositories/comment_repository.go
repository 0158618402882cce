package repositories

import (
	"errors"
	"time"

	"bidpilot_backend/internal/models"

	"gorm.io/gorm"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentRepository interface {
	CreateComment(db *gorm.DB, comment *models.ReviewComment) error
	FindCommentByID(db *gorm.DB, id string) (*models.ReviewComment, error)
	FindCommentsByResponse(db *gorm.DB, responseID string) ([]models.ReviewComment, error)
	ResolveComment(db *gorm.DB, id string) error
}

type CommentRepositoryImpl struct {
}

func NewCommentRepository() CommentRepository {
	return &CommentRepositoryImpl{}
}

func (r *CommentRepositoryImpl) CreateComment(db *gorm.DB, comment *models.ReviewComment) error {
	return db.Create(comment).Error
}

func (r *CommentRepositoryImpl) FindCommentByID(db *gorm.DB, id string) (*models.ReviewComment, error) {
	var comment models.ReviewComment
	err := db.Preload("Author").First(&comment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepositoryImpl) FindCommentsByResponse(db *gorm.DB, responseID string) ([]models.ReviewComment, error) {
	var comments []models.ReviewComment
	err := db.Preload("Author").
		Where("response_id = ?", responseID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// ResolveComment помечает комментарий решенным. Переход односторонний.
func (r *CommentRepositoryImpl) ResolveComment(db *gorm.DB, id string) error {
	now := time.Now()
	result := db.Model(&models.ReviewComment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"resolved":    true,
		"resolved_at": now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}
