package services

import (
	"errors"
	"strings"

	"bidpilot_backend/internal/models"
	"bidpilot_backend/internal/repositories"
	"bidpilot_backend/internal/services/dto"
	"bidpilot_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type CommentService interface {
	ListComments(db *gorm.DB, responseID string) ([]*dto.CommentResponse, error)
	AddComment(db *gorm.DB, responseID, authorID, text string, parentID *string) (*dto.CommentResponse, error)
	ResolveComment(db *gorm.DB, commentID string) error
}

type commentService struct {
	commentRepo  repositories.CommentRepository
	responseRepo repositories.ResponseRepository
}

func NewCommentService(
	commentRepo repositories.CommentRepository,
	responseRepo repositories.ResponseRepository,
) CommentService {
	return &commentService{
		commentRepo:  commentRepo,
		responseRepo: responseRepo,
	}
}

func (s *commentService) ListComments(db *gorm.DB, responseID string) ([]*dto.CommentResponse, error) {
	if _, err := s.responseRepo.FindResponseByID(db, responseID); err != nil {
		if errors.Is(err, repositories.ErrResponseNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, err
	}

	comments, err := s.commentRepo.FindCommentsByResponse(db, responseID)
	if err != nil {
		return nil, err
	}

	var result []*dto.CommentResponse
	for i := range comments {
		result = append(result, buildCommentResponse(&comments[i]))
	}
	return result, nil
}

func (s *commentService) AddComment(db *gorm.DB, responseID, authorID, text string, parentID *string) (*dto.CommentResponse, error) {
	// Пустой текст отклоняем до обращения к БД
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrEmptyComment
	}

	if _, err := s.responseRepo.FindResponseByID(db, responseID); err != nil {
		if errors.Is(err, repositories.ErrResponseNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, err
	}

	if parentID != nil {
		parent, err := s.commentRepo.FindCommentByID(db, *parentID)
		if err != nil {
			if errors.Is(err, repositories.ErrCommentNotFound) {
				return nil, apperrors.ErrNotFound(err)
			}
			return nil, err
		}
		if parent.ResponseID != responseID {
			return nil, apperrors.ErrInvalidOperation("comments", "Parent comment belongs to another response")
		}
	}

	comment := &models.ReviewComment{
		ResponseID: responseID,
		AuthorID:   authorID,
		ParentID:   parentID,
		Text:       text,
	}

	if err := s.commentRepo.CreateComment(db, comment); err != nil {
		return nil, err
	}

	// Перечитываем с автором для ответа
	created, err := s.commentRepo.FindCommentByID(db, comment.ID)
	if err != nil {
		return buildCommentResponse(comment), nil
	}
	return buildCommentResponse(created), nil
}

func (s *commentService) ResolveComment(db *gorm.DB, commentID string) error {
	err := s.commentRepo.ResolveComment(db, commentID)
	if errors.Is(err, repositories.ErrCommentNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return err
}

func buildCommentResponse(c *models.ReviewComment) *dto.CommentResponse {
	resp := &dto.CommentResponse{
		ID:         c.ID,
		ResponseID: c.ResponseID,
		AuthorID:   c.AuthorID,
		ParentID:   c.ParentID,
		Text:       c.Text,
		Resolved:   c.Resolved,
		ResolvedAt: c.ResolvedAt,
		CreatedAt:  c.CreatedAt,
	}
	if c.Author.ID != "" {
		resp.AuthorName = c.Author.FullName
	}
	return resp
}
