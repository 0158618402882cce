package dto

import "time"

type AddCommentRequest struct {
	Text     string  `json:"text" validate:"required"`
	ParentID *string `json:"parent_id,omitempty" validate:"omitempty,uuid4"`
}

type CommentResponse struct {
	ID         string     `json:"id"`
	ResponseID string     `json:"response_id"`
	AuthorID   string     `json:"author_id"`
	AuthorName string     `json:"author_name,omitempty"`
	ParentID   *string    `json:"parent_id,omitempty"`
	Text       string     `json:"text"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
