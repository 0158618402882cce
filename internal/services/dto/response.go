package dto

import "time"

type GenerateRequest struct {
	TenderID string `json:"tender_id" validate:"required,uuid4"`
	Mode     string `json:"mode" validate:"omitempty,is-generation-mode"`
	Tone     string `json:"tone" validate:"omitempty,is-tone"`
}

type RegenerateRequest struct {
	Mode string `json:"mode" validate:"omitempty,is-generation-mode"`
	Tone string `json:"tone" validate:"omitempty,is-tone"`
}

type UpdateResponseRequest struct {
	Text string `json:"text" validate:"required"`
}

type RejectRequest struct {
	Reason string `json:"reason,omitempty"`
}

type ResponseListQuery struct {
	Status string `form:"status" validate:"omitempty,is-response-status"`
}

type ResponseDTO struct {
	ID            string     `json:"id"`
	TenderID      string     `json:"tender_id"`
	RequirementID *string    `json:"requirement_id,omitempty"`
	Title         string     `json:"title"`
	Text          string     `json:"text"`
	Version       int        `json:"version"`
	Status        string     `json:"status"`
	Mode          string     `json:"mode"`
	Tone          string     `json:"tone"`
	AIScore       *float64   `json:"ai_score,omitempty"`
	ApprovedBy    *string    `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type ResponseListResponse struct {
	Responses  []*ResponseDTO `json:"responses"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

type HistoryEntryDTO struct {
	ID         string    `json:"id"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	ActorID    string    `json:"actor_id,omitempty"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
