package dto

import "time"

type TenderListQuery struct {
	Status string `form:"status" validate:"omitempty,is-tender-status"`
}

type AttachmentInfo struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	FileURL  string `json:"file_url"`
}

type TenderResponse struct {
	ID               string           `json:"id"`
	ExternalRefID    string           `json:"external_ref_id"`
	SourcePortal     string           `json:"source_portal"`
	Title            string           `json:"title"`
	Description      string           `json:"description,omitempty"`
	Customer         string           `json:"customer,omitempty"`
	Category         string           `json:"category,omitempty"`
	Deadline         *time.Time       `json:"deadline,omitempty"`
	PublishedAt      *time.Time       `json:"published_at,omitempty"`
	MatchScore       int              `json:"match_score"`
	MatchLabel       string           `json:"match_label"`
	MatchExplanation string           `json:"match_explanation,omitempty"`
	MatchTags        []string         `json:"match_tags,omitempty"`
	Status           string           `json:"status"`
	Attachments      []AttachmentInfo `json:"attachments,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

type TenderListResponse struct {
	Tenders    []*TenderResponse `json:"tenders"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// ScanStatusResponse отражает состояние фонового сканирования для арендатора.
type ScanStatusResponse struct {
	Scanning   bool       `json:"scanning"`
	LastScanAt *time.Time `json:"last_scan_at,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
}
