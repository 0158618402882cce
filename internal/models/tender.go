package models

import (
	"time"

	"gorm.io/datatypes"
)

// Tender - найденный на портале тендер, ожидающий модерации.
type Tender struct {
	BaseModel
	TenantID      string `gorm:"not null;index:idx_tenders_tenant_ref,unique"`
	ExternalRefID string `gorm:"not null;index:idx_tenders_tenant_ref,unique"` // ID тендера на портале
	SourcePortal  string `gorm:"not null"`
	Title         string `gorm:"not null"`
	Description   string
	Customer      string
	Category      string
	Region        string
	Budget        float64
	Currency      string `gorm:"default:'KZT'"`
	Deadline      *time.Time
	PublishedAt   *time.Time
	SourceURL     string

	// Результат автоматического скоринга релевантности
	MatchScore       int            `gorm:"default:0"`
	MatchLabel       string         // Highly Relevant / Related / Weak Match
	MatchExplanation string
	MatchTags        datatypes.JSON `gorm:"type:jsonb"` // ✅ JSONB

	Status     TenderStatus `gorm:"type:varchar(16);default:'PENDING';index"`
	ReviewedBy *string      `gorm:"type:uuid"`
	ReviewedAt *time.Time

	// Relations
	Attachments []TenderAttachment `gorm:"foreignKey:TenderID;constraint:OnDelete:CASCADE"`
	Responses   []Response         `gorm:"foreignKey:TenderID"`
}

// TenderAttachment - документ тендера (ТЗ, смета и т.п.), хранится как внешняя ссылка.
type TenderAttachment struct {
	BaseModel
	TenderID string `gorm:"type:uuid;not null;index"`
	FileName string `gorm:"not null"`
	FileURL  string `gorm:"not null"`
	MimeType string
	SizeB    int64
}
