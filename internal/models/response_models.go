package models

import "time"

// Response - сгенерированный отклик на требование тендера.
type Response struct {
	BaseModel
	TenderID      string  `gorm:"type:uuid;not null;index"`
	RequirementID *string `gorm:"type:uuid;index"`
	TenantID      string  `gorm:"not null;index"`
	Title         string
	Text          string         `gorm:"type:text"`
	Version       int            `gorm:"default:1"` // +1 на каждое изменение текста
	Status        ResponseStatus `gorm:"type:varchar(20);default:'DRAFT';index"`
	Mode          GenerationMode `gorm:"type:varchar(16);default:'balanced'"`
	Tone          ResponseTone   `gorm:"type:varchar(16);default:'professional'"`
	AIScore       *float64       // доля AI-текста по последней проверке
	ApprovedBy    *string        `gorm:"type:uuid"`
	ApprovedAt    *time.Time
	SubmittedAt   *time.Time

	// Relations
	Comments []ReviewComment   `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE"`
	History  []WorkflowHistory `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE"`
}

// Requirement - требование из тендерной документации, под которое пишется отклик.
type Requirement struct {
	BaseModel
	TenderID    string `gorm:"type:uuid;not null;index"`
	Title       string `gorm:"not null"`
	Description string `gorm:"type:text"`
	Mandatory   bool   `gorm:"default:true"`
	SortOrder   int    `gorm:"default:0"`
}

// WorkflowHistory - журнал переходов статуса отклика.
type WorkflowHistory struct {
	BaseModel
	ResponseID string         `gorm:"type:uuid;not null;index"`
	FromStatus ResponseStatus `gorm:"type:varchar(20)"`
	ToStatus   ResponseStatus `gorm:"type:varchar(20);not null"`
	ActorID    string         `gorm:"type:uuid"`
	Note       string
}
