package models

import "time"

// ReviewComment - комментарий ревьюера к отклику.
type ReviewComment struct {
	BaseModel
	ResponseID string  `gorm:"type:uuid;not null;index"`
	AuthorID   string  `gorm:"type:uuid;not null"`
	ParentID   *string `gorm:"type:uuid;index"` // для тредов
	Text       string  `gorm:"type:text;not null"`
	Resolved   bool    `gorm:"default:false"`
	ResolvedAt *time.Time

	// Relations
	Author  User            `gorm:"foreignKey:AuthorID"`
	Replies []ReviewComment `gorm:"foreignKey:ParentID"`
}
