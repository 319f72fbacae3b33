package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InputTypeText      = "text"
	InputTypeTextImage = "text+image"
)

// Styles lists the accepted report styles.
var Styles = []string{"professional", "student", "technical", "casual"}

// Report is one generated report. Rows are written once and never updated.
type Report struct {
	ID            string    `json:"id" gorm:"type:uuid;primaryKey"`
	Title         string    `json:"title" gorm:"not null"`
	Style         string    `json:"style"`
	InputType     string    `json:"input_type" gorm:"not null"`
	RawInput      string    `json:"raw_input" gorm:"type:text;not null"`
	ReportContent string    `json:"report_content" gorm:"type:text;not null"`
	UserID        string    `json:"user_id" gorm:"not null;index:idx_reports_user_created,priority:1"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null;index:idx_reports_user_created,priority:2"`
}

func (Report) TableName() string { return "reports" }

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
