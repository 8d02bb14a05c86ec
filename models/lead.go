package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead is the contact information a visitor leaves before following a project link.
type Lead struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Email       string    `json:"email" db:"email" gorm:"type:text;not null"`
	Phone       string    `json:"phone" db:"phone" gorm:"type:text;not null"`
	ProjectID   uuid.UUID `json:"projectId" db:"project_id" gorm:"type:uuid;not null;index:idx_lead_project_id"`
	ProjectName string    `json:"projectName" db:"project_name" gorm:"type:text;not null"`
	CapturedAt  time.Time `json:"capturedAt" db:"captured_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;index"`
}

// LeadDraft is what the gate hands to the store; id and capture time are assigned there.
type LeadDraft struct {
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	ProjectID   uuid.UUID `json:"projectId"`
	ProjectName string    `json:"projectName"`
}
