package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Logbook is the tenancy boundary for all shared content. PageSections
// holds the per-logbook override document: a sparse JSON tree keyed by
// page type that stores only the fields that differ from the compiled
// section defaults. ContentVersion is bumped on every content write and
// guards against lost updates from concurrent editors.
type Logbook struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Slug           string         `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	Title          string         `gorm:"not null;column:title" json:"title"`
	FamilyName     string         `gorm:"column:family_name" json:"family_name"`
	PageSections   datatypes.JSON `gorm:"type:jsonb;column:page_sections" json:"page_sections"`
	ContentVersion int64          `gorm:"not null;default:0;column:content_version" json:"content_version"`
	CreatedBy      uuid.UUID      `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Logbook) TableName() string {
	return "logbook"
}
