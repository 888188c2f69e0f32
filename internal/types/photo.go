package types

import (
	"time"

	"github.com/google/uuid"
)

type Photo struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LogbookID  uuid.UUID `gorm:"type:uuid;not null;index;column:logbook_id" json:"logbook_id"`
	UploadedBy uuid.UUID `gorm:"type:uuid;not null;column:uploaded_by" json:"uploaded_by"`
	BucketKey  string    `gorm:"not null;column:bucket_key" json:"bucket_key"`
	URL        string    `gorm:"not null;column:url" json:"url"`
	Caption    string    `gorm:"column:caption" json:"caption"`
	Position   int       `gorm:"not null;default:0;column:position" json:"position"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Photo) TableName() string {
	return "photo"
}
