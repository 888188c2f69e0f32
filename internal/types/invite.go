package types

import (
	"time"

	"github.com/google/uuid"
)

type Invite struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LogbookID  uuid.UUID  `gorm:"type:uuid;not null;index;column:logbook_id" json:"logbook_id"`
	Code       string     `gorm:"uniqueIndex;not null;column:code" json:"code"`
	Role       Role       `gorm:"type:text;not null;column:role" json:"role"`
	CreatedBy  uuid.UUID  `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	ExpiresAt  time.Time  `gorm:"not null;column:expires_at" json:"expires_at"`
	MaxUses    int        `gorm:"not null;default:1;column:max_uses" json:"max_uses"`
	UseCount   int        `gorm:"not null;default:0;column:use_count" json:"use_count"`
	RedeemedBy *uuid.UUID `gorm:"type:uuid;column:redeemed_by" json:"redeemed_by,omitempty"`
	RedeemedAt *time.Time `gorm:"column:redeemed_at" json:"redeemed_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (Invite) TableName() string {
	return "invite"
}

func (i *Invite) Exhausted() bool {
	return i.UseCount >= i.MaxUses
}

func (i *Invite) Expired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}
