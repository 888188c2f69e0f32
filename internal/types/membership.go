package types

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleParent Role = "parent"
	RoleFamily Role = "family"
	RoleFriend Role = "friend"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleParent, RoleFamily, RoleFriend:
		return true
	}
	return false
}

// CanEditContent reports whether the role may mutate page content.
// Family and friend members are read-only for content purposes.
func (r Role) CanEditContent() bool {
	return r == RoleParent
}

type Membership struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LogbookID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_membership_logbook_user;column:logbook_id" json:"logbook_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_membership_logbook_user;column:user_id" json:"user_id"`
	Role      Role      `gorm:"type:text;not null;column:role" json:"role"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Membership) TableName() string {
	return "membership"
}
