package domain

import (
	"fmt"
	"strings"
	"time"

	authdomain "taskup-backend/internal/auth/domain"
)

// Role is stored on membership rows. The owner has no row.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleMember Role = "Member"
)

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "member", "":
		return RoleMember, nil
	}
	return "", fmt.Errorf("%w: unknown role %q, use Admin or Member", ErrInvalidInput, s)
}

// EffectiveRole is the capability a user holds on a board. Values are ordered
// so that a higher role includes every right of the lower ones.
type EffectiveRole int

const (
	EffectiveNone EffectiveRole = iota
	EffectiveMember
	EffectiveAdmin
	EffectiveOwner
)

func (r EffectiveRole) String() string {
	switch r {
	case EffectiveOwner:
		return "Owner"
	case EffectiveAdmin:
		return "Admin"
	case EffectiveMember:
		return "Member"
	default:
		return "None"
	}
}

func (r EffectiveRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// AtLeast reports whether r grants everything min grants
func (r EffectiveRole) AtLeast(min EffectiveRole) bool {
	return r != EffectiveNone && r >= min
}

// EffectiveRoleFor maps a stored role to its capability
func EffectiveRoleFor(role Role) EffectiveRole {
	if role == RoleAdmin {
		return EffectiveAdmin
	}
	return EffectiveMember
}

type BoardMember struct {
	ID       string           `json:"id" gorm:"primaryKey"`
	BoardID  string           `json:"board_id" gorm:"uniqueIndex:idx_board_member;not null"`
	UserID   string           `json:"user_id" gorm:"uniqueIndex:idx_board_member;index;not null"`
	Role     Role             `json:"role" gorm:"size:20;not null"`
	JoinedAt time.Time        `json:"joined_at"`
	User     *authdomain.User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// BannedUser blocks a user from a board until unbanned. Never coexists with a BoardMember row.
type BannedUser struct {
	ID           string           `json:"id" gorm:"primaryKey"`
	BoardID      string           `json:"board_id" gorm:"uniqueIndex:idx_board_ban;not null"`
	UserID       string           `json:"user_id" gorm:"uniqueIndex:idx_board_ban;not null"`
	BannedAt     time.Time        `json:"banned_at"`
	BannedBy     string           `json:"banned_by" gorm:"not null"`
	User         *authdomain.User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	BannedByUser *authdomain.User `json:"banned_by_user,omitempty" gorm:"foreignKey:BannedBy"`
}
