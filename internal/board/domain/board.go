package domain

import (
	"time"

	authdomain "taskup-backend/internal/auth/domain"
)

type BoardKind string

const (
	BoardKindPersonal BoardKind = "Personal"
	BoardKindTeam     BoardKind = "Team"
)

// MaxColumnsPerBoard caps how many columns a board may hold
const MaxColumnsPerBoard = 20

// Board is the tenant unit. Owner has implicit full rights and no member row.
type Board struct {
	ID           string           `json:"id" gorm:"primaryKey"`
	Name         string           `json:"name" gorm:"size:100;not null"`
	Description  string           `json:"description,omitempty" gorm:"size:500"`
	JoinCode     string           `json:"join_code" gorm:"size:6;uniqueIndex;not null"`
	IsPrivate    bool             `json:"is_private"`
	PasswordHash string           `json:"-"`
	Kind         BoardKind        `json:"kind" gorm:"size:20;not null"`
	OwnerID      string           `json:"owner_id" gorm:"index;not null"`
	Owner        *authdomain.User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	Columns     []Column          `json:"columns,omitempty" gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE"`
	Members     []BoardMember     `json:"-" gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE"`
	Bans        []BannedUser      `json:"-" gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE"`
	Invitations []BoardInvitation `json:"-" gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE"`
}

// ParseBoardKind defaults to Team for empty input
func ParseBoardKind(s string) (BoardKind, bool) {
	switch BoardKind(s) {
	case "":
		return BoardKindTeam, true
	case BoardKindPersonal, BoardKindTeam:
		return BoardKind(s), true
	}
	return "", false
}
