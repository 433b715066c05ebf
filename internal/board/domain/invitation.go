package domain

import "time"

// BoardInvitation is an emailed invite; accepting it creates a Member row
type BoardInvitation struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	BoardID    string     `json:"board_id" gorm:"index;not null"`
	Email      string     `json:"email" gorm:"index;not null"`
	Token      string     `json:"-" gorm:"uniqueIndex;not null"`
	InvitedBy  string     `json:"invited_by" gorm:"not null"`
	CreatedAt  time.Time  `json:"created_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
}
