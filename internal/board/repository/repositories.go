package repository

import "gorm.io/gorm"

// Repositories bundles every board store opened on one database
type Repositories struct {
	Boards      BoardRepository
	Members     MembershipRepository
	Columns     ColumnRepository
	Tasks       TaskRepository
	Activity    ActivityRepository
	Invitations InvitationRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Boards:      NewBoardRepository(db),
		Members:     NewMembershipRepository(db),
		Columns:     NewColumnRepository(db),
		Tasks:       NewTaskRepository(db),
		Activity:    NewActivityRepository(db),
		Invitations: NewInvitationRepository(db),
	}
}
