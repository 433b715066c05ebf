package dto

import (
	"time"

	authdomain "taskup-backend/internal/auth/domain"
	"taskup-backend/internal/board/domain"
)

type CreateBoardRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
	Kind        string `json:"kind"`
	IsPrivate   bool   `json:"is_private"`
	Password    string `json:"password" binding:"max=72"`
}

type JoinBoardRequest struct {
	Code     string `json:"code" binding:"required"`
	Password string `json:"password"`
}

type JoinCodeResponse struct {
	JoinCode string `json:"join_code"`
}

// BoardSummary is one row of the board list
type BoardSummary struct {
	*domain.Board
	Role domain.EffectiveRole `json:"role"`
}

type BoardsResponse struct {
	Boards []BoardSummary `json:"boards"`
}

// BoardDetailResponse is the full board view: sorted columns with sorted tasks, plus members
type BoardDetailResponse struct {
	Board   *domain.Board        `json:"board"`
	Role    domain.EffectiveRole `json:"role"`
	Columns []ColumnView         `json:"columns"`
	Members []MemberView         `json:"members"`
}

type ColumnView struct {
	*domain.Column
	Tasks []*domain.Task `json:"tasks"`
}

// MemberView lists the owner and members uniformly
type MemberView struct {
	User     *authdomain.User     `json:"user"`
	Role     domain.EffectiveRole `json:"role"`
	JoinedAt time.Time            `json:"joined_at"`
}

type CreateColumnRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

// OrdersRequest is the drag-and-drop payload for columns and tasks
type OrdersRequest struct {
	Orders []domain.OrderUpdate `json:"orders" binding:"required,dive"`
}

type OrdersResponse struct {
	Updated int `json:"updated"`
}
