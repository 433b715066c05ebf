package domain

import "time"

// Column is an ordered lane of a board, sorted by (order, id)
type Column struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	BoardID   string    `json:"board_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"size:50;not null"`
	Order     int       `json:"order" gorm:"column:display_order;not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tasks []Task `json:"tasks,omitempty" gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE"`
}

// OrderUpdate assigns a new sort position to a column or task
type OrderUpdate struct {
	ID    string `json:"id" binding:"required"`
	Order int    `json:"order"`
}
