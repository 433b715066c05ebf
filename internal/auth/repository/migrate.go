package repository

import (
	authdomain "taskup-backend/internal/auth/domain"

	"gorm.io/gorm"
)

// AutoMigrate creates the identity tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&authdomain.User{}, &authdomain.RefreshToken{}, &authdomain.FCMToken{})
}
