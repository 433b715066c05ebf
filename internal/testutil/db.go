// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	authdomain "taskup-backend/internal/auth/domain"
	authrepo "taskup-backend/internal/auth/repository"
	boardrepo "taskup-backend/internal/board/repository"
	"taskup-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated SQLite database that lives in t.TempDir().
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "taskup_test.db"))
	require.NoError(t, err)
	require.NoError(t, authrepo.AutoMigrate(db))
	require.NoError(t, boardrepo.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with the given display name and email.
func CreateUser(t testing.TB, db *gorm.DB, name, email string) *authdomain.User {
	t.Helper()

	now := time.Now()
	user := &authdomain.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		Provider:  authdomain.ProviderEmail,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
