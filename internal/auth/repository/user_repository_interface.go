package repository

import (
	"context"

	authdomain "taskup-backend/internal/auth/domain"
)

// UserRepository defines the interface for user and refresh token persistence
type UserRepository interface {
	Create(user *authdomain.User) error
	FindByEmail(email string) (*authdomain.User, error)
	FindByID(id string) (*authdomain.User, error)
	Update(user *authdomain.User) error

	// SearchCandidates returns users whose name or email could match query.
	// Ranking is left to the caller.
	SearchCandidates(ctx context.Context, query string, limit int) ([]*authdomain.User, error)

	SaveRefreshToken(token *authdomain.RefreshToken) error
	FindRefreshToken(token string) (*authdomain.RefreshToken, error)
	DeleteRefreshToken(token string) error
	DeleteRefreshTokensByUser(userID string) error
}
