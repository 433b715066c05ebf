package usecase

import (
	"context"
	"errors"

	authdomain "taskup-backend/internal/auth/domain"
	authdto "taskup-backend/internal/auth/dto"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthUsecase is the identity provider used by the rest of the application
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	GoogleSignIn(ctx context.Context, idToken string) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(token string) (*authdomain.User, error)

	FindUserByEmail(email string) (*authdomain.User, error)
	FindUserByID(id string) (*authdomain.User, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]authdto.UserSearchResult, error)

	RegisterFCMToken(ctx context.Context, userID, token, deviceInfo string) error
	UnregisterFCMToken(ctx context.Context, userID, token string) error
}
