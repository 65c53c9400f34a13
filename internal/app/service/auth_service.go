package service

import (
	"book_review_api/internal/common"
	"book_review_api/internal/common/security"
	"book_review_api/internal/domain/model"
	"book_review_api/internal/domain/repository"
	"book_review_api/internal/validator"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	v := validator.New()
	v.Check(req.Name != "", "name", "Name is required")
	v.Check(len(req.Name) <= 50, "name", "Name cannot exceed 50 characters")
	v.Check(req.Email != "", "email", "Email is required")
	if req.Email != "" {
		v.Check(validator.Matches(req.Email, validator.EmailRX), "email", "Please enter a valid email")
	}
	v.Check(req.Password != "", "password", "Password is required")
	if req.Password != "" {
		v.Check(len(req.Password) >= 6, "password", "Password must be at least 6 characters")
	}
	if !v.Valid() {
		return nil, common.WithMessage(common.ErrValidation, v.Message())
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: hashedPassword,
	}

	// Repo translates a duplicate email into its user-facing message.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := security.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, common.WithMessage(common.ErrValidation, "Please provide email and password")
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Generic message so an attacker cannot probe for accounts.
			return nil, common.WithMessage(common.ErrUnauthenticated, "Invalid credentials")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.WithMessage(common.ErrUnauthenticated, "Invalid credentials")
	}

	token, err := security.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{User: user, Token: token}, nil
}
