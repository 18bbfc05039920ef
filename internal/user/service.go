package user

import (
	"context"
	"errors"

	"ecobites-be/internal/auth"
	"ecobites-be/internal/logger"

	"go.uber.org/zap"
)

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (string, *User, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	SetPremium(ctx context.Context, id string, update PremiumUpdate) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (string, *User, error) {
	log := logger.FromCtx(ctx)

	if input.Email == "" || input.Password == "" {
		return "", nil, errors.New("email and password are required")
	}
	if input.Role != RoleRestaurant {
		input.Role = RoleUser
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", nil, err
	}

	u := &User{
		Email:        input.Email,
		Role:         input.Role,
		Name:         input.Name,
		Phone:        input.Phone,
		PasswordHash: hashed,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		log.Error("failed to create user", zap.String("email", input.Email), zap.Error(err))
		return "", nil, err
	}

	token, err := auth.GenerateJWT(u.ID, u.Email, string(u.Role))
	if err != nil {
		log.Error("failed to generate jwt", zap.String("user_id", u.ID), zap.Error(err))
		return "", nil, err
	}

	log.Info("user registered",
		zap.String("user_id", u.ID),
		zap.String("role", string(u.Role)),
	)

	return token, u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !auth.CheckPasswordHash(password, u.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(u.ID, u.Email, string(u.Role))
	if err != nil {
		return "", nil, err
	}

	return token, u, nil
}

func (s *service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) SetPremium(ctx context.Context, id string, update PremiumUpdate) (*User, error) {
	return s.repo.UpdatePremium(ctx, id, update)
}
