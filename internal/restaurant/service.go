package restaurant

import (
	"context"
	"errors"
)

type Service interface {
	CreateRestaurant(ctx context.Context, input CreateInput) (*Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*Restaurant, error)
	GetRestaurants(ctx context.Context) ([]Restaurant, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateRestaurant(ctx context.Context, input CreateInput) (*Restaurant, error) {
	if input.Name == "" {
		return nil, errors.New("restaurant name is required")
	}

	rest := &Restaurant{
		UserID:      input.UserID,
		Name:        input.Name,
		Description: input.Description,
		Address:     input.Address,
		Phone:       input.Phone,
		Category:    input.Category,
	}

	if err := s.repo.Create(ctx, rest); err != nil {
		return nil, err
	}

	return rest, nil
}

func (s *service) GetRestaurant(ctx context.Context, id string) (*Restaurant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetRestaurants(ctx context.Context) ([]Restaurant, error) {
	return s.repo.GetAll(ctx)
}
