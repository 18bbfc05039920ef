package listing

import (
	"context"
	"errors"
	"time"

	"ecobites-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	CreateListing(ctx context.Context, input CreateInput) (*Listing, error)
	GetActiveListings(ctx context.Context) ([]Listing, error)
	GetRestaurantListings(ctx context.Context, restaurantID string) ([]Listing, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateListing(ctx context.Context, input CreateInput) (*Listing, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateListing"),
		zap.String("restaurant_id", input.RestaurantID),
	)

	if input.RestaurantID == "" {
		return nil, errors.New("restaurant id is required")
	}
	if input.Quantity <= 0 {
		log.Warn("invalid quantity", zap.Int("quantity", input.Quantity))
		return nil, ErrInvalidQuantity
	}
	if input.DiscountedPrice <= 0 || input.DiscountedPrice > input.OriginalPrice {
		log.Warn("invalid pricing",
			zap.Float64("original_price", input.OriginalPrice),
			zap.Float64("discounted_price", input.DiscountedPrice),
		)
		return nil, ErrInvalidPricing
	}
	if input.ExpiresInHours <= 0 {
		input.ExpiresInHours = 24
	}

	l := &Listing{
		RestaurantID:     input.RestaurantID,
		Title:            input.Title,
		Description:      input.Description,
		OriginalPrice:    input.OriginalPrice,
		DiscountedPrice:  input.DiscountedPrice,
		Quantity:         input.Quantity,
		ExpiresAt:        time.Now().Add(time.Duration(input.ExpiresInHours) * time.Hour),
		IsPriorityAccess: input.IsPriorityAccess,
		ImageURL:         input.ImageURL,
		Tags:             input.Tags,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	log.Info("listing created",
		zap.String("listing_id", l.ID),
		zap.Int("quantity", l.Quantity),
	)

	return l, nil
}

func (s *service) GetActiveListings(ctx context.Context) ([]Listing, error) {
	return s.repo.GetActive(ctx)
}

func (s *service) GetRestaurantListings(ctx context.Context, restaurantID string) ([]Listing, error) {
	return s.repo.GetByRestaurant(ctx, restaurantID)
}
