package order

import (
	"context"
	"errors"
	"math"

	"ecobites-be/internal/logger"
	"ecobites-be/internal/metrics"

	"go.uber.org/zap"
)

type Service interface {
	PlaceOrder(ctx context.Context, input PlacementInput) (*Order, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]*Order, error)
	GetOrderDetail(ctx context.Context, orderID string) (*Order, error)
	GetOrdersByRestaurant(ctx context.Context, restaurantID string) ([]*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status Status) error
}

type service struct {
	repo   Repository
	maxFee float64
}

// NewService wires the coordinator. maxFee is the flat service fee
// ceiling; premium users can be charged less, never more.
func NewService(repo Repository, maxFee float64) Service {
	return &service{repo: repo, maxFee: maxFee}
}

// moneyEpsilon absorbs float rounding when comparing client-computed
// totals against their parts.
const moneyEpsilon = 0.005

func (s *service) PlaceOrder(ctx context.Context, input PlacementInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
		zap.String("user_id", input.UserID),
		zap.Int("item_count", len(input.Items)),
	)

	log.Info("order placement started")
	timer := metrics.StartTimer()

	if input.UserID == "" {
		return nil, ErrUnauthorized
	}
	if len(input.Items) == 0 {
		metrics.Orders.Rejected.Inc()
		return nil, ErrEmptyCart
	}
	for _, entry := range input.Items {
		if entry.Quantity <= 0 {
			log.Warn("invalid quantity",
				zap.String("listing_id", entry.ListingID),
				zap.Int("quantity", entry.Quantity),
			)
			metrics.Orders.Rejected.Inc()
			return nil, ErrInvalidQuantity
		}
		if entry.PriceAtPurchase < 0 {
			metrics.Orders.Rejected.Inc()
			return nil, ErrInvalidPrice
		}
	}
	if math.Abs(input.TotalPrice-(input.Subtotal+input.ServiceFee)) > moneyEpsilon {
		log.Warn("total mismatch",
			zap.Float64("subtotal", input.Subtotal),
			zap.Float64("service_fee", input.ServiceFee),
			zap.Float64("total_price", input.TotalPrice),
		)
		metrics.Orders.Rejected.Inc()
		return nil, ErrTotalMismatch
	}
	if input.ServiceFee < 0 || input.ServiceFee > s.maxFee+moneyEpsilon {
		metrics.Orders.Rejected.Inc()
		return nil, ErrInvalidServiceFee
	}

	// Idempotency: a resubmitted request returns the original order.
	if input.RequestID != "" {
		existing, err := s.repo.GetByRequestID(ctx, input.UserID, input.RequestID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			log.Info("returning existing order for duplicate request",
				zap.String("order_id", existing.ID),
				zap.String("request_id", input.RequestID),
			)
			return existing, nil
		}
	}

	o := &Order{
		UserID:              input.UserID,
		RequestID:           input.RequestID,
		Subtotal:            input.Subtotal,
		ServiceFee:          input.ServiceFee,
		Savings:             input.Savings,
		TotalPrice:          input.TotalPrice,
		DeliveryAddress:     input.DeliveryAddress,
		PickupTime:          input.PickupTime,
		SpecialInstructions: input.SpecialInstructions,
	}

	err := s.repo.PlaceOrder(ctx, o, input.Items)
	if errors.Is(err, ErrDuplicateRequest) {
		// Lost the race against our own retry; the winning insert holds
		// the original result.
		existing, readErr := s.repo.GetByRequestID(ctx, input.UserID, input.RequestID)
		if readErr != nil {
			return nil, readErr
		}
		if existing != nil {
			return existing, nil
		}
		return nil, err
	}
	if err != nil {
		metrics.Orders.RolledBack.Inc()
		log.Error("order placement failed", zap.Error(err))
		return nil, err
	}

	metrics.Orders.Placed.Inc()
	log.Info("order placement completed",
		zap.String("order_id", o.ID),
		zap.Duration("elapsed", timer.Duration()),
	)

	return o, nil
}

func (s *service) GetOrdersByUser(ctx context.Context, userID string) ([]*Order, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) GetOrderDetail(ctx context.Context, orderID string) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

func (s *service) GetOrdersByRestaurant(ctx context.Context, restaurantID string) ([]*Order, error) {
	return s.repo.ListByRestaurant(ctx, restaurantID)
}

func (s *service) UpdateOrderStatus(ctx context.Context, orderID string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, orderID, status)
}
