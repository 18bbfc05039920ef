package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ecobites-be/internal/listing"
	"ecobites-be/internal/logger"
	"ecobites-be/internal/restaurant"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// PlaceOrder runs the whole placement sequence in one transaction:
	// validate stock, insert the order header, insert the items,
	// decrement listing inventory, accrue restaurant earnings. On any
	// failure the transaction is rolled back and no partial state
	// survives. On success o carries the generated id and timestamp.
	PlaceOrder(ctx context.Context, o *Order, entries []CartEntry) error

	GetByRequestID(ctx context.Context, userID, requestID string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	GetByID(ctx context.Context, orderID string) (*Order, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]*Order, error)
	UpdateStatus(ctx context.Context, orderID string, status Status) error
}

type repository struct {
	db          *sql.DB
	ledger      listing.Ledger
	restaurants restaurant.Accruer
}

func NewRepository(db *sql.DB, ledger listing.Ledger, restaurants restaurant.Accruer) Repository {
	return &repository{
		db:          db,
		ledger:      ledger,
		restaurants: restaurants,
	}
}

func (r *repository) PlaceOrder(ctx context.Context, o *Order, entries []CartEntry) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "PlaceOrder"),
		zap.String("user_id", o.UserID),
		zap.Int("item_count", len(entries)),
	)

	log.Debug("starting order placement transaction")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			} else {
				log.Debug("transaction rolled back")
			}
		}
	}()

	// Validate every cart entry before anything is written.
	stocks := make([]*listing.Stock, 0, len(entries))
	seen := make(map[string]bool)
	restaurantIDs := make([]string, 0, 1)

	for _, entry := range entries {
		stock, err := r.ledger.StockForOrder(ctx, tx, entry.ListingID)
		if errors.Is(err, listing.ErrListingNotFound) {
			log.Warn("listing not found", zap.String("listing_id", entry.ListingID))
			return fmt.Errorf("%w: %s", listing.ErrListingNotFound, entry.ListingID)
		}
		if err != nil {
			log.Error("failed to read listing stock",
				zap.String("listing_id", entry.ListingID),
				zap.Error(err),
			)
			return err
		}

		if stock.Remaining < entry.Quantity {
			log.Warn("insufficient stock",
				zap.String("listing_id", entry.ListingID),
				zap.Int("available", stock.Remaining),
				zap.Int("requested", entry.Quantity),
			)
			return &InsufficientQuantityError{
				Title:     stock.Title,
				Available: stock.Remaining,
				Requested: entry.Quantity,
			}
		}

		stocks = append(stocks, stock)
		if !seen[stock.RestaurantID] {
			seen[stock.RestaurantID] = true
			restaurantIDs = append(restaurantIDs, stock.RestaurantID)
		}
	}

	o.ID = uuid.NewString()
	o.Status = StatusConfirmed
	o.RestaurantIDs = restaurantIDs

	// Insert the order header.
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, user_id, request_id,
			subtotal, service_fee, savings, total_price,
			status, restaurant_ids,
			delivery_address, pickup_time, special_instructions
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at
	`,
		o.ID,
		o.UserID,
		nullIfEmpty(o.RequestID),
		o.Subtotal,
		o.ServiceFee,
		o.Savings,
		o.TotalPrice,
		o.Status,
		pq.Array(o.RestaurantIDs),
		o.DeliveryAddress,
		o.PickupTime,
		o.SpecialInstructions,
	).Scan(&o.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation {
			log.Info("duplicate placement request", zap.String("request_id", o.RequestID))
			return ErrDuplicateRequest
		}
		log.Error("failed to insert order", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrOrderInsert, err)
	}

	// Insert the items.
	for _, entry := range entries {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, listing_id, quantity, price_at_purchase)
			VALUES ($1,$2,$3,$4,$5)
		`,
			uuid.NewString(),
			o.ID,
			entry.ListingID,
			entry.Quantity,
			entry.PriceAtPurchase,
		)
		if err != nil {
			log.Error("failed to insert order item",
				zap.String("listing_id", entry.ListingID),
				zap.Error(err),
			)
			return fmt.Errorf("%w: %v", ErrItemInsert, err)
		}
	}

	// Decrement inventory through the ledger.
	for i, entry := range entries {
		err = r.ledger.DecrementStock(ctx, tx, entry.ListingID, entry.Quantity)
		if errors.Is(err, listing.ErrInsufficientStock) {
			// A concurrent order drained this listing between our
			// validation read and the conditional decrement. Re-read so
			// the caller sees the real availability.
			available := 0
			if current, readErr := r.ledger.StockForOrder(ctx, tx, entry.ListingID); readErr == nil {
				available = current.Remaining
			}
			log.Warn("stock drained concurrently",
				zap.String("listing_id", entry.ListingID),
				zap.Int("available", available),
				zap.Int("requested", entry.Quantity),
			)
			return &InsufficientQuantityError{
				Title:     stocks[i].Title,
				Available: available,
				Requested: entry.Quantity,
			}
		}
		if err != nil {
			log.Error("failed to decrement stock",
				zap.String("listing_id", entry.ListingID),
				zap.Error(err),
			)
			return fmt.Errorf("%w: %v", ErrListingUpdate, err)
		}
	}

	// Accrue earnings, once per item.
	for i, entry := range entries {
		amount := entry.PriceAtPurchase * float64(entry.Quantity)
		err = r.restaurants.AccrueOrderEarnings(ctx, tx, stocks[i].RestaurantID, amount)
		if err != nil {
			log.Error("failed to accrue restaurant earnings",
				zap.String("restaurant_id", stocks[i].RestaurantID),
				zap.Error(err),
			)
			return fmt.Errorf("%w: %v", ErrRestaurantUpdate, err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.Float64("total_price", o.TotalPrice),
		zap.Strings("restaurant_ids", o.RestaurantIDs),
	)

	return nil
}

const orderColumns = `
	id, user_id, subtotal, service_fee, savings, total_price,
	status, restaurant_ids, delivery_address, pickup_time,
	special_instructions, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Subtotal,
		&o.ServiceFee,
		&o.Savings,
		&o.TotalPrice,
		&o.Status,
		pq.Array(&o.RestaurantIDs),
		&o.DeliveryAddress,
		&o.PickupTime,
		&o.SpecialInstructions,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) GetByRequestID(ctx context.Context, userID, requestID string) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1 AND request_id = $2
	`, userID, requestID)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		if o.Items, err = r.fetchItems(ctx, o.ID); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *repository) GetByID(ctx context.Context, orderID string) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, orderID)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if o.Items, err = r.fetchItems(ctx, o.ID); err != nil {
		return nil, err
	}

	return o, nil
}

// fetchItems expands an order's items with the live catalog view: the
// listing's current title, description, image and prices plus the
// owning restaurant's name. price_at_purchase stays the stored value.
func (r *repository) fetchItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.listing_id, oi.quantity, oi.price_at_purchase,
		       l.title, l.description, l.image_url, l.original_price, l.discounted_price,
		       r.name
		FROM order_items oi
		JOIN listings l ON oi.listing_id = l.id
		JOIN restaurants r ON l.restaurant_id = r.id
		WHERE oi.order_id = $1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.ListingID,
			&item.Quantity,
			&item.PriceAtPurchase,
			&item.Listing.Title,
			&item.Listing.Description,
			&item.Listing.ImageURL,
			&item.Listing.OriginalPrice,
			&item.Listing.DiscountedPrice,
			&item.Listing.Restaurant.Name,
		); err != nil {
			return nil, err
		}
		item.OrderID = orderID
		item.Listing.ID = item.ListingID
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *repository) ListByRestaurant(ctx context.Context, restaurantID string) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT o.id, o.user_id, o.subtotal, o.service_fee, o.savings,
		       o.total_price, o.status, o.restaurant_ids, o.delivery_address,
		       o.pickup_time, o.special_instructions, o.created_at,
		       u.name, u.email
		FROM orders o
		JOIN order_items oi ON o.id = oi.order_id
		JOIN listings l ON oi.listing_id = l.id
		JOIN users u ON o.user_id = u.id
		WHERE l.restaurant_id = $1
		ORDER BY o.created_at DESC
	`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.Subtotal,
			&o.ServiceFee,
			&o.Savings,
			&o.TotalPrice,
			&o.Status,
			pq.Array(&o.RestaurantIDs),
			&o.DeliveryAddress,
			&o.PickupTime,
			&o.SpecialInstructions,
			&o.CreatedAt,
			&o.UserName,
			&o.UserEmail,
		); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Only the restaurant's own items belong in its operational view.
	for _, o := range orders {
		items, err := r.fetchRestaurantItems(ctx, o.ID, restaurantID)
		if err != nil {
			return nil, err
		}
		o.Items = items
	}

	return orders, nil
}

func (r *repository) fetchRestaurantItems(ctx context.Context, orderID, restaurantID string) ([]OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.listing_id, oi.quantity, oi.price_at_purchase,
		       l.title, l.image_url
		FROM order_items oi
		JOIN listings l ON oi.listing_id = l.id
		WHERE oi.order_id = $1 AND l.restaurant_id = $2
	`, orderID, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.ListingID,
			&item.Quantity,
			&item.PriceAtPurchase,
			&item.Listing.Title,
			&item.Listing.ImageURL,
		); err != nil {
			return nil, err
		}
		item.OrderID = orderID
		item.Listing.ID = item.ListingID
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID string, status Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2`,
		status, orderID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
