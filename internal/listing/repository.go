package listing

import (
	"context"
	"database/sql"
	"errors"

	"ecobites-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Ledger operations take one explicitly so the order coordinator can run
// them inside its own transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Ledger owns the authoritative remaining quantity and status of every
// listing. It is the only mutation path for stock during order placement.
type Ledger interface {
	StockForOrder(ctx context.Context, q Querier, listingID string) (*Stock, error)
	DecrementStock(ctx context.Context, q Querier, listingID string, qty int) error
}

type Repository interface {
	Ledger

	Create(ctx context.Context, l *Listing) error
	GetActive(ctx context.Context) ([]Listing, error)
	GetByRestaurant(ctx context.Context, restaurantID string) ([]Listing, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) StockForOrder(
	ctx context.Context,
	q Querier,
	listingID string,
) (*Stock, error) {

	query := `
		SELECT id, restaurant_id, title, remaining_quantity
		FROM listings
		WHERE id = $1
	`

	var s Stock
	err := q.QueryRowContext(ctx, query, listingID).
		Scan(&s.ListingID, &s.RestaurantID, &s.Title, &s.Remaining)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// DecrementStock subtracts qty in a single conditional update. The
// stock check rides on the WHERE clause so two concurrent orders cannot
// both pass validation and then both drain the same units; the loser
// touches zero rows and gets ErrInsufficientStock. Reaching zero flips
// the status to sold_out; it never reactivates a sold_out or expired
// listing and never drops remaining_quantity below zero.
func (r *repository) DecrementStock(
	ctx context.Context,
	q Querier,
	listingID string,
	qty int,
) error {

	if qty <= 0 {
		return ErrInvalidQuantity
	}

	res, err := q.ExecContext(ctx, `
		UPDATE listings
		SET remaining_quantity = remaining_quantity - $1,
		    status = CASE
		      WHEN remaining_quantity - $1 <= 0 THEN 'sold_out'
		      ELSE status
		    END
		WHERE id = $2 AND remaining_quantity >= $1
	`, qty, listingID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInsufficientStock
	}

	return nil
}

func (r *repository) Create(ctx context.Context, l *Listing) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateListing"),
		zap.String("restaurant_id", l.RestaurantID),
	)

	l.ID = uuid.NewString()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO listings (
			id, restaurant_id, title, description,
			original_price, discounted_price,
			quantity, remaining_quantity,
			expires_at, is_priority_access, image_url, tags, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$7,$8,$9,$10,$11,'active')
		RETURNING created_at
	`,
		l.ID,
		l.RestaurantID,
		l.Title,
		l.Description,
		l.OriginalPrice,
		l.DiscountedPrice,
		l.Quantity,
		l.ExpiresAt,
		l.IsPriorityAccess,
		l.ImageURL,
		pq.Array(l.Tags),
	).Scan(&l.CreatedAt)
	if err != nil {
		log.Error("failed to insert listing", zap.Error(err))
		return err
	}

	l.RemainingQuantity = l.Quantity
	l.Status = StatusActive

	log.Info("listing created", zap.String("listing_id", l.ID))
	return nil
}

func (r *repository) GetActive(ctx context.Context) ([]Listing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, restaurant_id, title, description,
		       original_price, discounted_price,
		       quantity, remaining_quantity,
		       expires_at, is_priority_access, status, image_url, tags, created_at
		FROM listings
		WHERE status = $1 AND remaining_quantity > 0
	`, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanListings(rows)
}

func (r *repository) GetByRestaurant(ctx context.Context, restaurantID string) ([]Listing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, restaurant_id, title, description,
		       original_price, discounted_price,
		       quantity, remaining_quantity,
		       expires_at, is_priority_access, status, image_url, tags, created_at
		FROM listings
		WHERE restaurant_id = $1
	`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanListings(rows)
}

func scanListings(rows *sql.Rows) ([]Listing, error) {
	var listings []Listing
	for rows.Next() {
		var l Listing
		if err := rows.Scan(
			&l.ID,
			&l.RestaurantID,
			&l.Title,
			&l.Description,
			&l.OriginalPrice,
			&l.DiscountedPrice,
			&l.Quantity,
			&l.RemainingQuantity,
			&l.ExpiresAt,
			&l.IsPriorityAccess,
			&l.Status,
			&l.ImageURL,
			pq.Array(&l.Tags),
			&l.CreatedAt,
		); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}
