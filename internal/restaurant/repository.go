package restaurant

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

var ErrRestaurantNotFound = errors.New("restaurant not found")

// Querier is satisfied by both *sql.DB and *sql.Tx; earnings accrual is
// called from inside the order placement transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Accruer credits a restaurant for one committed order item.
type Accruer interface {
	AccrueOrderEarnings(ctx context.Context, q Querier, restaurantID string, amount float64) error
}

type Repository interface {
	Accruer

	Create(ctx context.Context, r *Restaurant) error
	GetByID(ctx context.Context, id string) (*Restaurant, error)
	GetAll(ctx context.Context) ([]Restaurant, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// AccrueOrderEarnings bumps total_orders once and adds amount to the
// cumulative earnings. The coordinator calls this once per order item,
// so a multi-item order counts each of its items.
func (r *repository) AccrueOrderEarnings(
	ctx context.Context,
	q Querier,
	restaurantID string,
	amount float64,
) error {

	res, err := q.ExecContext(ctx, `
		UPDATE restaurants
		SET total_orders = total_orders + 1,
		    earnings = COALESCE(earnings, 0) + $1
		WHERE id = $2
	`, amount, restaurantID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRestaurantNotFound
	}

	return nil
}

func (r *repository) Create(ctx context.Context, rest *Restaurant) error {
	rest.ID = uuid.NewString()

	return r.db.QueryRowContext(ctx, `
		INSERT INTO restaurants (id, user_id, name, description, address, phone, category)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`,
		rest.ID,
		rest.UserID,
		rest.Name,
		rest.Description,
		rest.Address,
		rest.Phone,
		rest.Category,
	).Scan(&rest.CreatedAt)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Restaurant, error) {
	var rest Restaurant
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, address, phone, category,
		       rating, total_orders, COALESCE(earnings, 0), created_at
		FROM restaurants
		WHERE id = $1
	`, id).Scan(
		&rest.ID,
		&rest.UserID,
		&rest.Name,
		&rest.Description,
		&rest.Address,
		&rest.Phone,
		&rest.Category,
		&rest.Rating,
		&rest.TotalOrders,
		&rest.Earnings,
		&rest.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, err
	}

	return &rest, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Restaurant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, address, phone, category,
		       rating, total_orders, COALESCE(earnings, 0), created_at
		FROM restaurants
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []Restaurant
	for rows.Next() {
		var rest Restaurant
		if err := rows.Scan(
			&rest.ID,
			&rest.UserID,
			&rest.Name,
			&rest.Description,
			&rest.Address,
			&rest.Phone,
			&rest.Category,
			&rest.Rating,
			&rest.TotalOrders,
			&rest.Earnings,
			&rest.CreatedAt,
		); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return restaurants, nil
}
