package listing

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_StockForOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "restaurant_id", "title", "remaining_quantity"}).
			AddRow("listing-1", "restaurant-1", "Surprise Box", 5)

		mock.ExpectQuery(`SELECT id, restaurant_id, title, remaining_quantity FROM listings WHERE id = \$1`).
			WithArgs("listing-1").
			WillReturnRows(rows)

		stock, err := repo.StockForOrder(ctx, db, "listing-1")
		assert.NoError(t, err)
		require.NotNil(t, stock)
		assert.Equal(t, "Surprise Box", stock.Title)
		assert.Equal(t, "restaurant-1", stock.RestaurantID)
		assert.Equal(t, 5, stock.Remaining)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, restaurant_id, title, remaining_quantity FROM listings WHERE id = \$1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.StockForOrder(ctx, db, "missing")
		assert.ErrorIs(t, err, ErrListingNotFound)
	})
}

func TestRepository_DecrementStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE listings`).
			WithArgs(3, "listing-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DecrementStock(ctx, db, "listing-1", 3)
		assert.NoError(t, err)
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		// The conditional WHERE clause matches nothing when the stock
		// dropped below the requested quantity.
		mock.ExpectExec(`UPDATE listings`).
			WithArgs(3, "listing-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DecrementStock(ctx, db, "listing-1", 3)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})

	t.Run("InvalidQuantity", func(t *testing.T) {
		err := repo.DecrementStock(ctx, db, "listing-1", 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectExec(`UPDATE listings`).
			WithArgs(1, "listing-1").
			WillReturnError(errors.New("db error"))

		err := repo.DecrementStock(ctx, db, "listing-1", 1)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInsufficientStock)
	})
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	l := &Listing{
		RestaurantID:    "restaurant-1",
		Title:           "End of Day Pastries",
		Description:     "Assorted pastries",
		OriginalPrice:   12.00,
		DiscountedPrice: 4.50,
		Quantity:        8,
	}

	mock.ExpectQuery(`INSERT INTO listings`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	err = repo.Create(ctx, l)
	assert.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, 8, l.RemainingQuantity)
	assert.Equal(t, StatusActive, l.Status)
}

func TestRepository_GetActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{
		"id", "restaurant_id", "title", "description",
		"original_price", "discounted_price", "quantity", "remaining_quantity",
		"expires_at", "is_priority_access", "status", "image_url", "tags", "created_at",
	}).AddRow(
		"listing-1", "restaurant-1", "Surprise Box", "Chef's choice",
		15.0, 5.0, 10, 7,
		time.Now(), false, "active", "", "{vegan}", time.Now(),
	)

	mock.ExpectQuery(`SELECT .* FROM listings WHERE status = \$1 AND remaining_quantity > 0`).
		WithArgs(StatusActive).
		WillReturnRows(rows)

	listings, err := repo.GetActive(ctx)
	assert.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, 7, listings[0].RemainingQuantity)
	assert.Equal(t, []string{"vegan"}, listings[0].Tags)
}
