package order

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"ecobites-be/internal/listing"
	"ecobites-be/internal/restaurant"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewRepository(db, listing.NewRepository(db), restaurant.NewRepository(db))
	return repo, mock, func() { db.Close() }
}

func stockRows(id, restaurantID, title string, remaining int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "restaurant_id", "title", "remaining_quantity"}).
		AddRow(id, restaurantID, title, remaining)
}

const stockQuery = `SELECT id, restaurant_id, title, remaining_quantity FROM listings WHERE id = \$1`

func TestRepository_PlaceOrder(t *testing.T) {
	ctx := context.Background()

	entries := []CartEntry{
		{ListingID: "listing-1", Quantity: 2, PriceAtPurchase: 10.0},
		{ListingID: "listing-2", Quantity: 1, PriceAtPurchase: 5.0},
	}

	newOrder := func() *Order {
		return &Order{
			UserID:          "user-1",
			Subtotal:        25.0,
			ServiceFee:      1.99,
			Savings:         10.0,
			TotalPrice:      26.99,
			DeliveryAddress: "123 Green St",
			PickupTime:      "18:30",
		}
	}

	t.Run("Success", func(t *testing.T) {
		repo, mock, closeDB := newTestRepository(t)
		defer closeDB()

		mock.ExpectBegin()

		mock.ExpectQuery(stockQuery).
			WithArgs("listing-1").
			WillReturnRows(stockRows("listing-1", "restaurant-a", "Box A", 5))
		mock.ExpectQuery(stockQuery).
			WithArgs("listing-2").
			WillReturnRows(stockRows("listing-2", "restaurant-b", "Box B", 3))

		mock.ExpectQuery(`INSERT INTO orders`).
			WithArgs(
				sqlmock.AnyArg(), "user-1", nil,
				25.0, 1.99, 10.0, 26.99,
				StatusConfirmed, pq.Array([]string{"restaurant-a", "restaurant-b"}),
				"123 Green St", "18:30", "",
			).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "listing-1", 2, 10.0).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "listing-2", 1, 5.0).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectExec(`UPDATE listings`).
			WithArgs(2, "listing-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE listings`).
			WithArgs(1, "listing-2").
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Earnings accrue once per item: 10*2 to A, 5*1 to B.
		mock.ExpectExec(`UPDATE restaurants`).
			WithArgs(20.0, "restaurant-a").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE restaurants`).
			WithArgs(5.0, "restaurant-b").
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		o := newOrder()
		err := repo.PlaceOrder(ctx, o, entries)
		assert.NoError(t, err)
		assert.NotEmpty(t, o.ID)
		assert.Equal(t, StatusConfirmed, o.Status)
		assert.Equal(t, []string{"restaurant-a", "restaurant-b"}, o.RestaurantIDs)
		assert.False(t, o.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsufficientAtValidation", func(t *testing.T) {
		repo, mock, closeDB := newTestRepository(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectQuery(stockQuery).
			WithArgs("listing-1").
			WillReturnRows(stockRows("listing-1", "restaurant-a", "Box A", 2))
		mock.ExpectRollback()

		o := newOrder()
		err := repo.PlaceOrder(ctx, o, []CartEntry{
			{ListingID: "listing-1", Quantity: 3, PriceAtPurchase: 10.0},
		})

		var insufficient *InsufficientQuantityError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, "Box A", insufficient.Title)
		assert.Equal(t, 2, insufficient.Available)
		assert.Equal(t, 3, insufficient.Requested)

		// Nothing was written before the rollback.
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListingNotFound", func(t *testing.T) {
		repo, mock, closeDB := newTestRepository(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectQuery(stockQuery).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := repo.PlaceOrder(ctx, newOrder(), []CartEntry{
			{ListingID: "missing", Quantity: 1, PriceAtPurchase: 5.0},
		})
		assert.ErrorIs(t, err, listing.ErrListingNotFound)
		assert.Contains(t, err.Error(), "missing")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ItemInsertFailsRollsBack", func(t *testing.T) {
		repo, mock, closeDB := newTestRepository(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectQuery(stockQuery).
			WithArgs("listing-1").
			WillReturnRows(stockRows("listing-1", "restaurant-a", "Box A", 5))
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		mock.ExpectExec(`INSERT INTO order_items`).
			WillReturnError(errors.New("constraint violation"))
		mock.ExpectRollback()

		err := repo.PlaceOrder(ctx, newOrder(), []CartEntry{
			{ListingID: "listing-1", Quantity: 2, PriceAtPurchase: 10.0},
		})
		assert.ErrorIs(t, err, ErrItemInsert)

		// No inventory or earnings statement ever ran.
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ConcurrentDrainAtDecrement", func(t *testing.T) {
		repo, mock, closeDB := newTestRepository(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectQuery(stockQuery).
			WithArgs("listing-1").
			WillReturnRows(stockRows("listing-1", "restaurant-a", "Box A", 3))
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		mock.ExpectExec(`INSERT INTO order_items`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Conditional update matches no row: another order drained the
		// stock after our validation read.
		mock.ExpectExec(`UPDATE listings`).
			WithArgs(3, "listing-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(stockQuery).
			WithArgs("listing-1").
			WillReturnRows(stockRows("listing-1", "restaurant-a", "Box A", 0))
		mock.ExpectRollback()

		err := repo.PlaceOrder(ctx, newOrder(), []CartEntry{
			{ListingID: "listing-1", Quantity: 3, PriceAtPurchase: 10.0},
		})

		var insufficient *InsufficientQuantityError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 0, insufficient.Available)
		assert.Equal(t, 3, insufficient.Requested)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RestaurantUpdateFailsRollsBack", func(t *testing.T) {
		repo, mock, closeDB := newTestRepository(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectQuery(stockQuery).
			WithArgs("listing-1").
			WillReturnRows(stockRows("listing-1", "restaurant-a", "Box A", 5))
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		mock.ExpectExec(`INSERT INTO order_items`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE listings`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE restaurants`).
			WillReturnError(errors.New("db error"))
		mock.ExpectRollback()

		err := repo.PlaceOrder(ctx, newOrder(), []CartEntry{
			{ListingID: "listing-1", Quantity: 2, PriceAtPurchase: 10.0},
		})
		assert.ErrorIs(t, err, ErrRestaurantUpdate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateRequestID", func(t *testing.T) {
		repo, mock, closeDB := newTestRepository(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectQuery(stockQuery).
			WithArgs("listing-1").
			WillReturnRows(stockRows("listing-1", "restaurant-a", "Box A", 5))
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		o := newOrder()
		o.RequestID = "req-1"
		err := repo.PlaceOrder(ctx, o, []CartEntry{
			{ListingID: "listing-1", Quantity: 2, PriceAtPurchase: 10.0},
		})
		assert.ErrorIs(t, err, ErrDuplicateRequest)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func orderRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "subtotal", "service_fee", "savings", "total_price",
		"status", "restaurant_ids", "delivery_address", "pickup_time",
		"special_instructions", "created_at",
	}).AddRow(
		"order-1", "user-1", 25.0, 1.99, 10.0, 26.99,
		"confirmed", "{restaurant-a}", "123 Green St", "18:30",
		"", time.Now(),
	)
}

func itemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "listing_id", "quantity", "price_at_purchase",
		"title", "description", "image_url", "original_price", "discounted_price", "name",
	}).AddRow(
		"item-1", "listing-1", 2, 10.0,
		"Box A", "Chef's choice", "http://img", 15.0, 10.0, "Green Leaf Bistro",
	)
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock, closeDB := newTestRepository(t)
	defer closeDB()

	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM orders WHERE id = \$1`).
			WithArgs("order-1").
			WillReturnRows(orderRows())
		mock.ExpectQuery(`SELECT .* FROM order_items oi JOIN listings l .* WHERE oi.order_id = \$1`).
			WithArgs("order-1").
			WillReturnRows(itemRows())

		o, err := repo.GetByID(ctx, "order-1")
		require.NoError(t, err)
		assert.Equal(t, "order-1", o.ID)
		assert.InDelta(t, 26.99, o.TotalPrice, 0.001)
		require.Len(t, o.Items, 1)
		assert.Equal(t, 10.0, o.Items[0].PriceAtPurchase)
		assert.Equal(t, "Box A", o.Items[0].Listing.Title)
		assert.Equal(t, "Green Leaf Bistro", o.Items[0].Listing.Restaurant.Name)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM orders WHERE id = \$1`).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepository_ListByUser(t *testing.T) {
	repo, mock, closeDB := newTestRepository(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT .* FROM orders WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs("user-1").
		WillReturnRows(orderRows())
	mock.ExpectQuery(`SELECT .* FROM order_items oi JOIN listings l .* WHERE oi.order_id = \$1`).
		WithArgs("order-1").
		WillReturnRows(itemRows())

	orders, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, []string{"restaurant-a"}, orders[0].RestaurantIDs)
	require.Len(t, orders[0].Items, 1)
}

func TestRepository_ListByRestaurant(t *testing.T) {
	repo, mock, closeDB := newTestRepository(t)
	defer closeDB()

	headerRows := sqlmock.NewRows([]string{
		"id", "user_id", "subtotal", "service_fee", "savings", "total_price",
		"status", "restaurant_ids", "delivery_address", "pickup_time",
		"special_instructions", "created_at", "name", "email",
	}).AddRow(
		"order-1", "user-1", 25.0, 1.99, 10.0, 26.99,
		"confirmed", "{restaurant-a,restaurant-b}", "123 Green St", "18:30",
		"", time.Now(), "Demo User", "user@demo.com",
	)

	filteredItems := sqlmock.NewRows([]string{
		"id", "listing_id", "quantity", "price_at_purchase", "title", "image_url",
	}).AddRow("item-1", "listing-1", 2, 10.0, "Box A", "http://img")

	mock.ExpectQuery(`SELECT DISTINCT .* FROM orders o .* WHERE l.restaurant_id = \$1`).
		WithArgs("restaurant-a").
		WillReturnRows(headerRows)
	mock.ExpectQuery(`SELECT .* FROM order_items oi JOIN listings l .* WHERE oi.order_id = \$1 AND l.restaurant_id = \$2`).
		WithArgs("order-1", "restaurant-a").
		WillReturnRows(filteredItems)

	orders, err := repo.ListByRestaurant(context.Background(), "restaurant-a")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Demo User", orders[0].UserName)
	assert.Equal(t, "user@demo.com", orders[0].UserEmail)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "Box A", orders[0].Items[0].Listing.Title)
}

func TestRepository_GetByRequestID(t *testing.T) {
	repo, mock, closeDB := newTestRepository(t)
	defer closeDB()

	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM orders WHERE user_id = \$1 AND request_id = \$2`).
			WithArgs("user-1", "req-1").
			WillReturnRows(orderRows())

		o, err := repo.GetByRequestID(ctx, "user-1", "req-1")
		require.NoError(t, err)
		require.NotNil(t, o)
		assert.Equal(t, "order-1", o.ID)
	})

	t.Run("None", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM orders WHERE user_id = \$1 AND request_id = \$2`).
			WithArgs("user-1", "req-2").
			WillReturnError(sql.ErrNoRows)

		o, err := repo.GetByRequestID(ctx, "user-1", "req-2")
		assert.NoError(t, err)
		assert.Nil(t, o)
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, mock, closeDB := newTestRepository(t)
	defer closeDB()

	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders SET status = \$1 WHERE id = \$2`).
			WithArgs(StatusCompleted, "order-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(ctx, "order-1", StatusCompleted)
		assert.NoError(t, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders SET status = \$1 WHERE id = \$2`).
			WithArgs(StatusCompleted, "nope").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(ctx, "nope", StatusCompleted)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}
