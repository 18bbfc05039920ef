package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdatePremium(ctx context.Context, id string, update PremiumUpdate) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = `
	id, email, role, name, phone, is_priority, is_premium,
	premium_plan, premium_expires_at, password_hash, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Role,
		&u.Name,
		&u.Phone,
		&u.IsPriority,
		&u.IsPremium,
		&u.PremiumPlan,
		&u.PremiumExpiresAt,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) Create(ctx context.Context, u *User) error {
	u.ID = uuid.NewString()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, role, name, phone, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`,
		u.ID,
		u.Email,
		u.Role,
		u.Name,
		u.Phone,
		u.PasswordHash,
	).Scan(&u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return ErrEmailExists
		}
		return err
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repository) UpdatePremium(ctx context.Context, id string, update PremiumUpdate) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET is_premium = $1, premium_plan = $2, premium_expires_at = $3
		WHERE id = $4
		RETURNING `+userColumns+`
	`,
		update.IsPremium,
		update.PremiumPlan,
		update.PremiumExpiresAt,
		id,
	)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
