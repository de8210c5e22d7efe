package user

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateUser(ctx context.Context, email, name, passwordHash string) (*User, error) {
	query := `
		INSERT INTO users (email, name, password_hash, role)
		VALUES ($1, $2, $3, 'user')
		RETURNING id, email, name, password_hash, role, credits_balance, created_at, updated_at
	`

	var u User
	err := r.db.GetContext(ctx, &u, query, email, name, passwordHash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, name, password_hash, role, credits_balance, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var u User
	err := r.db.GetContext(ctx, &u, query, email)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return &u, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT id, email, name, password_hash, role, credits_balance, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return &u, nil
}
