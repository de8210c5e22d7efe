package user

import "context"

type Repository interface {
	CreateUser(ctx context.Context, email, name, passwordHash string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
}
