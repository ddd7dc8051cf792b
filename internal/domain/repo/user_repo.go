package repo

import (
	"context"

	"github.com/velmark/storefront/internal/domain/model"
)

type UserRepo interface {
	// CreateUser returns ErrAlreadyExists when the username or email is
	// already registered.
	CreateUser(ctx context.Context, u model.User) (uint, error)

	GetUserByUsername(ctx context.Context, username string) (model.User, error)

	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	GetUserByID(ctx context.Context, id uint) (model.User, error)

	// SetResetToken stores the outstanding password-reset token on the
	// user record, replacing any previous one.
	SetResetToken(ctx context.Context, id uint, token string) error

	// ResetPassword replaces the password hash and clears the reset token
	// in a single transaction.
	ResetPassword(ctx context.Context, id uint, passwordHash string) error
}
