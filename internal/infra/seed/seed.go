package seed

import (
	"context"
	"errors"

	"go.uber.org/zap"

	authsvc "github.com/velmark/storefront/internal/app/auth/service"
	customErrors "github.com/velmark/storefront/internal/domain/errors"
	"github.com/velmark/storefront/internal/domain/model"
	"github.com/velmark/storefront/internal/domain/repo"
	"github.com/velmark/storefront/internal/infra/config"
)

// EnsureAdmin creates the initial staff account on first start. Nothing
// happens when the account exists or no admin password is configured.
func EnsureAdmin(ctx context.Context, users repo.UserRepo, cfg *config.Config, log *zap.Logger) error {
	if cfg.AdminPassword == "" {
		log.Info("admin seeding skipped: ADMIN_PASSWORD not set")
		return nil
	}

	_, err := users.GetUserByUsername(ctx, cfg.AdminUsername)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, customErrors.ErrNotFound):
		return err
	}

	hash, err := authsvc.HashPassword(cfg.AdminPassword, cfg.PasswordPepper)
	if err != nil {
		return err
	}

	_, err = users.CreateUser(ctx, model.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
	})
	if err != nil {
		// Lost the race against a concurrent start; the account exists.
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return nil
		}
		return err
	}

	log.Info("created initial admin user", zap.String("username", cfg.AdminUsername))
	return nil
}
