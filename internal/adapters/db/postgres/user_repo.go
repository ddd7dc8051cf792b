package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"

	customErrors "github.com/velmark/storefront/internal/domain/errors"
	"github.com/velmark/storefront/internal/domain/model"
)

const uniqueViolation = "23505"

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (p *UserRepo) CreateUser(ctx context.Context, user model.User) (uint, error) {
	res := p.db.WithContext(ctx).Create(&user)
	if err := res.Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, customErrors.ErrAlreadyExists
		}
		return 0, customErrors.WrapInternal(err, "CreateUser")
	}
	return user.ID, nil
}

func (p *UserRepo) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return p.getBy(ctx, "username = ?", username, "GetUserByUsername")
}

func (p *UserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return p.getBy(ctx, "email = ?", email, "GetUserByEmail")
}

func (p *UserRepo) GetUserByID(ctx context.Context, id uint) (model.User, error) {
	return p.getBy(ctx, "id = ?", id, "GetUserByID")
}

func (p *UserRepo) getBy(ctx context.Context, query string, arg any, op string) (model.User, error) {
	var u model.User
	res := p.db.WithContext(ctx).Where(query, arg).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, op)
	}

	return u, nil
}

func (p *UserRepo) SetResetToken(ctx context.Context, id uint, token string) error {
	res := p.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("reset_token", token)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "SetResetToken")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}

	return nil
}

// ResetPassword swaps the password hash and clears the reset token in
// one transaction, so a failure cannot leave a half-updated record.
func (p *UserRepo) ResetPassword(ctx context.Context, id uint, passwordHash string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"hashed_password": passwordHash,
				"reset_token":     "",
			})
		if err := res.Error; err != nil {
			return customErrors.WrapInternal(err, "ResetPassword")
		}
		if res.RowsAffected == 0 {
			return customErrors.ErrNotFound
		}
		return nil
	})
}
