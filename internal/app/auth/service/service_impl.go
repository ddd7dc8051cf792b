package service

import (
	"context"
	"errors"

	"github.com/alexedwards/argon2id"
	"github.com/go-playground/validator/v10"

	"github.com/velmark/storefront/internal/adapters/transport/http/dto"
	customErrors "github.com/velmark/storefront/internal/domain/errors"
	"github.com/velmark/storefront/internal/domain/model"
	"github.com/velmark/storefront/internal/domain/repo"
	"github.com/velmark/storefront/internal/domain/token"
	"github.com/velmark/storefront/internal/infra/config"
)

var argonParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// HashPassword derives the stored digest for a plaintext password. The
// salt is random per call, so equal inputs produce different digests.
func HashPassword(password, pepper string) (string, error) {
	return argon2id.CreateHash(password+pepper, argonParams)
}

type authService struct {
	userRepo  repo.UserRepo
	tokenRepo repo.TokenRepo
	tokens    token.Service
	cfg       *config.Config
	v         *validator.Validate
}

type Service interface {
	Signup(context.Context, dto.SignupDTO) (model.User, error)
	Login(context.Context, dto.LoginDTO) (model.Token, error)
	Authenticate(ctx context.Context, accessToken string) (model.User, error)
	Logout(ctx context.Context, accessToken string) error
	RequestPasswordReset(context.Context, dto.PasswordResetRequestDTO) (string, error)
	ConfirmPasswordReset(context.Context, dto.PasswordResetConfirmDTO) error
}

func New(
	ur repo.UserRepo,
	tr repo.TokenRepo,
	ts token.Service,
	cfg *config.Config,
	v *validator.Validate,
) Service {
	return &authService{
		userRepo: ur, tokenRepo: tr, tokens: ts, cfg: cfg, v: v,
	}
}

func (a *authService) Signup(ctx context.Context, in dto.SignupDTO) (model.User, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	passwordHash, err := HashPassword(in.Password, a.cfg.PasswordPepper)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Signup")
	}

	user := model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: passwordHash,
		IsActive:     true,
		IsStaff:      in.IsStaff,
	}
	id, err := a.userRepo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.User{}, customErrors.ErrAlreadyExists
		}
		return model.User{}, customErrors.WrapInternal(err, "Signup")
	}
	user.ID = id

	return user, nil
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.Token, error) {
	if err := a.v.Struct(in); err != nil {
		return model.Token{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByUsername(ctx, in.Username)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		// Same error as a wrong password: callers must not be able to
		// probe which usernames exist.
		return model.Token{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.Token{}, customErrors.WrapInternal(err, "Login")
	}

	ok, err := argon2id.ComparePasswordAndHash(in.Password+a.cfg.PasswordPepper, user.PasswordHash)
	if err != nil || !ok {
		// A malformed stored digest fails closed.
		return model.Token{}, customErrors.ErrInvalidCredentials
	}

	raw, exp, err := a.tokens.GenerateAccessToken(user.Username)
	if err != nil {
		return model.Token{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}

	return model.Token{
		AccessToken: raw,
		TokenType:   "bearer",
		ExpiresAt:   exp,
	}, nil
}

// Authenticate resolves a bearer token to its user: signature and expiry
// first, then the revocation list, then the credential store. Every
// failure collapses to ErrInvalidToken so the caller learns nothing else.
func (a *authService) Authenticate(ctx context.Context, accessToken string) (model.User, error) {
	claims, err := a.tokens.ValidateToken(accessToken)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}

	revoked, err := a.tokenRepo.IsRevoked(ctx, accessToken)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Authenticate")
	}
	if revoked {
		return model.User{}, customErrors.ErrInvalidToken
	}

	user, err := a.userRepo.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}

	return user, nil
}

// Logout revokes the token until its natural expiry. Revoking an already
// revoked token is a no-op, so logging out twice is safe.
func (a *authService) Logout(ctx context.Context, accessToken string) error {
	claims, err := a.tokens.ValidateToken(accessToken)
	if err != nil {
		return customErrors.ErrInvalidToken
	}

	if err := a.tokenRepo.Revoke(ctx, accessToken, claims.ExpiresAt.Time); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}

	return nil
}

func (a *authService) RequestPasswordReset(ctx context.Context, in dto.PasswordResetRequestDTO) (string, error) {
	if err := a.v.Struct(in); err != nil {
		return "", customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return "", customErrors.ErrNotFound
	case err != nil:
		return "", customErrors.WrapInternal(err, "RequestPasswordReset")
	}

	raw, _, err := a.tokens.GenerateResetToken(user.Email)
	if err != nil {
		return "", customErrors.WrapInternal(err, "GenerateResetToken")
	}

	// Stored verbatim: confirm requires both a valid signature and an
	// exact match against this value, and clearing it revokes the token.
	if err := a.userRepo.SetResetToken(ctx, user.ID, raw); err != nil {
		return "", customErrors.WrapInternal(err, "SetResetToken")
	}

	return raw, nil
}

func (a *authService) ConfirmPasswordReset(ctx context.Context, in dto.PasswordResetConfirmDTO) error {
	if err := a.v.Struct(in); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	claims, err := a.tokens.ValidateToken(in.ResetToken)
	if err != nil {
		return customErrors.ErrInvalidToken
	}

	user, err := a.userRepo.GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		return customErrors.ErrInvalidToken
	}

	if user.ResetToken == "" || user.ResetToken != in.ResetToken {
		return customErrors.ErrInvalidToken
	}

	passwordHash, err := HashPassword(in.NewPassword, a.cfg.PasswordPepper)
	if err != nil {
		return customErrors.WrapInternal(err, "ConfirmPasswordReset")
	}

	// Hash replacement and token clearing commit together; a failure
	// leaves the previous credentials intact.
	if err := a.userRepo.ResetPassword(ctx, user.ID, passwordHash); err != nil {
		return customErrors.WrapInternal(err, "ResetPassword")
	}

	return nil
}
