package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/velmark/storefront/internal/adapters/transport/http/dto"
	"github.com/velmark/storefront/internal/app/auth/jwt"
	appsvc "github.com/velmark/storefront/internal/app/auth/service"
	authErrors "github.com/velmark/storefront/internal/domain/errors"
	"github.com/velmark/storefront/internal/domain/model"
	"github.com/velmark/storefront/internal/infra/config"
)

/* ──────────────────────────────── stubs ──────────────────────────────── */

type userRepoStub struct {
	nextID uint
	users  map[string]model.User // keyed by username
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: make(map[string]model.User)}
}

func (u *userRepoStub) CreateUser(_ context.Context, m model.User) (uint, error) {
	for _, v := range u.users {
		if v.Username == m.Username || v.Email == m.Email {
			return 0, authErrors.ErrAlreadyExists
		}
	}
	u.nextID++
	m.ID = u.nextID
	u.users[m.Username] = m
	return m.ID, nil
}

func (u *userRepoStub) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	v, ok := u.users[username]
	if !ok {
		return model.User{}, authErrors.ErrNotFound
	}
	return v, nil
}

func (u *userRepoStub) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	for _, v := range u.users {
		if v.Email == email {
			return v, nil
		}
	}
	return model.User{}, authErrors.ErrNotFound
}

func (u *userRepoStub) GetUserByID(_ context.Context, id uint) (model.User, error) {
	for _, v := range u.users {
		if v.ID == id {
			return v, nil
		}
	}
	return model.User{}, authErrors.ErrNotFound
}

func (u *userRepoStub) SetResetToken(_ context.Context, id uint, token string) error {
	for k, v := range u.users {
		if v.ID == id {
			v.ResetToken = token
			u.users[k] = v
			return nil
		}
	}
	return authErrors.ErrNotFound
}

func (u *userRepoStub) ResetPassword(_ context.Context, id uint, passwordHash string) error {
	for k, v := range u.users {
		if v.ID == id {
			v.PasswordHash = passwordHash
			v.ResetToken = ""
			u.users[k] = v
			return nil
		}
	}
	return authErrors.ErrNotFound
}

type tokenRepoStub struct{ revoked map[string]bool }

func (t *tokenRepoStub) Revoke(_ context.Context, token string, _ time.Time) error {
	t.revoked[token] = true
	return nil
}

func (t *tokenRepoStub) IsRevoked(_ context.Context, token string) (bool, error) {
	return t.revoked[token], nil
}

type errTokenRepoStub struct{}

func (errTokenRepoStub) Revoke(context.Context, string, time.Time) error {
	return errors.New("err")
}

func (errTokenRepoStub) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("err")
}

/* ───────────────────────────── helpers ───────────────────────────── */

func testConfig(accessTTL time.Duration) *config.Config {
	return &config.Config{
		JWTSecret:      "test-secret",
		AccessTokenTTL: accessTTL,
		ResetTokenTTL:  time.Hour,
		Issuer:         "test",
		Audience:       "test",
		PasswordPepper: "pepper",
	}
}

func newSvc(t *testing.T) (appsvc.Service, *jwt.ServiceImpl, *tokenRepoStub) {
	t.Helper()

	cfg := testConfig(time.Minute)
	tokens, err := jwt.NewService(cfg)
	require.NoError(t, err)

	v := validator.New()
	_ = v.RegisterValidation("strongpwd", func(_ validator.FieldLevel) bool { return true })

	tr := &tokenRepoStub{revoked: make(map[string]bool)}
	svc := appsvc.New(newUserRepoStub(), tr, tokens, cfg, v)

	return svc, tokens, tr
}

func signup(t *testing.T, svc appsvc.Service, username, email, password string) model.User {
	t.Helper()
	user, err := svc.Signup(context.Background(), dto.SignupDTO{
		Username: username, Email: email, Password: password,
	})
	require.NoError(t, err)
	return user
}

/* ───────────────────────────── tests ───────────────────────────── */

func TestAuthService_SignupLogin(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	user := signup(t, svc, "alice", "a@example.com", "Aa1aaaaa")
	require.Equal(t, uint(1), user.ID)
	require.True(t, user.IsActive)
	require.False(t, user.IsStaff)
	require.NotEqual(t, "Aa1aaaaa", user.PasswordHash)

	tok, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "Aa1aaaaa"})
	require.NoError(t, err)
	require.NotEmpty(t, tok.AccessToken)
	require.Equal(t, "bearer", tok.TokenType)

	got, err := svc.Authenticate(ctx, tok.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestAuthService_SignupInvalid(t *testing.T) {
	svc, _, _ := newSvc(t)
	_, err := svc.Signup(context.Background(), dto.SignupDTO{})
	require.Error(t, err)
	require.True(t, authErrors.IsInvalidArgument(err))
}

func TestAuthService_SignupDuplicate(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	signup(t, svc, "alice", "a@example.com", "Aa1aaaaa")

	_, err := svc.Signup(ctx, dto.SignupDTO{
		Username: "alice", Email: "other@example.com", Password: "Aa1aaaaa",
	})
	require.Error(t, err)
	require.True(t, authErrors.IsAlreadyExists(err))

	_, err = svc.Signup(ctx, dto.SignupDTO{
		Username: "bob", Email: "a@example.com", Password: "Aa1aaaaa",
	})
	require.Error(t, err)
	require.True(t, authErrors.IsAlreadyExists(err))
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	signup(t, svc, "alice", "a@example.com", "Aa1aaaaa")

	_, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "wrong"})
	require.Error(t, err)
	require.True(t, authErrors.IsInvalidCredentials(err))

	// Unknown username must be indistinguishable from a wrong password.
	_, err2 := svc.Login(ctx, dto.LoginDTO{Username: "nobody", Password: "wrong"})
	require.Error(t, err2)
	require.True(t, authErrors.IsInvalidCredentials(err2))
}

func TestAuthService_AuthenticateExpired(t *testing.T) {
	cfg := testConfig(-time.Minute)
	tokens, err := jwt.NewService(cfg)
	require.NoError(t, err)

	v := validator.New()
	_ = v.RegisterValidation("strongpwd", func(_ validator.FieldLevel) bool { return true })

	svc := appsvc.New(newUserRepoStub(), &tokenRepoStub{revoked: map[string]bool{}}, tokens, cfg, v)
	ctx := context.Background()

	signup(t, svc, "alice", "a@example.com", "Aa1aaaaa")
	tok, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "Aa1aaaaa"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, tok.AccessToken)
	require.Error(t, err)
	require.True(t, authErrors.IsInvalidToken(err))
}

func TestAuthService_LogoutRevokes(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	signup(t, svc, "alice", "a@example.com", "Aa1aaaaa")
	tok, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "Aa1aaaaa"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, tok.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, tok.AccessToken))

	_, err = svc.Authenticate(ctx, tok.AccessToken)
	require.Error(t, err)
	require.True(t, authErrors.IsInvalidToken(err))

	// Logging out twice is safe.
	require.NoError(t, svc.Logout(ctx, tok.AccessToken))
}

func TestAuthService_LogoutInvalidToken(t *testing.T) {
	svc, _, _ := newSvc(t)
	err := svc.Logout(context.Background(), "bad")
	require.Error(t, err)
	require.True(t, authErrors.IsInvalidToken(err))
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	signup(t, svc, "alice", "a@example.com", "Aa1aaaaa")

	reset, err := svc.RequestPasswordReset(ctx, dto.PasswordResetRequestDTO{Email: "a@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, reset)

	err = svc.ConfirmPasswordReset(ctx, dto.PasswordResetConfirmDTO{
		ResetToken: reset, NewPassword: "Bb2bbbbb",
	})
	require.NoError(t, err)

	// Old password is gone, the new one works.
	_, err = svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "Aa1aaaaa"})
	require.Error(t, err)
	_, err = svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "Bb2bbbbb"})
	require.NoError(t, err)

	// The token is single use.
	err = svc.ConfirmPasswordReset(ctx, dto.PasswordResetConfirmDTO{
		ResetToken: reset, NewPassword: "Cc3ccccc",
	})
	require.Error(t, err)
	require.True(t, authErrors.IsInvalidToken(err))
}

func TestAuthService_ResetRequestUnknownEmail(t *testing.T) {
	svc, _, _ := newSvc(t)
	_, err := svc.RequestPasswordReset(context.Background(), dto.PasswordResetRequestDTO{
		Email: "nobody@example.com",
	})
	require.Error(t, err)
	require.True(t, authErrors.IsNotFound(err))
}

func TestAuthService_ResetConfirmNeverIssued(t *testing.T) {
	svc, tokens, _ := newSvc(t)
	ctx := context.Background()

	signup(t, svc, "alice", "a@example.com", "Aa1aaaaa")

	// Validly signed, but never persisted on the user record.
	forged, _, err := tokens.GenerateResetToken("a@example.com")
	require.NoError(t, err)

	err = svc.ConfirmPasswordReset(ctx, dto.PasswordResetConfirmDTO{
		ResetToken: forged, NewPassword: "Bb2bbbbb",
	})
	require.Error(t, err)
	require.True(t, authErrors.IsInvalidToken(err))
}

func TestAuthService_ResetConfirmSuperseded(t *testing.T) {
	svc, _, _ := newSvc(t)
	ctx := context.Background()

	signup(t, svc, "alice", "a@example.com", "Aa1aaaaa")

	first, err := svc.RequestPasswordReset(ctx, dto.PasswordResetRequestDTO{Email: "a@example.com"})
	require.NoError(t, err)
	second, err := svc.RequestPasswordReset(ctx, dto.PasswordResetRequestDTO{Email: "a@example.com"})
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// The first token is still validly signed but no longer stored.
	err = svc.ConfirmPasswordReset(ctx, dto.PasswordResetConfirmDTO{
		ResetToken: first, NewPassword: "Bb2bbbbb",
	})
	require.Error(t, err)
	require.True(t, authErrors.IsInvalidToken(err))

	err = svc.ConfirmPasswordReset(ctx, dto.PasswordResetConfirmDTO{
		ResetToken: second, NewPassword: "Bb2bbbbb",
	})
	require.NoError(t, err)
}

func TestAuthService_RevocationStoreFailure(t *testing.T) {
	cfg := testConfig(time.Minute)
	tokens, err := jwt.NewService(cfg)
	require.NoError(t, err)

	v := validator.New()
	_ = v.RegisterValidation("strongpwd", func(_ validator.FieldLevel) bool { return true })

	svc := appsvc.New(newUserRepoStub(), errTokenRepoStub{}, tokens, cfg, v)
	ctx := context.Background()

	signup(t, svc, "alice", "a@example.com", "Aa1aaaaa")
	tok, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "Aa1aaaaa"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, tok.AccessToken)
	require.Error(t, err)
	require.True(t, authErrors.IsInternal(err))
}
