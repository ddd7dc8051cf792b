package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	customErrors "github.com/velmark/storefront/internal/domain/errors"
	"github.com/velmark/storefront/internal/domain/token"
	"github.com/velmark/storefront/internal/infra/config"
)

type ServiceImpl struct {
	secret    []byte
	accessTTL time.Duration
	resetTTL  time.Duration
	issuer    string
	audience  string
}

func NewService(cfg *config.Config) (*ServiceImpl, error) {
	if cfg.JWTSecret == "" {
		return nil, customErrors.WrapInternal(errors.New("empty secret"), "NewService")
	}

	return &ServiceImpl{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: cfg.AccessTokenTTL,
		resetTTL:  cfg.ResetTokenTTL,
		issuer:    cfg.Issuer,
		audience:  cfg.Audience,
	}, nil
}

func (s *ServiceImpl) GenerateAccessToken(username string) (string, time.Time, error) {
	return s.generate(username, s.accessTTL)
}

// GenerateResetToken signs a password-reset token carrying the user's
// email as subject. Reset tokens live for ResetTokenTTL (one hour by
// default) regardless of the access-token policy.
func (s *ServiceImpl) GenerateResetToken(email string) (string, time.Time, error) {
	return s.generate(email, s.resetTTL)
}

func (s *ServiceImpl) generate(subject string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()

	claims := token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign token")
	}

	return signed, claims.ExpiresAt.Time, nil
}

func (s *ServiceImpl) ValidateToken(raw string) (token.Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &token.Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithIssuedAt())

	if err != nil || !parsed.Valid {
		return token.Claims{}, customErrors.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*token.Claims)
	if !ok {
		return token.Claims{}, customErrors.WrapInternal(
			errors.New("claims have unexpected type"), "ValidateToken",
		)
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return token.Claims{}, customErrors.ErrInvalidToken
	}

	if s.audience != "" {
		okAudi := false
		for _, a := range claims.Audience {
			if a == s.audience {
				okAudi = true
				break
			}
		}
		if !okAudi {
			return token.Claims{}, customErrors.ErrInvalidToken
		}
	}

	return *claims, nil
}
