package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	jwt.RegisteredClaims
}

// Service issues and validates the signed bearer and password-reset
// tokens. Both share one signing scheme and differ only in subject
// (username vs email) and lifetime. Validation checks signature and
// expiry only; revocation is layered on by the auth service.
type Service interface {
	GenerateAccessToken(username string) (token string, exp time.Time, err error)

	GenerateResetToken(email string) (token string, exp time.Time, err error)

	ValidateToken(raw string) (Claims, error)
}
