package auth

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

const (
	ScopePayrollRead  = "payroll:read"
	ScopePayrollWrite = "payroll:write"
)

// DefaultScopes are granted to the configured API client.
var DefaultScopes = []string{ScopePayrollRead, ScopePayrollWrite}

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid client credentials")
	ErrInvalidMFACode     = errors.New("invalid mfa code")
)

type Claims struct {
	ClientID string   `json:"cid"`
	Scopes   []string `json:"scp"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller attached to a request. ClientID is
// also the owner key of persisted payroll records.
type Principal struct {
	ClientID string
	Scopes   []string
}

func (p Principal) HasScope(scope string) bool {
	return slices.Contains(p.Scopes, scope)
}

func HashSecret(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckSecret(hash, secret string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// CheckTOTP validates a six digit code against a base32 secret. An empty
// secret disables the check.
func CheckTOTP(secret, code string) error {
	if secret == "" {
		return nil
	}
	if code == "" || !totp.Validate(code, secret) {
		return ErrInvalidMFACode
	}
	return nil
}

func GenerateToken(secret string, claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.ClientID,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ClientID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
