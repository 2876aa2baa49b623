package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

const (
	XUserNameHeader = "X-User-Name"
	XUserRoleHeader = "X-User-Role"
)

// JWTKey signs access tokens. Set once at startup from config.
var JWTKey = []byte("biblio-secret")

func SetJWTKey(key string) {
	if key != "" {
		JWTKey = []byte(key)
	}
}

type Claims struct {
	Profile struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"profile"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
	jwt.RegisteredClaims
}

// NewToken issues a signed HS256 access token for the user.
func NewToken(username, role, email string, verified bool, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := &Claims{
		Email:    email,
		Verified: verified,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	claims.Profile.Username = username
	claims.Profile.Role = role

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(JWTKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken validates a signed token and returns its claims.
func ParseToken(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return JWTKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

type contextKey int

const (
	contextKeyUserName contextKey = iota + 1
	contextKeyUserRole
	contextKeyVerified
)

func SetAuthContext(ctx context.Context, username, role string, verified bool) context.Context {
	ctx = context.WithValue(ctx, contextKeyUserName, username)
	ctx = context.WithValue(ctx, contextKeyUserRole, role)
	return context.WithValue(ctx, contextKeyVerified, verified)
}

func UserName(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(contextKeyUserName).(string)
	return name, ok
}

func UserRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(contextKeyUserRole).(string)
	return role, ok
}

func IsVerified(ctx context.Context) bool {
	v, ok := ctx.Value(contextKeyVerified).(bool)
	return ok && v
}
