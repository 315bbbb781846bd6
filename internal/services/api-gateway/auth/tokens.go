package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/NordCoder/Marketus/internal/apperr"
	domainauth "github.com/NordCoder/Marketus/internal/domain/auth"
	"github.com/NordCoder/Marketus/internal/domain/user"
)

// accessClaims is the wire shape of an access token payload.
type accessClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// TokenService mints and verifies access tokens and generates opaque
// refresh tokens. Verification is purely computational: signature plus
// expiry, no storage involved.
type TokenService struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewTokenService(secret []byte, accessTTL time.Duration) *TokenService {
	return &TokenService{
		secret:    secret,
		accessTTL: accessTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (t *TokenService) IssueAccess(u *user.User) (string, error) {
	now := t.now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
		Role: u.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// VerifyAccess checks signature and expiry atomically and returns the
// embedded identity. All failures are tagged Unauthorized; the detail
// distinguishes expired, malformed and claim-less tokens.
func (t *TokenService) VerifyAccess(token string) (*domainauth.AccessClaims, error) {
	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tk *jwt.Token) (any, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", tk.Method.Alg())
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.New(apperr.Unauthorized, "Token expired")
		}
		return nil, apperr.New(apperr.Unauthorized, "Invalid token")
	}
	if !parsed.Valid || claims.Subject == "" || claims.Role == "" || claims.ExpiresAt == nil {
		return nil, apperr.New(apperr.Unauthorized, "Invalid token claims")
	}

	sub, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, apperr.New(apperr.Unauthorized, "Invalid token claims")
	}
	return &domainauth.AccessClaims{
		Sub:  sub,
		Role: claims.Role,
		Exp:  claims.ExpiresAt.Time,
	}, nil
}

// NewRefreshToken returns 256 bits of hex-encoded entropy. It carries no
// structure; the session store is the only authority on its validity.
func NewRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("refresh token entropy: %w", err)
	}
	return hex.EncodeToString(b), nil
}
