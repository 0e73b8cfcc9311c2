package service

import (
	"errors"
	"fmt"
	"time"

	"alcyxob/routine-builder/internal/repository"

	"github.com/golang-jwt/jwt/v4"
)

// --- Error Definitions ---
var (
	ErrTokenGeneration = errors.New("failed to generate authentication token")
	ErrTokenExpired    = errors.New("token has expired")
	ErrInvalidToken    = errors.New("invalid token")
	ErrAuthDisabled    = errors.New("token secret is not configured")
)

const tokenIssuer = "routine-builder"

// AuthService issues and verifies the bearer tokens that identify a
// workspace owner. Passwords are handled by whatever issues tokens upstream.
type AuthService interface {
	IssueToken(owner string) (string, error)
	VerifyToken(token string) (owner string, err error)
	Enabled() bool
}

// ownerClaims is the JWT payload. The owner travels in the uid claim.
type ownerClaims struct {
	OwnerID string `json:"uid"`
	jwt.RegisteredClaims
}

type authService struct {
	jwtSecret     string
	jwtExpiration time.Duration
	now           func() time.Time
}

// NewAuthService creates an AuthService. An empty secret disables token
// checks; callers then fall back to the configured default owner.
func NewAuthService(jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{jwtSecret: jwtSecret, jwtExpiration: jwtExpiration, now: time.Now}
}

func (s *authService) Enabled() bool { return s.jwtSecret != "" }

// IssueToken signs a token for owner.
func (s *authService) IssueToken(owner string) (string, error) {
	if !s.Enabled() {
		return "", ErrAuthDisabled
	}
	if !repository.ValidOwner(owner) {
		return "", ErrInvalidOwner
	}

	now := s.now()
	claims := &ownerClaims{
		OwnerID: owner,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   owner,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return signed, nil
}

// VerifyToken checks the signature and expiry and returns the owner id.
func (s *authService) VerifyToken(tokenString string) (string, error) {
	if !s.Enabled() {
		return "", ErrAuthDisabled
	}

	claims := &ownerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || !repository.ValidOwner(claims.OwnerID) {
		return "", ErrInvalidToken
	}
	return claims.OwnerID, nil
}
