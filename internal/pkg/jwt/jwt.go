package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSubject    = errors.New("token carries no user id")
)

// clockSkew tolerated between this API and the account service.
const clockSkew = 30 * time.Second

// Service checks HS256 access tokens minted by the account service with a
// shared secret. This API never issues tokens.
type Service struct {
	secret []byte
	parser *jwtlib.Parser
}

// Claims is the access token payload. Email is optional; uploads snapshot it
// for owner notifications when present.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwtlib.RegisteredClaims
}

func New(secret string) *Service {
	return &Service{
		secret: []byte(secret),
		parser: jwtlib.NewParser(
			jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
			jwtlib.WithLeeway(clockSkew),
			jwtlib.WithExpirationRequired(),
		),
	}
}

// ValidateToken verifies signature and expiry and returns the claims.
// Errors wrap ErrInvalidToken or ErrNoSubject.
func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, err := s.parser.ParseWithClaims(tokenStr, claims, s.key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == 0 {
		return nil, ErrNoSubject
	}
	return claims, nil
}

func (s *Service) key(*jwtlib.Token) (any, error) {
	return s.secret, nil
}
