package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession is the single outward verification failure. Bad
// signature, wrong algorithm, tampered payload and natural expiry all
// collapse into it so a caller learns nothing about why a token failed.
var ErrInvalidSession = errors.New("invalid or expired session token")

// SessionService issues and verifies stateless signed session tokens.
// There is no revocation: a leaked token stays valid until its expiry.
type SessionService struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// NewSessionService pins the signing secret and algorithm agreed at
// startup. Only the HMAC family is supported.
func NewSessionService(secret, algorithm string) (*SessionService, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &SessionService{
		secret: []byte(secret),
		method: method,
		now:    time.Now,
	}, nil
}

// Issue creates a token asserting the subject identity until now+ttl.
func (s *SessionService) Issue(subject string, ttl time.Duration) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(s.now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify returns the subject of a valid token. now == exp counts as
// expired. Every failure maps to ErrInvalidSession.
func (s *SessionService) Verify(tokenString string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidSession
	}

	// boundary rule: now == exp is expired, not valid
	if claims.ExpiresAt != nil && !s.now().Before(claims.ExpiresAt.Time) {
		return "", ErrInvalidSession
	}

	if claims.Subject == "" {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}
