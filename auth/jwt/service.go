// Package jwt issues and verifies the access tokens handed to principals.
//
// A token carries a single identifying claim, the principal ID as the
// standard "sub" claim, plus issue and expiry times. Verification checks the
// signature before anything else and reports two distinct failures:
// ErrTokenInvalid and ErrTokenExpired.
//
//	svc, err := jwt.NewService(cfg)
//	token, err := svc.Issue(42)
//	id, err := svc.Verify(token)
package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid covers malformed tokens, bad signatures and unusable subjects.
	ErrTokenInvalid = errors.New("jwt: token invalid")

	// ErrTokenExpired is returned for a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("jwt: token expired")
)

// Service issues and verifies access tokens.
type Service struct {
	method gojwt.SigningMethod
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for issuing and for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a token service. It fails when the configuration is
// incomplete, which callers treat as fatal at startup.
func NewService(cfg *Config, opts ...Option) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ttl, _ := cfg.TTL()

	s := &Service{
		method: cfg.signingMethod(),
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue returns a signed token whose subject is principalID, valid from now
// for the configured TTL.
func (s *Service) Issue(principalID int64) (string, error) {
	now := s.now()
	claims := gojwt.RegisteredClaims{
		Subject:   strconv.FormatInt(principalID, 10),
		Issuer:    s.issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := gojwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token and returns the principal ID it names.
func (s *Service) Verify(tokenString string) (int64, error) {
	claims := &gojwt.RegisteredClaims{}
	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return 0, ErrTokenInvalid
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: subject %q", ErrTokenInvalid, claims.Subject)
	}
	return id, nil
}

// keyFunc is the jwt.Keyfunc used during token parsing.
func (s *Service) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != s.method.Alg() {
		return nil, fmt.Errorf("jwt: unexpected signing method: %s", token.Method.Alg())
	}
	return s.secret, nil
}

// parserOptions returns jwt.ParserOption based on config.
func (s *Service) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.method.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.issuer))
	}
	return opts
}
