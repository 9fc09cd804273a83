package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/authgate/config"
)

// SigningMethod defines supported JWT signing algorithms.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
)

// DefaultAccessTokenTTL is the token lifetime when none is configured.
const DefaultAccessTokenTTL = "1d"

// Config configures the token service. It is read once at startup.
type Config struct {
	// Secret is the HMAC signing key. Required.
	Secret string `mapstructure:"secret"`

	// Method is the signing algorithm (default: HS256).
	Method SigningMethod `mapstructure:"method"`

	// Issuer is the "iss" claim (optional). When set, tokens without it are rejected.
	Issuer string `mapstructure:"issuer"`

	// AccessTokenTTL is a Go duration or a day count such as "1d" (default: 1d).
	AccessTokenTTL string `mapstructure:"access_token_ttl"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.AccessTokenTTL == "" {
		c.AccessTokenTTL = DefaultAccessTokenTTL
	}
}

// ErrMissingSecret is returned by Validate when no signing secret is configured.
var ErrMissingSecret = errors.New("jwt: secret is required")

// Validate checks the configuration. A missing secret is an error.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return ErrMissingSecret
	}
	if c.signingMethod() == nil {
		return fmt.Errorf("jwt: unsupported signing method: %s", c.Method)
	}
	ttl, err := c.TTL()
	if err != nil {
		return fmt.Errorf("jwt: access_token_ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("jwt: access_token_ttl must be positive (got: %s)", c.AccessTokenTTL)
	}
	return nil
}

// TTL returns the parsed token lifetime.
func (c *Config) TTL() (time.Duration, error) {
	return config.ParseDuration(c.AccessTokenTTL)
}

// signingMethod returns the golang-jwt SigningMethod instance, or nil.
func (c *Config) signingMethod() gojwt.SigningMethod {
	switch c.Method {
	case HS256:
		return gojwt.SigningMethodHS256
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	default:
		return nil
	}
}
