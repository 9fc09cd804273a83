package auth

import (
	"fmt"

	"github.com/kbukum/authgate/auth/jwt"
	"github.com/kbukum/authgate/auth/password"
)

// Config holds all authentication configuration.
// It composes subpackage configs for loading from YAML/env via mapstructure.
type Config struct {
	// JWT configures token signing. A signing secret is mandatory.
	JWT *jwt.Config `mapstructure:"jwt"`

	// Password configures password hashing.
	Password *password.Config `mapstructure:"password"`
}

// ApplyDefaults fills missing sub-configurations and their defaults.
func (c *Config) ApplyDefaults() {
	if c.JWT == nil {
		c.JWT = &jwt.Config{}
	}
	if c.Password == nil {
		c.Password = &password.Config{}
	}
	c.JWT.ApplyDefaults()
	c.Password.ApplyDefaults()
}

// Validate checks both sub-configurations. A missing signing secret is an error
// here so the process refuses to start instead of issuing unverifiable tokens.
func (c *Config) Validate() error {
	if c.JWT == nil {
		return fmt.Errorf("auth.jwt: %w", jwt.ErrMissingSecret)
	}
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("auth.jwt: %w", err)
	}
	if c.Password != nil {
		if err := c.Password.Validate(); err != nil {
			return fmt.Errorf("auth.password: %w", err)
		}
	}
	return nil
}

// Describe returns a human-readable one-liner for the startup log.
// Example: "JWT(HS256) TTL=1d password=argon2id"
func (c *Config) Describe() string {
	line := "JWT(unset)"
	if c.JWT != nil {
		line = fmt.Sprintf("JWT(%s) TTL=%s", c.JWT.Method, c.JWT.AccessTokenTTL)
	}
	if c.Password != nil {
		line += fmt.Sprintf(" password=%s", c.Password.Algorithm)
	}
	return line
}
