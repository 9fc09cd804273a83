package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Algorithm represents supported password hashing algorithms.
type Algorithm string

const (
	// AlgorithmArgon2id is argon2id hashing.
	AlgorithmArgon2id Algorithm = "argon2id"

	// AlgorithmBcrypt is bcrypt hashing.
	AlgorithmBcrypt Algorithm = "bcrypt"
)

// Config configures password hashing. Cost parameters are read once at startup.
type Config struct {
	// Algorithm selects the hashing algorithm (default: "argon2id").
	Algorithm Algorithm `mapstructure:"algorithm"`

	// BcryptCost is the bcrypt cost parameter (default: 12).
	BcryptCost int `mapstructure:"bcrypt_cost"`

	// Argon2Time is the number of argon2id iterations (default: 3).
	Argon2Time uint32 `mapstructure:"argon2_time"`

	// Argon2Memory is the argon2id memory in KiB (default: 65536).
	Argon2Memory uint32 `mapstructure:"argon2_memory"`

	// Argon2Threads is the argon2id parallelism (default: 4).
	Argon2Threads uint8 `mapstructure:"argon2_threads"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmArgon2id
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.Argon2Time == 0 {
		c.Argon2Time = 3
	}
	if c.Argon2Memory == 0 {
		c.Argon2Memory = 64 * 1024
	}
	if c.Argon2Threads == 0 {
		c.Argon2Threads = 4
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case AlgorithmBcrypt, AlgorithmArgon2id:
	default:
		return fmt.Errorf("password.algorithm: unsupported %q (use argon2id or bcrypt)", c.Algorithm)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("password.bcrypt_cost must be between %d and %d (got: %d)", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.Argon2Memory < 8*uint32(c.Argon2Threads) {
		return fmt.Errorf("password.argon2_memory must be at least 8 KiB per thread (got: %d)", c.Argon2Memory)
	}
	if c.Argon2Memory > argon2MaxMemory {
		return fmt.Errorf("password.argon2_memory must be at most %d KiB (got: %d)", argon2MaxMemory, c.Argon2Memory)
	}
	return nil
}

// NewHasher creates a Hasher from configuration.
func NewHasher(cfg Config) Hasher {
	cfg.ApplyDefaults()
	switch cfg.Algorithm {
	case AlgorithmBcrypt:
		return NewBcryptHasher(WithCost(cfg.BcryptCost))
	default:
		return NewArgon2Hasher(
			WithArgon2Time(cfg.Argon2Time),
			WithArgon2Memory(cfg.Argon2Memory),
			WithArgon2Threads(cfg.Argon2Threads),
		)
	}
}
