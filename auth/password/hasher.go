// Package password hashes and verifies principal passwords.
//
// Two implementations of Hasher are available:
//   - Argon2Hasher: argon2id in the PHC string format (default)
//   - BcryptHasher: bcrypt, for deployments that standardise on it
//
// Hash accepts any input. Length policy belongs to request validation.
// Verify answers only true or false; a malformed stored hash is a mismatch.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hasher defines password hashing and verification.
type Hasher interface {
	// Hash returns a salted, self-describing hash of password.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash.
	Verify(password, hash string) bool
}

// --- Bcrypt Implementation ---

// bcryptMaxInput is the number of bytes bcrypt actually consumes.
const bcryptMaxInput = 72

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// BcryptOption configures the bcrypt hasher.
type BcryptOption func(*BcryptHasher)

// WithCost sets the bcrypt cost parameter (default: 12, range: 4-31).
func WithCost(cost int) BcryptOption {
	return func(h *BcryptHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// NewBcryptHasher creates a bcrypt-based password hasher.
func NewBcryptHasher(opts ...BcryptOption) *BcryptHasher {
	h := &BcryptHasher{cost: 12}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: bcrypt: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password)) == nil
}

// bcryptInput pre-hashes inputs longer than bcrypt's limit so that no
// suffix of a long password is silently ignored.
func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// --- Argon2id Implementation ---

const (
	argon2KeyLen  = 32
	argon2SaltLen = 16

	// Upper bound on memory accepted from a stored hash, in KiB.
	argon2MaxMemory = 4 * 1024 * 1024
)

// Argon2Hasher implements Hasher using argon2id.
type Argon2Hasher struct {
	time    uint32
	memory  uint32
	threads uint8
}

// Argon2Option configures the argon2id hasher.
type Argon2Option func(*Argon2Hasher)

// WithArgon2Time sets the number of iterations (default: 3).
func WithArgon2Time(t uint32) Argon2Option {
	return func(h *Argon2Hasher) { h.time = t }
}

// WithArgon2Memory sets the memory usage in KiB (default: 64*1024).
func WithArgon2Memory(m uint32) Argon2Option {
	return func(h *Argon2Hasher) { h.memory = m }
}

// WithArgon2Threads sets the parallelism (default: 4).
func WithArgon2Threads(t uint8) Argon2Option {
	return func(h *Argon2Hasher) { h.threads = t }
}

// NewArgon2Hasher creates an argon2id-based password hasher.
func NewArgon2Hasher(opts ...Argon2Option) *Argon2Hasher {
	h := &Argon2Hasher{
		time:    3,
		memory:  64 * 1024,
		threads: 4,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt, err := generateRandomBytes(argon2SaltLen)
	if err != nil {
		return "", fmt.Errorf("password: generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, argon2KeyLen)

	// $argon2id$v=19$m=MEMORY,t=TIME,p=THREADS$SALT$HASH
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2Hasher) Verify(password, encodedHash string) bool {
	params, salt, expected, ok := decodeArgon2(encodedHash)
	if !ok {
		return false
	}
	key := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1
}

// decodeArgon2 parses a PHC-formatted argon2id hash. Parameters that would
// make argon2 panic or allocate unreasonably are rejected.
func decodeArgon2(encoded string) (params Argon2Hasher, salt, key []byte, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return params, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params, nil, nil, false
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.threads); err != nil {
		return params, nil, nil, false
	}
	if params.time == 0 || params.threads == 0 || params.memory == 0 || params.memory > argon2MaxMemory {
		return params, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return params, nil, nil, false
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return params, nil, nil, false
	}
	return params, salt, key, true
}
