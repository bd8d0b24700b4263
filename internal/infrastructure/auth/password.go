package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/blake2b"

	"github.com/fintrack/backend/internal/infrastructure/config"
)

// Password hashing errors
var (
	ErrPasswordMismatch = errors.New("password does not match")
	ErrMalformedHash    = errors.New("malformed password hash")
	ErrUnknownAlgorithm = errors.New("unknown hashing algorithm")
	ErrPasswordTooLong  = errors.New("password exceeds maximum length")
)

const maxPasswordByteLength = 1024

// argon2 parameters (RFC 9106 second recommended option)
const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// PasswordHasher hashes passwords in two layers: a fast salted digest
// (layer 1) feeding a slow adaptive hash (layer 2). The digest keeps the
// input to bcrypt under its 72-byte limit regardless of password length.
type PasswordHasher struct {
	layer1 string
	layer2 string
	salt   string
}

// NewPasswordHasher creates a hasher from configuration.
// Layer choices were validated at config load time.
func NewPasswordHasher(cfg config.HashingConfig) *PasswordHasher {
	return &PasswordHasher{
		layer1: cfg.Layer1,
		layer2: cfg.Layer2,
		salt:   cfg.Salt,
	}
}

// Hash hashes a plaintext password
func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) > maxPasswordByteLength {
		return "", ErrPasswordTooLong
	}

	digest, err := h.preHash(password)
	if err != nil {
		return "", err
	}

	switch h.layer2 {
	case "bcrypt":
		hashed, err := bcrypt.GenerateFromPassword(digest, bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		return "bcrypt$" + string(hashed), nil

	case "argon2":
		salt := make([]byte, argonSaltLen)
		if _, err := rand.Read(salt); err != nil {
			return "", err
		}
		key := argon2.IDKey(digest, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
		return fmt.Sprintf("argon2$%s$%s",
			base64.RawStdEncoding.EncodeToString(salt),
			base64.RawStdEncoding.EncodeToString(key)), nil

	default:
		return "", ErrUnknownAlgorithm
	}
}

// Verify checks a plaintext password against a stored hash.
// The stored hash carries its own layer-2 marker, so verification keeps
// working for records written under a previous HASHING_ALGORITHM_LAYER_2.
func (h *PasswordHasher) Verify(password, stored string) error {
	if len(password) > maxPasswordByteLength {
		return ErrPasswordMismatch
	}

	algo, rest, found := strings.Cut(stored, "$")
	if !found {
		return ErrMalformedHash
	}

	digest, err := h.preHash(password)
	if err != nil {
		return err
	}

	switch algo {
	case "bcrypt":
		if err := bcrypt.CompareHashAndPassword([]byte(rest), digest); err != nil {
			return ErrPasswordMismatch
		}
		return nil

	case "argon2":
		saltB64, keyB64, found := strings.Cut(rest, "$")
		if !found {
			return ErrMalformedHash
		}
		salt, err := base64.RawStdEncoding.DecodeString(saltB64)
		if err != nil {
			return ErrMalformedHash
		}
		expected, err := base64.RawStdEncoding.DecodeString(keyB64)
		if err != nil {
			return ErrMalformedHash
		}
		key := argon2.IDKey(digest, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
		if subtle.ConstantTimeCompare(key, expected) != 1 {
			return ErrPasswordMismatch
		}
		return nil

	default:
		return ErrUnknownAlgorithm
	}
}

// preHash applies the layer-1 salted digest, hex encoded
func (h *PasswordHasher) preHash(password string) ([]byte, error) {
	salted := []byte(password + h.salt)

	switch h.layer1 {
	case "sha256":
		sum := sha256.Sum256(salted)
		return []byte(hex.EncodeToString(sum[:])), nil
	case "sha512":
		// 256-bit variant keeps the hex digest under bcrypt's 72-byte input limit
		sum := sha512.Sum512_256(salted)
		return []byte(hex.EncodeToString(sum[:])), nil
	case "blake2b":
		sum := blake2b.Sum256(salted)
		return []byte(hex.EncodeToString(sum[:])), nil
	default:
		return nil, ErrUnknownAlgorithm
	}
}
