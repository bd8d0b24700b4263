package identity

import (
	"regexp"
	"strings"

	"github.com/fintrack/backend/internal/domain/shared"
)

// usernamePattern allows letters, digits, dots, underscores and hyphens
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,100}$`)

// User represents an operator account that owns expense records
type User struct {
	shared.BaseEntity
	Username     string
	PasswordHash string
	IsActive     bool
}

// NewUser creates a new active user with a pre-computed password hash.
// Password hashing is an infrastructure concern (the layered hasher needs
// configuration), so the caller hashes before constructing the entity.
func NewUser(username, passwordHash string) (*User, error) {
	username = NormalizeUsername(username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password hash cannot be empty")
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Username:     username,
		PasswordHash: passwordHash,
		IsActive:     true,
	}, nil
}

// NormalizeUsername lowercases and trims a username for lookup and storage
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername checks username constraints
func ValidateUsername(username string) error {
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME",
			"Username must be 3-100 characters of letters, digits, dots, underscores or hyphens")
	}
	return nil
}

// ValidatePassword checks plaintext password constraints before hashing
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	return nil
}

// Deactivate marks the user as inactive
func (u *User) Deactivate() {
	u.IsActive = false
	u.Touch()
}

// ChangePasswordHash replaces the stored password hash
func (u *User) ChangePasswordHash(hash string) error {
	if hash == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password hash cannot be empty")
	}
	u.PasswordHash = hash
	u.Touch()
	return nil
}
