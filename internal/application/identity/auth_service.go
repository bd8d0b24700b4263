package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fintrack/backend/internal/domain/identity"
	"github.com/fintrack/backend/internal/domain/shared"
	"github.com/fintrack/backend/internal/infrastructure/auth"
)

// Service errors
var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	ErrUserInactive       = shared.NewDomainError("USER_INACTIVE", "User account is deactivated")
	ErrUsernameTaken      = shared.NewDomainError("USERNAME_TAKEN", "Username is already taken")
)

// PasswordHasher abstracts the layered password hashing scheme
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, stored string) error
}

// TokenIssuer abstracts JWT issuing and validation
type TokenIssuer interface {
	Generate(userID uuid.UUID, username string) (*auth.IssuedToken, error)
	Validate(token string) (*auth.Claims, error)
	Expiration() time.Duration
}

// AuthService provides registration, login and session revocation
type AuthService struct {
	users     identity.UserRepository
	hasher    PasswordHasher
	tokens    TokenIssuer
	blacklist auth.TokenBlacklist
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users identity.UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	blacklist auth.TokenBlacklist,
) *AuthService {
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		blacklist: blacklist,
	}
}

// RegisterRequest carries the input for user registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest carries the input for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse carries an issued token and its user
type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// toUserResponse converts a domain user to its API representation
func toUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// Register creates a new user account and issues an initial token
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := identity.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := identity.NewUser(req.Username, hash)
	if err != nil {
		return nil, err
	}

	taken, err := s.users.ExistsByUsername(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The unique index closes the check-then-create race
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return s.issueFor(user)
}

// Login verifies credentials and issues a token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.users.FindByUsername(ctx, identity.NormalizeUsername(req.Username))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Verify(req.Password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return s.issueFor(user)
}

// Logout revokes the presented token for the remainder of its lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	ttl := claims.GetRemainingTTL()
	if ttl <= 0 {
		return nil
	}
	return s.blacklist.AddToBlacklist(ctx, claims.ID, ttl)
}

// LogoutAll revokes every token issued to the user so far. The invalidation
// record only needs to outlive the longest-lived outstanding token, so its
// TTL is the configured token lifetime.
func (s *AuthService) LogoutAll(ctx context.Context, claims *auth.Claims) error {
	if claims.UserID == "" {
		return shared.ErrUnauthorized
	}
	return s.blacklist.AddUserTokensToBlacklist(ctx, claims.UserID, s.tokens.Expiration())
}

// CurrentUser loads the account behind a validated token
func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *AuthService) issueFor(user *identity.User) (*AuthResponse, error) {
	issued, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Token:     issued.Token,
		TokenType: issued.TokenType,
		ExpiresAt: issued.ExpiresAt,
		User:      toUserResponse(user),
	}, nil
}
