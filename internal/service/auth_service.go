package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"chargehub/internal/models"
	"chargehub/internal/password"
	"chargehub/internal/storage"
)

// AuthService contains registration and login logic.
type AuthService struct {
	store  storage.UserStore
	hasher password.Hasher
	tokens *TokenService
	logger *zap.Logger
}

// NewAuthService builds AuthService.
func NewAuthService(store storage.UserStore, hasher password.Hasher, tokens *TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// RegisterInput is the payload for Register.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Name     string
	Role     string
}

// Register creates a new account. Username and email must both be unique;
// a duplicate on either rejects the registration with no side effects.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Role == "" {
		input.Role = models.RoleUser
	}

	if _, err := s.store.GetUserByUsername(ctx, input.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if _, err := s.store.GetUserByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Role:         input.Role,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return user, nil
}

// Login authenticates a user and produces a bearer token. Unknown username
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, plaintext string) (string, *models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || plaintext == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, plaintext); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}
