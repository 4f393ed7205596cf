// Package auth implements the credential service: password hashing, bearer
// token issuance and verification, and the signup/login flows on top of
// them.
package auth

import (
	"context"
	"errors"
	"strings"

	"dndsim/internal/models"
)

var (
	// ErrEmailTaken and ErrUsernameTaken are checked as two separate
	// lookups at signup so each can carry its own message.
	ErrEmailTaken    = errors.New("user with this email or username already exists")
	ErrUsernameTaken = errors.New("this username is already taken")

	// ErrInvalidCredentials covers both an unknown account and a wrong
	// password. The message stays identical either way so a login attempt
	// can't reveal which field was wrong.
	ErrInvalidCredentials = errors.New("invalid email/username or password")
)

// UserStore is the slice of the persistence layer the credential service
// needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByLogin(ctx context.Context, emailOrUsername string) (*models.User, error)
	UserByID(ctx context.Context, id uint) (*models.User, error)
}

type Service struct {
	users  UserStore
	tokens *TokenManager
}

func NewService(users UserStore, tokens *TokenManager) *Service {
	return &Service{users: users, tokens: tokens}
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Register validates the input, persists a new user with a hashed password
// and returns the user together with a signed token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validateRegistration(in); err != nil {
		return nil, "", err
	}

	existing, err := s.users.UserByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	existing, err = s.users.UserByUsername(ctx, in.Username)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrUsernameTaken
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate looks a user up by email or username and checks the
// password.
func (s *Service) Authenticate(ctx context.Context, emailOrUsername, password string) (*models.User, string, error) {
	emailOrUsername = strings.TrimSpace(emailOrUsername)
	if emailOrUsername == "" || password == "" {
		return nil, "", &ValidationError{Message: "email and password are required"}
	}

	user, err := s.users.UserByLogin(ctx, emailOrUsername)
	if err != nil {
		return nil, "", err
	}
	if user == nil || !CheckPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Refresh re-issues a token for an already-authenticated caller. No
// credential re-validation happens here.
func (s *Service) Refresh(userID uint) (string, error) {
	return s.tokens.Issue(userID)
}

// VerifyToken validates a bearer token and returns the user id it carries.
func (s *Service) VerifyToken(token string) (uint, error) {
	return s.tokens.Verify(token)
}
