package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/docvault/internal/domain/user"
)

// AdminPanelPath is handed back to admins on login.
const AdminPanelPath = "/admin"

var (
	ErrValidation         = errors.New("email and password are required")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPersistence        = errors.New("could not persist user")
	ErrInternal           = errors.New("internal error")
)

type UserStore interface {
	Create(ctx context.Context, email, passwordHash, role string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type TokenIssuer interface {
	GenerateAccessToken(userID int64, role string) (string, error)
}

type RegisterResult struct {
	UserID int64
}

type LoginResult struct {
	Token      string
	Role       string
	RedirectTo string
}

// Service runs the registration and login flows. Every call is a single
// attempt; nothing is retried.
type Service struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewService(users UserStore, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *Service) Register(ctx context.Context, email, password string) (RegisterResult, error) {
	if email == "" || password == "" {
		return RegisterResult{}, ErrValidation
	}

	hash, err := s.hasher.Hash(password)

	if err != nil {
		return RegisterResult{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	u, err := s.users.Create(ctx, email, hash, user.RoleUser)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return RegisterResult{}, fmt.Errorf("%w: %w", ErrEmailTaken, err)
		}

		return RegisterResult{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	return RegisterResult{UserID: u.ID}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if email == "" || password == "" {
		return LoginResult{}, ErrValidation
	}

	found, err := s.users.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return LoginResult{}, ErrUserNotFound
		}

		return LoginResult{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	if !s.hasher.Verify(password, found.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(found.ID, found.Role)

	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	res := LoginResult{
		Token: token,
		Role:  found.Role,
	}

	if found.Role == user.RoleAdmin {
		res.RedirectTo = AdminPanelPath
	}

	return res, nil
}
