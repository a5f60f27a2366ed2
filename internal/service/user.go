package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/planetsapi/planets/internal/metrics"
	"github.com/planetsapi/planets/internal/model"
	"github.com/planetsapi/planets/internal/repository"
)

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
	VerifyDummy(password string)
}

// TokenIssuer mints bearer tokens.
type TokenIssuer interface {
	Issue(subject string) (string, *model.Principal, error)
}

// UserService handles registration and login.
type UserService struct {
	store   UserStore
	hasher  PasswordHasher
	tokens  TokenIssuer
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, hasher PasswordHasher, tokens TokenIssuer, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   store,
		hasher:  hasher,
		tokens:  tokens,
		metrics: recorder,
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Register creates a user with a hashed password.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if input.Email == "" {
		return nil, missing("email")
	}
	if input.Password == "" {
		return nil, missing("password")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()
	return user, nil
}

// LoginResult is a successful login.
type LoginResult struct {
	AccessToken string
	Principal   *model.Principal
}

// Login checks credentials and issues an access token whose subject is the email.
// Unknown email, wrong password and empty credentials all return ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		s.hasher.VerifyDummy(password)
		s.metrics.IncLoginAttempt(metrics.LoginFailure)
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.VerifyDummy(password)
			s.metrics.IncLoginAttempt(metrics.LoginFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.metrics.IncLoginAttempt(metrics.LoginFailure)
		return nil, ErrInvalidCredentials
	}

	token, principal, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncLoginAttempt(metrics.LoginSuccess)
	return &LoginResult{AccessToken: token, Principal: principal}, nil
}
