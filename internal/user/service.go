package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/petitmarche/backend/internal/auth"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ErrInvalidInput wraps account-input validation failures.
var ErrInvalidInput = errors.New("invalid input")

// ErrBadCredentials is returned on login with a wrong email/password pair.
var ErrBadCredentials = errors.New("invalid email or password")

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Register creates an account with role "user". The password is stored as a
// bcrypt hash, never in clear.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: password must contain at least 8 characters", ErrInvalidInput)
	}
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 || len(name) > 120 {
		return nil, fmt.Errorf("%w: name must contain between 2 and 120 characters", ErrInvalidInput)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{Email: email, Name: name, Role: "user", PasswordHash: hash}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.Int64("user_id", u.ID))
	return u, nil
}

// Authenticate resolves an email/password pair to a user. A missing account
// and a wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	normEmail, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrBadCredentials
	}
	u, err := s.repo.GetByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies the non-empty fields of req to the account.
func (s *Service) UpdateProfile(ctx context.Context, id int64, req UpdateRequest) (*User, error) {
	if req.Name == "" && req.Email == "" && req.Password == "" {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	u := &User{ID: id}
	if req.Name != "" {
		name := strings.TrimSpace(req.Name)
		if len(name) < 2 || len(name) > 120 {
			return nil, fmt.Errorf("%w: name must contain between 2 and 120 characters", ErrInvalidInput)
		}
		u.Name = name
	}
	if req.Email != "" {
		email, err := normalizeEmail(req.Email)
		if err != nil {
			return nil, err
		}
		u.Email = email
	}
	updatePassword := false
	if req.Password != "" {
		if len(req.Password) < 8 {
			return nil, fmt.Errorf("%w: password must contain at least 8 characters", ErrInvalidInput)
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
		updatePassword = true
	}
	if err := s.repo.Update(ctx, u, updatePassword); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.log.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

func normalizeEmail(email string) (string, error) {
	e := strings.TrimSpace(strings.ToLower(email))
	if len(e) < 5 || len(e) > 150 || !emailRe.MatchString(e) {
		return "", fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return e, nil
}
