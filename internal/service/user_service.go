package service

import (
	"context"
	"errors"
	"strings"

	dom "nekocare/internal/domain"
	"nekocare/internal/repo"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")
var ErrUsernameTaken = errors.New("username already taken")

// UserService handles user auth logic.
type UserService struct {
	repo         repo.UserRepo
	households   repo.HouseholdRepo
	dayStartHour int
}

// NewUserService returns a new UserService. New households start their
// business day at dayStartHour.
func NewUserService(users repo.UserRepo, households repo.HouseholdRepo, dayStartHour int) *UserService {
	return &UserService{repo: users, households: households, dayStartHour: dayStartHour}
}

// ValidateCredentials checks username and password; returns user if valid.
func (s *UserService) ValidateCredentials(ctx context.Context, username, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Register creates a new user with hashed password together with a new
// household named householdName (the username when blank).
func (s *UserService) Register(ctx context.Context, username, password, householdName string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return dom.User{}, ErrUsernameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return dom.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dom.User{}, err
	}
	name := strings.TrimSpace(householdName)
	if name == "" {
		name = username
	}
	h, err := s.households.CreateHousehold(ctx, name, s.dayStartHour)
	if err != nil {
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, h.ID, username, string(hash))
	if err != nil {
		if repo.IsDuplicate(err) {
			return dom.User{}, ErrUsernameTaken
		}
		return dom.User{}, err
	}
	return u, nil
}
