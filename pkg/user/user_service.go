package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

type Service interface {
	Register(ctx context.Context, name, email, password string) (User, error)
	Authenticate(ctx context.Context, email, password string) (User, error)
	GetCurrentUser(ctx context.Context) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
}

type UserServiceImpl struct {
	repo Repo
	cost int
}

func NewUserService(repo Repo) *UserServiceImpl {
	return &UserServiceImpl{repo: repo, cost: bcrypt.DefaultCost}
}

// SetPasswordCost overrides the bcrypt cost, tests use bcrypt.MinCost.
func (u *UserServiceImpl) SetPasswordCost(cost int) {
	u.cost = cost
}

// Register validates the input, hashes the password and stores a new user.
// A second registration with the same email (case-insensitive) fails with ErrEmailTaken.
func (u *UserServiceImpl) Register(ctx context.Context, name, email, password string) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if err := validateRegistration(name, email, password); err != nil {
		return User{}, err
	}

	if _, err := u.repo.GetUserByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser := User{
		Uid:          uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	id, err := u.repo.CreateUser(ctx, newUser)
	if err != nil {
		return User{}, err
	}
	newUser.Id = id
	log.Debugf("registered user %s", newUser.Uid)
	return newUser, nil
}

// Authenticate returns the user owning email when password matches. Unknown
// emails and wrong passwords both yield ErrInvalidCredentials.
func (u *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	found, err := u.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)); err != nil {
		log.Debugf("password mismatch for user %s", found.Uid)
		return User{}, ErrInvalidCredentials
	}
	return found, nil
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.GetUser(ctx, userId)
}

func (u *UserServiceImpl) GetUser(ctx context.Context, id int) (User, error) {
	return u.repo.GetUser(ctx, id)
}

func (u *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.repo.GetUserByUid(ctx, uid)
}

func validateRegistration(name, email, password string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is required", ErrUserDataInvalid)
	case !strings.Contains(email, "@"):
		return fmt.Errorf("%w: email is not valid", ErrUserDataInvalid)
	case len(password) < MinPasswordLength:
		return fmt.Errorf("%w: password must have at least %d characters", ErrUserDataInvalid, MinPasswordLength)
	}
	return nil
}
