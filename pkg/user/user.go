package user

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDataInvalid    = errors.New("invalid user data")
)

type User struct {
	Id           int
	Uid          string
	Name         string
	Email        string
	PasswordHash string
}
