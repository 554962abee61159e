package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrEmailAlreadyExists = errors.New("email already registered")
)
