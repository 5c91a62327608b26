package services

import (
	"errors"
	"fmt"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var (
	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = errors.New("username already registered")

	// ErrInvalidCredentials is returned for an unknown username and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("username or password wrong")

	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong = fmt.Errorf("password must not be longer than %d bytes", MaxPasswordBytes)

	// ErrUnauthenticated is returned when a bearer token is missing or not held
	// by any user.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrPageOutOfRange is returned for a search page above MaxPage.
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrExportsDisabled is returned when no object storage backend is configured.
	ErrExportsDisabled = errors.New("contact exports are disabled")
)
