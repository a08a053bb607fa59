package account

import "errors"

// Errors shown to the learner as-is.
var (
	ErrMissingCredentials = errors.New("please enter both email and password")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email is already in use")
	ErrMissingName        = errors.New("please enter a name")
)

var (
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrProfileNotFound = errors.New("profile not found")
	ErrNegativeXP      = errors.New("xp amount must not be negative")
)
