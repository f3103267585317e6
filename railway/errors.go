package railway

import "errors"

// Every operation fails with one of these sentinels (possibly wrapped),
// so the shell can match with errors.Is and keep the menu loop alive.
var (
	ErrTrainNotFound      = errors.New("train not found")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrInsufficientSeats  = errors.New("not enough seats available")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotLoggedIn        = errors.New("no user is logged in")
)
