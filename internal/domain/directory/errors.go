package directory

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateUser  = errors.New("username or email already in use")
	ErrDuplicateTeam  = errors.New("team name already in use")
	ErrInvalidRole    = errors.New("invalid role")
	ErrWeakPassword   = errors.New("password must be at least 8 characters")
	ErrMissingField   = errors.New("required field missing")
)
