package custom_errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")

	ErrPostNotFound   = fmt.Errorf("post %w", ErrNotFound)
	ErrNoPosts        = fmt.Errorf("posts %w", ErrNotFound)
	ErrPostValidation = fmt.Errorf("post %w", ErrValidation)
	ErrInvalidPostID  = fmt.Errorf("post id %w", ErrValidation)
)

// Database errors. ErrConnection and ErrTransaction are returned joined with
// the driver cause, so callers match them with errors.Is.
var (
	ErrConnection    = errors.New("database connection failed")
	ErrTransaction   = errors.New("database transaction failed")
	ErrDatabaseQuery = errors.New("database query failed")
	ErrDatabaseScan  = errors.New("database scan failed")
)

var (
	ErrCacheMiss = errors.New("cache miss")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
