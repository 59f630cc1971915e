package catalogdb

import "errors"

var (
	// ErrNotFound is returned when a game, item or daily target does not exist.
	ErrNotFound = errors.New("catalog record not found")
)
