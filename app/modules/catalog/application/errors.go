package catalogservice

import "errors"

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrNoActiveTarget = errors.New("no daily target configured for today")
	ErrEmptyGame      = errors.New("game has no selectable items")
	ErrUnknownItem    = errors.New("guess does not match any item of this game")
)
