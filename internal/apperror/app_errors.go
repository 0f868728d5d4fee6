package apperror

import "errors"

var (
	ErrConfiguration   = errors.New("invalid game configuration")
	ErrOutOfRange      = errors.New("column is out of range")
	ErrGameOver        = errors.New("game is already over")
	ErrGameNotFound    = errors.New("game not found")
	ErrCorruptSnapshot = errors.New("stored game is corrupt")
)
