package domain

import "errors"

var (
	ErrGameNotFound       = errors.New("game not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrGameFull           = errors.New("game is full")
	ErrInvalidUsername    = errors.New("username is required")
	ErrUnexpectedDatabase = errors.New("unexpected database error")
)
