package service

import "errors"

// Common errors for score operations.
var (
	ErrScoreCount      = errors.New("score count does not match roster")
	ErrNothingToImport = errors.New("no importable rows")
	ErrNotTied         = errors.New("game has no zero scorer at that position")
)
