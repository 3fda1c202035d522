package apperr

import "errors"

var (

	// common errors
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")

	// session-specific errors
	ErrAlreadyCheckedIn = errors.New("already checked in")
	ErrNotCheckedIn     = errors.New("not currently checked in")
	ErrSpotOccupied     = errors.New("spot occupied")

	// registration-specific errors
	ErrGeneration = errors.New("qr code generation failed")
)
