package domain

import "errors"

// Sentinel errors returned by the board usecases. Wrap with fmt.Errorf("%w: ...")
// and match with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("access denied")
	ErrConflict         = errors.New("conflict")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidTarget    = errors.New("invalid target")
)
