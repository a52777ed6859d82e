package apperrors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrUnknownDataset   = errors.New("unknown dataset")
	ErrDuplicateAlias   = errors.New("alias already exists in dataset")
	ErrEmptyQuery       = errors.New("query normalizes to no tokens")
	ErrIndexUnavailable = errors.New("alias index unavailable")
	ErrValueTooLong     = errors.New("alias value exceeds maximum length")
)
