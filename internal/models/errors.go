package models

import "errors"

// Custom errors
var (
	ErrInvalidOdds        = errors.New("invalid odds: price must be greater than 1.0 and finite")
	ErrMissingProbability = errors.New("missing probability: no usable probability column and no fallback")
	ErrMissingResult      = errors.New("missing result: no recognizable outcome column")
	ErrInvalidBandSpec    = errors.New("invalid band spec: expected \"lo,hi\" segments separated by '|' with hi > lo")
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateKey       = errors.New("duplicate key violation")
)
