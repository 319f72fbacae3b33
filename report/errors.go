package report

import "errors"

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrMissingFields   = errors.New("missing required fields")
	ErrInvalidStyle    = errors.New("invalid style")
	ErrUpstream        = errors.New("generation service failed")
	ErrPersistence     = errors.New("report could not be stored")
)
