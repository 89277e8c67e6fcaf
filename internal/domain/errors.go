package domain

import "errors"

var (
	ErrListingNotFound   = errors.New("Listing not found")
	ErrListingRemoved    = errors.New("Listing has been removed")
	ErrAlreadyPublished  = errors.New("Listing is already published")
	ErrNotEditable       = errors.New("Backend listings cannot be edited as drafts")
	ErrMissingToken      = errors.New("Authentication token is required")
	ErrInvalidStatus     = errors.New("Invalid listing status")
	ErrInvalidCoordinate = errors.New("Coordinates out of range")
)
