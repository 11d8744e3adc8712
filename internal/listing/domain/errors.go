package domain

import "errors"

var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrDraftNotFound       = errors.New("draft not found")
	ErrSessionNotFound     = errors.New("posting session not found")
	ErrSessionClosed       = errors.New("posting session closed")
	ErrInvalidListingData  = errors.New("invalid listing data")
	ErrUnauthenticated     = errors.New("user authentication required")
	ErrForbidden           = errors.New("user not authorized to perform this action")
	ErrBusy                = errors.New("operation already in progress")
	ErrImagesRequired      = errors.New("at least one image is required")
	ErrImageBatch          = errors.New("image batch failed")
	ErrUploadFailed        = errors.New("image upload failed")
	ErrSuggestionFailed    = errors.New("suggestion service failed")
	ErrMalformedSuggestion = errors.New("suggestion service returned malformed output")
)
