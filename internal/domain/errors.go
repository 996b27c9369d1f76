package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrItemNotFound indicates the requested item does not exist
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidItem indicates an item failed validation
	ErrInvalidItem = errors.New("invalid item")

	// ErrRemoteAbsent indicates the covers API has no image for an id.
	// It is terminal: callers must not retry.
	ErrRemoteAbsent = errors.New("cover does not exist upstream")

	// ErrTransient covers network failures, timeouts and non-2xx responses
	ErrTransient = errors.New("transient fetch failure")

	// ErrLocalIO indicates the cover cache directory could not be written
	ErrLocalIO = errors.New("cover cache i/o failure")

	// ErrSearchUnavailable indicates the metadata search service is unreachable
	ErrSearchUnavailable = errors.New("metadata search is unavailable")
)
