package fetch

import "errors"

var (
	// ErrUnsupportedScheme is returned for locations that are neither
	// http(s) URLs nor local files.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")

	// ErrBodyTooLarge is returned when a resource exceeds the body size limit.
	ErrBodyTooLarge = errors.New("resource body exceeds the size limit")

	// ErrHTTPStatus is returned for responses with a status code of 400 or above.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrEmptyLocation is returned when no location is given.
	ErrEmptyLocation = errors.New("empty location")
)
